package repository

import (
	"testing"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	return testDB, NewOrderRepository(testDB), user
}

func sampleOrder(userID uint, createdAt time.Time) *model.Order {
	return &model.Order{
		UserID: userID,
		OrderItems: []model.OrderItem{
			{ProductID: 1, Title: "PS5", Quantity: 1, ImageURL: "ps5.jpg", Price: 499.99},
			{ProductID: 3, Title: "DualSense", Quantity: 2, ImageURL: "ds.jpg", Price: 69.99},
		},
		ShippingAddress: model.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "USA"},
		PaymentMethod:   model.PaymentCreditCard,
		ItemsPrice:      639.97,
		TotalPrice:      639.97,
		CreatedAt:       createdAt,
	}
}

func TestOrderRepository_CreateAndFindByID(t *testing.T) {
	_, repo, user := setupOrderTest(t)

	order := sampleOrder(user.ID, time.Now())
	require.NoError(t, repo.Create(order))
	require.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, found.OrderItems, 2)
	assert.Equal(t, "PS5", found.OrderItems[0].Title)
	assert.Equal(t, "Springfield", found.ShippingAddress.City)
	require.NotNil(t, found.User)
	assert.Equal(t, "Ada", found.User.Name)
	assert.False(t, found.IsPaid)
	assert.Nil(t, found.PaidAt)
}

func TestOrderRepository_FindByUserID_NewestFirst(t *testing.T) {
	testDB, repo, user := setupOrderTest(t)

	other := &model.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(other).Error)

	older := sampleOrder(user.ID, time.Now().Add(-time.Hour))
	newer := sampleOrder(user.ID, time.Now())
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))
	require.NoError(t, repo.Create(sampleOrder(other.ID, time.Now())))

	orders, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	assert.Len(t, orders[0].OrderItems, 2)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo, user := setupOrderTest(t)

	order := sampleOrder(user.ID, time.Now())
	require.NoError(t, repo.Create(order))

	paidAt := time.Now()
	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = model.PaymentResult{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "now", EmailAddress: "ada@example.com"}
	order.OrderItems[0].Quantity = 99
	require.NoError(t, repo.UpdateStatus(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)
	require.NotNil(t, found.PaidAt)
	assert.Equal(t, "PAY-1", found.PaymentResult.ID)
	assert.Equal(t, 1, found.OrderItems[0].Quantity, "items are immutable")
}
