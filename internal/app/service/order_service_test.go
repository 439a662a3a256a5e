package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/internal/db"
	"github.com/gamevault/storefront-backend/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	service   OrderService
	db        *gorm.DB
	user      *model.User
	ps5       *model.Product
	pad       *model.Product
	publisher *events.Recorder
}

func setupOrderServiceTest(t *testing.T) *orderFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	publisher := &events.Recorder{}
	orderService := NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		repository.NewProductRepository(testDB),
		publisher,
		nil,
	)

	return &orderFixture{
		service:   orderService,
		db:        testDB,
		user:      createTestUser(t, testDB, "Ada", "ada@example.com", model.RoleUser),
		ps5:       createTestProduct(t, testDB, "PlayStation 5", 499.99, 10),
		pad:       createTestProduct(t, testDB, "DualSense", 69.99, 5),
		publisher: publisher,
	}
}

func validShipping() *model.ShippingAddress {
	return &model.ShippingAddress{
		Address:    "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "USA",
	}
}

func (f *orderFixture) validInput() CreateOrderInput {
	return CreateOrderInput{
		OrderItems: []OrderItemInput{
			{ProductID: f.ps5.ID, Title: f.ps5.Title, Quantity: 1, ImageURL: f.ps5.ImageURL, Price: floatPtr(499.99)},
			{ProductID: f.pad.ID, Title: f.pad.Title, Quantity: 2, ImageURL: f.pad.ImageURL, Price: floatPtr(69.99)},
		},
		ShippingAddress: validShipping(),
		PaymentMethod:   model.PaymentCreditCard,
		ItemsPrice:      639.97,
		ShippingPrice:   0,
		TotalPrice:      639.97,
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, f.user.ID, order.UserID)
	assert.Equal(t, 639.97, order.TotalPrice)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)
	assert.Len(t, order.OrderItems, 2)

	found, err := f.service.GetOrderByID(order.ID, f.user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 639.97, found.TotalPrice)
	assert.False(t, found.IsPaid)
	assert.Equal(t, "Springfield", found.ShippingAddress.City)

	var ps5 model.Product
	require.NoError(t, f.db.First(&ps5, f.ps5.ID).Error)
	assert.Equal(t, 9, ps5.Stock)

	var pad model.Product
	require.NoError(t, f.db.First(&pad, f.pad.ID).Error)
	assert.Equal(t, 3, pad.Stock)

	published := f.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.OrderCreated, published[0].Type)
	assert.Equal(t, order.ID, published[0].OrderID)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	f := setupOrderServiceTest(t)

	tests := []struct {
		name    string
		mutate  func(in *CreateOrderInput)
		wantErr error
	}{
		{
			name:    "no items",
			mutate:  func(in *CreateOrderInput) { in.OrderItems = nil },
			wantErr: ErrNoOrderItems,
		},
		{
			name: "no items wins over missing shipping",
			mutate: func(in *CreateOrderInput) {
				in.OrderItems = []OrderItemInput{}
				in.ShippingAddress = nil
			},
			wantErr: ErrNoOrderItems,
		},
		{
			name:    "missing shipping address",
			mutate:  func(in *CreateOrderInput) { in.ShippingAddress = nil },
			wantErr: ErrShippingAddressRequired,
		},
		{
			name:    "blank city",
			mutate:  func(in *CreateOrderInput) { in.ShippingAddress.City = "   " },
			wantErr: ErrShippingAddressRequired,
		},
		{
			name: "shipping checked before item structure",
			mutate: func(in *CreateOrderInput) {
				in.ShippingAddress.Country = ""
				in.OrderItems[0].Price = nil
			},
			wantErr: ErrShippingAddressRequired,
		},
		{
			name: "shipping checked before malformed items",
			mutate: func(in *CreateOrderInput) {
				in.OrderItems = nil
				in.MalformedItems = true
				in.ShippingAddress = nil
			},
			wantErr: ErrShippingAddressRequired,
		},
		{
			name: "malformed items",
			mutate: func(in *CreateOrderInput) {
				in.OrderItems = nil
				in.MalformedItems = true
			},
			wantErr: ErrInvalidOrderItems,
		},
		{
			name:    "missing price",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[1].Price = nil },
			wantErr: ErrInvalidOrderItems,
		},
		{
			name:    "zero quantity",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[0].Quantity = 0 },
			wantErr: ErrInvalidOrderItems,
		},
		{
			name:    "missing image",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[0].ImageURL = "" },
			wantErr: ErrInvalidOrderItems,
		},
		{
			name:    "missing product id",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[0].ProductID = 0 },
			wantErr: ErrInvalidOrderItems,
		},
		{
			name:    "unknown product",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[0].ProductID = 9999 },
			wantErr: ErrProductNotFound,
		},
		{
			name:    "more than in stock",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[1].Quantity = 6 },
			wantErr: ErrInsufficientStock,
		},
		{
			name:    "stale price",
			mutate:  func(in *CreateOrderInput) { in.OrderItems[0].Price = floatPtr(399.99) },
			wantErr: ErrPriceChanged,
		},
		{
			name: "items price does not match lines",
			mutate: func(in *CreateOrderInput) {
				in.ItemsPrice = 10
				in.TotalPrice = 10
			},
			wantErr: ErrTotalsMismatch,
		},
		{
			name:    "total ignores shipping",
			mutate:  func(in *CreateOrderInput) { in.ShippingPrice = 15 },
			wantErr: ErrTotalsMismatch,
		},
		{
			name: "negative shipping",
			mutate: func(in *CreateOrderInput) {
				in.ShippingPrice = -10
				in.TotalPrice = 629.97
			},
			wantErr: ErrTotalsMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.validInput()
			tt.mutate(&input)

			order, err := f.service.CreateOrder(context.Background(), f.user.ID, input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	var ps5 model.Product
	require.NoError(t, f.db.First(&ps5, f.ps5.ID).Error)
	assert.Equal(t, 10, ps5.Stock, "rejected orders leave stock untouched")
	assert.Empty(t, f.publisher.Events())
}

func TestOrderService_CreateOrder_LineErrorNamesProduct(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := f.validInput()
	input.OrderItems[1].Quantity = 50

	_, err := f.service.CreateOrder(context.Background(), f.user.ID, input)
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, "DualSense", lineErr.Title)
	assert.Equal(t, "insufficient stock for DualSense", err.Error())
}

func TestOrderService_CreateOrder_ShippingPriceIncluded(t *testing.T) {
	f := setupOrderServiceTest(t)

	input := f.validInput()
	input.ShippingPrice = 10
	input.TotalPrice = 649.97

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 649.97, order.TotalPrice)
}

func TestOrderService_CreateOrder_PublishFailureDoesNotFail(t *testing.T) {
	f := setupOrderServiceTest(t)
	f.publisher.Err = errors.New("broker down")

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
}

func TestOrderService_GetMyOrders(t *testing.T) {
	f := setupOrderServiceTest(t)
	other := createTestUser(t, f.db, "Bob", "bob@example.com", model.RoleUser)
	// Three orders of two pads each outrun the fixture stock.
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", f.pad.ID).Update("stock", 20).Error)

	first, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)
	require.NoError(t, f.db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)
	second, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)
	_, err = f.service.CreateOrder(context.Background(), other.ID, f.validInput())
	require.NoError(t, err)

	orders, err := f.service.GetMyOrders(f.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	none, err := f.service.GetMyOrders(9999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestOrderService_GetOrderByID_Access(t *testing.T) {
	f := setupOrderServiceTest(t)
	other := createTestUser(t, f.db, "Bob", "bob@example.com", model.RoleUser)
	admin := createTestUser(t, f.db, "Admin", "admin@example.com", model.RoleAdmin)

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)

	tests := []struct {
		name    string
		orderID uint
		userID  uint
		isAdmin bool
		wantErr error
	}{
		{name: "owner", orderID: order.ID, userID: f.user.ID},
		{name: "admin", orderID: order.ID, userID: admin.ID, isAdmin: true},
		{name: "other user", orderID: order.ID, userID: other.ID, wantErr: ErrOrderNotFound},
		{name: "missing", orderID: 9999, userID: f.user.ID, wantErr: ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := f.service.GetOrderByID(tt.orderID, tt.userID, tt.isAdmin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, found.User)
			assert.Equal(t, "Ada", found.User.Name)
			assert.Equal(t, "ada@example.com", found.User.Email)
		})
	}
}

func TestOrderService_PayOrder(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)

	result := model.PaymentResult{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-05-01T12:00:00Z", EmailAddress: "ada@example.com"}
	paid, err := f.service.PayOrder(context.Background(), order.ID, f.user.ID, false, result)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, result, paid.PaymentResult)

	again := model.PaymentResult{ID: "PAY-2", Status: "COMPLETED"}
	repaid, err := f.service.PayOrder(context.Background(), order.ID, f.user.ID, false, again)
	require.NoError(t, err)
	assert.True(t, repaid.IsPaid)

	stored, err := f.service.GetOrderByID(order.ID, f.user.ID, false)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, "PAY-2", stored.PaymentResult.ID)
	assert.Len(t, stored.OrderItems, 2)

	_, err = f.service.PayOrder(context.Background(), 9999, f.user.ID, false, result)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	types := []events.EventType{}
	for _, e := range f.publisher.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.OrderCreated, events.OrderPaid, events.OrderPaid}, types)
}

func TestOrderService_DeliverOrder(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, err := f.service.CreateOrder(context.Background(), f.user.ID, f.validInput())
	require.NoError(t, err)

	delivered, err := f.service.DeliverOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.False(t, delivered.IsPaid)

	_, err = f.service.DeliverOrder(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
