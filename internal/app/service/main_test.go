package service

import (
	"os"
	"testing"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	util.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func createTestUser(t *testing.T, testDB *gorm.DB, name, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, title string, price float64, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Title:       title,
		Description: title + " description",
		Price:       price,
		Category:    model.CategoryConsole,
		ImageURL:    "/images/" + title + ".jpg",
		Stock:       stock,
		Brand:       "Sony",
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func floatPtr(v float64) *float64 {
	return &v
}
