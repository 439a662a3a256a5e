package repository

import (
	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartRepository stores the server mirror of a shopper's cart ledger.
type CartRepository interface {
	FindByUserID(userID uint) ([]model.CartItem, error)
	ReplaceForUser(userID uint, items []model.CartItem) error
	ClearUserCart(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// FindByUserID returns lines in ledger order.
func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var items []model.CartItem
	if err := r.db.Where("user_id = ?", userID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

// ReplaceForUser swaps the user's lines for items in one transaction.
func (r *cartRepository) ReplaceForUser(userID uint, items []model.CartItem) error {
	logger.Debug("Replacing cart items in database", map[string]interface{}{
		"user_id": userID,
		"lines":   len(items),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		logger.Error("Failed to replace cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
	}
	return err
}

func (r *cartRepository) ClearUserCart(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
