package db

import (
	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the storefront, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.Review{},
		&model.Order{},
		&model.OrderItem{},
		&model.CartItem{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts the sample catalog when the products table is empty.
func Seed() error {
	_, err := SeedSampleProducts(DB, false)
	return err
}

// SeedSampleProducts inserts SampleProducts. With replace it first deletes
// every existing product, otherwise it only seeds an empty catalog.
func SeedSampleProducts(db *gorm.DB, replace bool) (int, error) {
	return SeedProducts(db, SampleProducts(), replace)
}

// SeedProducts inserts products in one transaction.
func SeedProducts(db *gorm.DB, products []model.Product, replace bool) (int, error) {
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.Product{}).Error; err != nil {
				return err
			}
			logger.Info("Cleared existing products")
		} else {
			var count int64
			if err := tx.Model(&model.Product{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				logger.Info("Products already seeded, skipping...", map[string]interface{}{
					"existing_count": count,
				})
				return nil
			}
		}
		if len(products) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(products, 500).Error; err != nil {
			return err
		}
		inserted = len(products)
		return nil
	})
	if err != nil {
		logger.Error("Failed to seed products", err)
		return 0, err
	}

	if inserted > 0 {
		logger.Info("Sample products seeded", map[string]interface{}{
			"count": inserted,
		})
	}
	return inserted, nil
}
