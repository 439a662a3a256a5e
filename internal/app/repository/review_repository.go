package repository

import (
	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(review *model.Review) error
	FindByProductID(productID uint) ([]model.Review, error)
	ExistsForUser(productID, userID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}
	return nil
}

// FindByProductID returns reviews in creation order.
func (r *reviewRepository) FindByProductID(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error; err != nil {
		logger.Error("Failed to find reviews by product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ExistsForUser(productID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
