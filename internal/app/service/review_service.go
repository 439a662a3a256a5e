package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

var (
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentRequired = errors.New("comment is required")
)

// ratingEpsilon is the drift below which a stored aggregate is left alone.
const ratingEpsilon = 1e-9

// AggregateRatings returns the mean rating and the review count. An empty
// set has rating 0.
func AggregateRatings(reviews []model.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

type RecomputeResult struct {
	Scanned int
	Updated int
}

type ReviewService interface {
	AddReview(productID uint, user *model.User, rating int, comment string) (*model.Review, error)
	RecomputeAll(ctx context.Context) (RecomputeResult, error)
}

type reviewService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

func NewReviewService(db *gorm.DB, productRepo repository.ProductRepository, reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{
		db:          db,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

// AddReview appends the caller's review and refreshes the product's rating
// and review count in the same transaction.
func (s *reviewService) AddReview(productID uint, user *model.User, rating int, comment string) (*model.Review, error) {
	comment = strings.TrimSpace(comment)
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}
	if comment == "" {
		return nil, ErrCommentRequired
	}

	logger.Info("Adding product review", map[string]interface{}{
		"product_id": productID,
		"user_id":    user.ID,
		"rating":     rating,
	})

	review := &model.Review{
		ProductID: productID,
		UserID:    user.ID,
		Name:      user.Name,
		Rating:    rating,
		Comment:   comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		reviews := s.reviewRepo.WithTx(tx)

		if _, err := products.FindByIDForUpdate(productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		exists, err := reviews.ExistsForUser(productID, user.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyReviewed
		}

		if err := reviews.Create(review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyReviewed
			}
			return err
		}

		return refreshRating(products, reviews, productID)
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrAlreadyReviewed) {
			logger.Warn("Review rejected", map[string]interface{}{
				"product_id": productID,
				"user_id":    user.ID,
				"reason":     err.Error(),
			})
		} else {
			logger.Error("Failed to add review", err, map[string]interface{}{
				"product_id": productID,
				"user_id":    user.ID,
			})
		}
		return nil, err
	}

	logger.Info("Review added", map[string]interface{}{
		"product_id": productID,
		"review_id":  review.ID,
	})
	return review, nil
}

// RecomputeAll rebuilds every product's aggregate from its reviews. Failures
// on one product do not stop the rest; they are returned combined.
func (s *reviewService) RecomputeAll(ctx context.Context) (RecomputeResult, error) {
	var result RecomputeResult

	ids, err := s.productRepo.ListIDs()
	if err != nil {
		return result, err
	}

	var errs error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}
		result.Scanned++

		updated, err := s.recomputeProduct(id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if updated {
			result.Updated++
		}
	}

	logger.Info("Rating recompute finished", map[string]interface{}{
		"scanned": result.Scanned,
		"updated": result.Updated,
		"failed":  len(multierr.Errors(errs)),
	})
	return result, errs
}

func (s *reviewService) recomputeProduct(productID uint) (bool, error) {
	updated := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		reviews := s.reviewRepo.WithTx(tx)

		product, err := products.FindByIDForUpdate(productID)
		if err != nil {
			return err
		}
		list, err := reviews.FindByProductID(productID)
		if err != nil {
			return err
		}

		rating, count := AggregateRatings(list)
		if count == product.NumReviews && math.Abs(rating-product.Rating) < ratingEpsilon {
			return nil
		}

		logger.Warn("Rating aggregate drift corrected", map[string]interface{}{
			"product_id":   productID,
			"stored":       product.Rating,
			"stored_num":   product.NumReviews,
			"computed":     rating,
			"computed_num": count,
		})
		updated = true
		return products.UpdateRatingStats(productID, rating, count)
	})
	return updated, err
}

func refreshRating(products repository.ProductRepository, reviews repository.ReviewRepository, productID uint) error {
	list, err := reviews.FindByProductID(productID)
	if err != nil {
		return err
	}
	rating, count := AggregateRatings(list)
	return products.UpdateRatingStats(productID, rating, count)
}
