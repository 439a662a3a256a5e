package controller

import (
	"errors"
	"net/http"

	"github.com/gamevault/storefront-backend/internal/app/service"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviewService service.ReviewService
	authService   service.AuthService
}

func NewReviewController(reviewService service.ReviewService, authService service.AuthService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		authService:   authService,
	}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// CreateReview adds the caller's review to a product
// POST /api/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	// The reviewer's display name is taken from the stored user, not the token.
	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Not authorized, token failed")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "user")
		return
	}

	if _, err := ctrl.reviewService.AddReview(productID, user, req.Rating, req.Comment); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrAlreadyReviewed):
			apperrors.BadRequest(c, apperrors.ReviewAlreadyExists, "Product already reviewed")
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case errors.Is(err, service.ErrCommentRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Comment is required")
		default:
			log.Error("Failed to add review", err, map[string]interface{}{
				"product_id": productID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "adding review")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}
