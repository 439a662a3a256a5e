package controller

import (
	"errors"
	"net/http"

	"github.com/gamevault/storefront-backend/internal/app/service"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddToCart merges the product into the caller's cart
// POST /api/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	summary, err := ctrl.cartService.AddToCart(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to add to cart", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PUT /api/cart/items/:productId
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	summary, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		apperrors.InternalError(c, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DELETE /api/cart/items/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId", "Invalid product ID")
	if !ok {
		return
	}

	summary, err := ctrl.cartService.RemoveFromCart(c.Request.Context(), userID, productID)
	if err != nil {
		apperrors.InternalError(c, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		apperrors.InternalError(c, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
