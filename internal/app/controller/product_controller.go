package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/service"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gamevault/storefront-backend/pkg/pagination"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Category    string   `json:"category" binding:"required"`
	ImageURL    string   `json:"imageUrl" binding:"required"`
	Stock       *int     `json:"stock" binding:"required,gte=0"`
	Brand       string   `json:"brand" binding:"required"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	Brand       *string  `json:"brand"`
}

// ListProducts handles catalog search
// GET /api/products?keyword&category&brand&minPrice&maxPrice&page
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	minPrice, ok := parsePriceQuery(c, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := parsePriceQuery(c, "maxPrice")
	if !ok {
		return
	}
	page := pagination.ParsePage(c.Query("page"))

	result, err := ctrl.productService.ListProducts(service.ProductQuery{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Page:     page,
	})
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetching products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		ctrl.respondProductError(c, err, "fetching product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/products/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetching categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/products/brands
func (ctrl *ProductController) ListBrands(c *gin.Context) {
	brands, err := ctrl.productService.ListBrands()
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetching brands")
		return
	}
	c.JSON(http.StatusOK, brands)
}

// CreateProduct is admin only
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	product, err := ctrl.productService.CreateProduct(service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    model.ProductCategory(req.Category),
		ImageURL:    req.ImageURL,
		Stock:       *req.Stock,
		Brand:       req.Brand,
	})
	if err != nil {
		ctrl.respondProductError(c, err, "creating product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct is admin only
// PUT /api/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	update := service.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		Brand:       req.Brand,
	}
	if req.Category != nil {
		category := model.ProductCategory(*req.Category)
		update.Category = &category
	}

	product, err := ctrl.productService.UpdateProduct(id, update)
	if err != nil {
		ctrl.respondProductError(c, err, "updating product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct is admin only
// DELETE /api/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid product ID")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		ctrl.respondProductError(c, err, "deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidCategory):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product category")
	case errors.Is(err, service.ErrInvalidProduct):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
	default:
		middleware.GetLoggerFromContext(c).Error("Product request failed", err, map[string]interface{}{
			"action": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// parsePriceQuery reads an optional non-negative price bound.
func parsePriceQuery(c *gin.Context, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, name+" must be a non-negative number")
		return nil, false
	}
	return &v, true
}
