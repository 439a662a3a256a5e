package service

import (
	"errors"
	"strings"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/gamevault/storefront-backend/pkg/pagination"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
	ErrInvalidProduct  = errors.New("invalid product")
)

// ProductQuery is a catalog search. Empty strings and nil bounds are not
// applied; Page is 1-indexed and normalized.
type ProductQuery struct {
	Keyword  string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Page     int
}

type ProductListResult struct {
	Products []model.Product `json:"products"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	Total    int64           `json:"total"`
}

type ProductInput struct {
	Title       string
	Description string
	Price       float64
	Category    model.ProductCategory
	ImageURL    string
	Stock       int
	Brand       string
}

// ProductUpdate is a partial update; nil fields keep their current value.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *model.ProductCategory
	ImageURL    *string
	Stock       *int
	Brand       *string
}

type ProductService interface {
	ListProducts(query ProductQuery) (*ProductListResult, error)
	GetProductByID(id uint) (*model.Product, error)
	ListCategories() ([]string, error)
	ListBrands() ([]string, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, update ProductUpdate) (*model.Product, error)
	DeleteProduct(id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	pageSize    int
}

func NewProductService(productRepo repository.ProductRepository, pageSize int) ProductService {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &productService{
		productRepo: productRepo,
		pageSize:    pageSize,
	}
}

func (s *productService) ListProducts(query ProductQuery) (*ProductListResult, error) {
	page := pagination.New(query.Page, s.pageSize)

	logger.Debug("Listing products", map[string]interface{}{
		"keyword":  query.Keyword,
		"category": query.Category,
		"brand":    query.Brand,
		"page":     page.Number,
	})

	products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Keyword:  strings.TrimSpace(query.Keyword),
		Category: strings.TrimSpace(query.Category),
		Brand:    strings.TrimSpace(query.Brand),
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Limit:    page.Limit(),
		Offset:   page.Offset(),
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	for i := range products {
		if products[i].Reviews == nil {
			products[i].Reviews = []model.Review{}
		}
	}

	result := &ProductListResult{
		Products: products,
		Page:     page.Number,
		Pages:    page.Pages(total),
		Total:    total,
	}

	logger.Info("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
		"page":  result.Page,
		"pages": result.Pages,
	})
	return result, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	if product.Reviews == nil {
		product.Reviews = []model.Review{}
	}
	return product, nil
}

func (s *productService) ListCategories() ([]string, error) {
	categories, err := s.productRepo.ListCategories()
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *productService) ListBrands() ([]string, error) {
	brands, err := s.productRepo.ListBrands()
	if err != nil {
		logger.Error("Failed to list brands", err)
		return nil, err
	}
	if brands == nil {
		brands = []string{}
	}
	return brands, nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	product := &model.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Stock:       input.Stock,
		Brand:       strings.TrimSpace(input.Brand),
	}
	if err := validateProduct(product); err != nil {
		logger.Warn("Rejected product create", map[string]interface{}{
			"title": input.Title,
			"error": err.Error(),
		})
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"title": product.Title,
		})
		return nil, err
	}
	product.Reviews = []model.Review{}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return product, nil
}

func (s *productService) UpdateProduct(id uint, update ProductUpdate) (*model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		product.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		product.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*update.ImageURL)
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	if update.Brand != nil {
		product.Brand = strings.TrimSpace(*update.Brand)
	}

	if err := validateProduct(product); err != nil {
		logger.Warn("Rejected product update", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Delete of unknown product", map[string]interface{}{
				"product_id": id,
			})
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func validateProduct(p *model.Product) error {
	if !p.Category.IsValid() {
		return ErrInvalidCategory
	}
	if p.Title == "" || p.Description == "" || p.ImageURL == "" || p.Brand == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}
