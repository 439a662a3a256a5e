package repository

import (
	"strings"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a catalog query. Empty fields are not applied.
type ProductFilter struct {
	Keyword  string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Offset   int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(product *model.Product) error
	FindByID(id uint, withReviews bool) (*model.Product, error)
	FindByIDForUpdate(id uint) (*model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	ListCategories() ([]string, error)
	ListBrands() ([]string, error)
	ListIDs() ([]uint, error)
	Update(product *model.Product) error
	Delete(id uint) error
	DecrementStock(id uint, quantity int) error
	UpdateRatingStats(id uint, rating float64, numReviews int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":    product.Title,
		"category": product.Category,
		"brand":    product.Brand,
	})

	if err := r.db.Omit("Reviews").Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) FindByID(id uint, withReviews bool) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id":   id,
		"with_reviews": withReviews,
	})

	query := r.db
	if withReviews {
		query = query.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at ASC, reviews.id ASC")
		})
	}

	var product model.Product
	if err := query.First(&product, id).Error; err != nil {
		logger.Debug("Product lookup failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the product row for the rest of the transaction.
func (r *productRepository) FindByIDForUpdate(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) applyFilter(query *gorm.DB, filter ProductFilter) *gorm.DB {
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + escapeLike(strings.ToLower(keyword)) + "%"
		query = query.Where(
			`(LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`,
			like, like,
		)
	}
	if filter.Category != "" {
		query = query.Where("products.category = ?", filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("products.brand = ?", filter.Brand)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	return query
}

// FindWithFilter returns one page of matching products, newest first, and
// the total number of matches.
func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"keyword":   filter.Keyword,
		"category":  filter.Category,
		"brand":     filter.Brand,
		"min_price": filter.MinPrice,
		"max_price": filter.MaxPrice,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	var total int64
	if err := r.applyFilter(r.db.Model(&model.Product{}), filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	query := r.applyFilter(r.db.Model(&model.Product{}), filter).
		Order("products.created_at DESC").
		Order("products.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) ListCategories() ([]string, error) {
	return r.distinct("category")
}

func (r *productRepository) ListBrands() ([]string, error) {
	return r.distinct("brand")
}

func (r *productRepository) distinct(column string) ([]string, error) {
	var values []string
	if err := r.db.Model(&model.Product{}).
		Distinct(column).
		Where(column+" <> ''").
		Order(column+" ASC").
		Pluck(column, &values).Error; err != nil {
		logger.Error("Failed to list distinct product values", err, map[string]interface{}{
			"column": column,
		})
		return nil, err
	}
	return values, nil
}

func (r *productRepository) ListIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&model.Product{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update writes catalog fields only. Rating stats and reviews are owned by
// the rating aggregator.
func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	err := r.db.Model(product).
		Select("title", "description", "price", "category", "image_url", "stock", "brand").
		Updates(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// Delete soft-deletes the product. Returns gorm.ErrRecordNotFound when no
// live product has the id.
func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) DecrementStock(id uint, quantity int) error {
	result := r.db.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) UpdateRatingStats(id uint, rating float64, numReviews int) error {
	return r.db.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":      rating,
			"num_reviews": numReviews,
		}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
