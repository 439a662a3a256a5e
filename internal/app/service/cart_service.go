package service

import (
	"context"
	"errors"

	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/internal/cart"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartStorageFactory returns the storage backing userID's server-side cart.
type CartStorageFactory func(userID uint) cart.Storage

// CartSummary is a snapshot of a ledger as returned to clients.
type CartSummary struct {
	Items     []cart.Item `json:"items"`
	ItemCount int         `json:"itemCount"`
	Total     float64     `json:"total"`
}

type CartService interface {
	GetCart(ctx context.Context, userID uint) (*CartSummary, error)
	AddToCart(ctx context.Context, userID, productID uint, quantity int) (*CartSummary, error)
	UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartSummary, error)
	RemoveFromCart(ctx context.Context, userID, productID uint) (*CartSummary, error)
	ClearCart(ctx context.Context, userID uint) error
}

type cartService struct {
	storageFor  CartStorageFactory
	productRepo repository.ProductRepository
}

func NewCartService(storageFor CartStorageFactory, productRepo repository.ProductRepository) CartService {
	return &cartService{
		storageFor:  storageFor,
		productRepo: productRepo,
	}
}

// NewRepositoryCartStorage keeps carts in the cart_items table.
func NewRepositoryCartStorage(cartRepo repository.CartRepository) CartStorageFactory {
	return func(userID uint) cart.Storage {
		return cart.NewRepositoryStorage(cartRepo, userID)
	}
}

// ledger refuses to start from an empty cart when the stored one could not
// be read, so a later Save cannot overwrite it.
func (s *cartService) ledger(ctx context.Context, userID uint) (*cart.Ledger, error) {
	l, err := cart.LoadLedger(ctx, s.storageFor(userID))
	if err != nil {
		logger.Error("Failed to load cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return l, nil
}

func (s *cartService) GetCart(ctx context.Context, userID uint) (*CartSummary, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(l), nil
}

// AddToCart snapshots the product's current title, price, image and stock
// into the ledger line.
func (s *cartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*CartSummary, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := cart.Item{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Stock:     product.Stock,
	}
	if err := l.AddToCart(ctx, item, quantity); err != nil {
		return nil, err
	}
	return summarize(l), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartSummary, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := l.UpdateQuantity(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return summarize(l), nil
}

func (s *cartService) RemoveFromCart(ctx context.Context, userID, productID uint) (*CartSummary, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := l.RemoveFromCart(ctx, productID); err != nil {
		return nil, err
	}
	return summarize(l), nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return err
	}
	if err := l.ClearCart(ctx); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func summarize(l *cart.Ledger) *CartSummary {
	total, _ := l.Total().Round(2).Float64()
	return &CartSummary{
		Items:     l.Items(),
		ItemCount: l.ItemCount(),
		Total:     total,
	}
}
