package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/pkg/events"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/gamevault/storefront-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrNoOrderItems            = errors.New("no order items")
	ErrShippingAddressRequired = errors.New("shipping address is required")
	ErrInvalidOrderItems       = errors.New("invalid order items structure")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrPriceChanged            = errors.New("price changed")
	ErrTotalsMismatch          = errors.New("order totals do not match items")
)

// LineError ties a stock or price rejection to the product title it was
// raised for.
type LineError struct {
	Err   error
	Title string
}

func (e *LineError) Error() string {
	return e.Err.Error() + " for " + e.Title
}

func (e *LineError) Unwrap() error {
	return e.Err
}

const eventTimeout = 5 * time.Second

// OrderItemInput is one submitted cart line. Price is a pointer so a missing
// price can be told apart from a free item.
type OrderItemInput struct {
	ProductID uint     `json:"product"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	ImageURL  string   `json:"imageUrl"`
	Price     *float64 `json:"price"`
}

type CreateOrderInput struct {
	OrderItems      []OrderItemInput
	// MalformedItems marks order items that were submitted but could not be
	// read as typed lines. It fails the structure check, after shipping.
	MalformedItems  bool
	ShippingAddress *model.ShippingAddress
	PaymentMethod   model.PaymentMethod
	ItemsPrice      float64
	ShippingPrice   float64
	TotalPrice      float64
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error)
	GetMyOrders(userID uint) ([]model.Order, error)
	GetOrderByID(orderID, userID uint, isAdmin bool) (*model.Order, error)
	PayOrder(ctx context.Context, orderID, userID uint, isAdmin bool, result model.PaymentResult) (*model.Order, error)
	DeliverOrder(ctx context.Context, orderID uint) (*model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	metrics     *metrics.OrderMetrics
	now         func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	orderMetrics *metrics.OrderMetrics,
) OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		metrics:     orderMetrics,
		now:         time.Now,
	}
}

// CreateOrder validates the submission, re-checks every line against live
// stock and price, decrements stock and persists the order in one
// transaction. The caller is responsible for clearing its cart.
func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id": userID,
		"items":   len(input.OrderItems),
	})

	if err := validateOrderInput(input); err != nil {
		s.reject(userID, err)
		return nil, err
	}

	order := &model.Order{
		UserID: userID,
		ShippingAddress: model.ShippingAddress{
			Address:    strings.TrimSpace(input.ShippingAddress.Address),
			City:       strings.TrimSpace(input.ShippingAddress.City),
			PostalCode: strings.TrimSpace(input.ShippingAddress.PostalCode),
			Country:    strings.TrimSpace(input.ShippingAddress.Country),
		},
		PaymentMethod: input.PaymentMethod,
		ItemsPrice:    input.ItemsPrice,
		ShippingPrice: input.ShippingPrice,
		TotalPrice:    input.TotalPrice,
		OrderItems:    make([]model.OrderItem, 0, len(input.OrderItems)),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		for _, item := range input.OrderItems {
			product, err := products.FindByIDForUpdate(item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
				}
				return err
			}
			if item.Quantity > product.Stock {
				return &LineError{Err: ErrInsufficientStock, Title: product.Title}
			}
			if !decimal.NewFromFloat(*item.Price).Equal(decimal.NewFromFloat(product.Price)) {
				return &LineError{Err: ErrPriceChanged, Title: product.Title}
			}
			if err := products.DecrementStock(product.ID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &LineError{Err: ErrInsufficientStock, Title: product.Title}
				}
				return err
			}

			order.OrderItems = append(order.OrderItems, model.OrderItem{
				ProductID: item.ProductID,
				Title:     strings.TrimSpace(item.Title),
				Quantity:  item.Quantity,
				ImageURL:  strings.TrimSpace(item.ImageURL),
				Price:     *item.Price,
			})
		}

		if err := checkTotals(input); err != nil {
			return err
		}

		return s.orderRepo.WithTx(tx).Create(order)
	})
	if err != nil {
		s.reject(userID, err)
		return nil, err
	}

	s.metrics.OrderCreated(order.TotalPrice)
	s.publish(ctx, events.OrderCreated, order)

	logger.Info("Order created", map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     userID,
		"total_price": order.TotalPrice,
	})
	return order, nil
}

func (s *orderService) GetMyOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// GetOrderByID returns the order with its owner attached. Orders belonging
// to someone else are reported as not found unless the caller is an admin.
func (s *orderService) GetOrderByID(orderID, userID uint, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID && !isAdmin {
		logger.Warn("Order access denied", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// PayOrder records the processor result and marks the order paid. Paying an
// already paid order overwrites the previous result.
func (s *orderService) PayOrder(ctx context.Context, orderID, userID uint, isAdmin bool, result model.PaymentResult) (*model.Order, error) {
	order, err := s.GetOrderByID(orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if order.IsPaid {
		logger.Warn("Order paid again, overwriting payment result", map[string]interface{}{
			"order_id": orderID,
		})
	}

	paidAt := s.now()
	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = result

	if err := s.orderRepo.UpdateStatus(order); err != nil {
		logger.Error("Failed to mark order paid", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	s.metrics.OrderPaid()
	s.publish(ctx, events.OrderPaid, order)

	logger.Info("Order paid", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": result.ID,
		"status":     result.Status,
	})
	return order, nil
}

func (s *orderService) DeliverOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	deliveredAt := s.now()
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt

	if err := s.orderRepo.UpdateStatus(order); err != nil {
		logger.Error("Failed to mark order delivered", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	s.publish(ctx, events.OrderDelivered, order)

	logger.Info("Order delivered", map[string]interface{}{
		"order_id": orderID,
	})
	return order, nil
}

// publish is best effort; a broker outage never fails the request.
func (s *orderService) publish(ctx context.Context, eventType events.EventType, order *model.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()

	err := s.publisher.PublishOrderEvent(ctx, events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		logger.Warn("Failed to publish order event", map[string]interface{}{
			"order_id": order.ID,
			"type":     string(eventType),
			"error":    err.Error(),
		})
	}
}

func (s *orderService) reject(userID uint, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, ErrNoOrderItems):
		reason = "no_items"
	case errors.Is(err, ErrShippingAddressRequired):
		reason = "shipping_required"
	case errors.Is(err, ErrInvalidOrderItems):
		reason = "invalid_items"
	case errors.Is(err, ErrProductNotFound):
		reason = "product_not_found"
	case errors.Is(err, ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, ErrPriceChanged):
		reason = "price_changed"
	case errors.Is(err, ErrTotalsMismatch):
		reason = "totals_mismatch"
	}
	s.metrics.OrderRejected(reason)

	if reason == "internal" {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	logger.Warn("Order rejected", map[string]interface{}{
		"user_id": userID,
		"reason":  err.Error(),
	})
}

// validateOrderInput applies the presence checks in a fixed order: items,
// shipping address, then item structure.
func validateOrderInput(input CreateOrderInput) error {
	if len(input.OrderItems) == 0 && !input.MalformedItems {
		return ErrNoOrderItems
	}

	addr := input.ShippingAddress
	if addr == nil ||
		strings.TrimSpace(addr.Address) == "" ||
		strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.PostalCode) == "" ||
		strings.TrimSpace(addr.Country) == "" {
		return ErrShippingAddressRequired
	}

	if input.MalformedItems {
		return ErrInvalidOrderItems
	}
	for _, item := range input.OrderItems {
		if item.ProductID == 0 ||
			strings.TrimSpace(item.Title) == "" ||
			item.Quantity <= 0 ||
			strings.TrimSpace(item.ImageURL) == "" ||
			item.Price == nil {
			return ErrInvalidOrderItems
		}
	}
	return nil
}

// checkTotals compares the submitted totals with the line items at cent
// precision.
func checkTotals(input CreateOrderInput) error {
	items := decimal.Zero
	for _, item := range input.OrderItems {
		line := decimal.NewFromFloat(*item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = items.Add(line)
	}

	itemsPrice := decimal.NewFromFloat(input.ItemsPrice)
	shippingPrice := decimal.NewFromFloat(input.ShippingPrice)
	totalPrice := decimal.NewFromFloat(input.TotalPrice)

	if itemsPrice.IsNegative() || shippingPrice.IsNegative() || totalPrice.IsNegative() {
		return ErrTotalsMismatch
	}
	if !items.Round(2).Equal(itemsPrice.Round(2)) {
		return ErrTotalsMismatch
	}
	if !itemsPrice.Add(shippingPrice).Round(2).Equal(totalPrice.Round(2)) {
		return ErrTotalsMismatch
	}
	return nil
}
