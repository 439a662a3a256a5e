package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/service"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrderRequest carries no binding tags: presence checks run in the
// order service so their precedence is fixed in one place. Order items stay
// raw until decodeOrderItems so a wrongly typed line cannot pre-empt the
// shipping check.
type CreateOrderRequest struct {
	OrderItems      json.RawMessage        `json:"orderItems"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod    `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type orderItemRequest struct {
	Product  json.RawMessage `json:"product"`
	Title    json.RawMessage `json:"title"`
	Quantity json.RawMessage `json:"quantity"`
	ImageURL json.RawMessage `json:"imageUrl"`
	Price    json.RawMessage `json:"price"`
}

// decodeOrderItems reports malformed when orderItems is present but is not a
// list of lines with correctly typed fields. Absent fields stay zero and are
// caught by the service's structure check.
func decodeOrderItems(raw json.RawMessage) ([]service.OrderItemInput, bool) {
	if isJSONNull(raw) {
		return nil, false
	}
	var lines []orderItemRequest
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, true
	}

	malformed := false
	items := make([]service.OrderItemInput, 0, len(lines))
	for _, line := range lines {
		var item service.OrderItemInput
		if !decodeField(line.Product, &item.ProductID) ||
			!decodeField(line.Title, &item.Title) ||
			!decodeField(line.Quantity, &item.Quantity) ||
			!decodeField(line.ImageURL, &item.ImageURL) {
			malformed = true
		}
		if !isJSONNull(line.Price) {
			var price float64
			if decodeField(line.Price, &price) {
				item.Price = &price
			} else {
				malformed = true
			}
		}
		items = append(items, item)
	}
	return items, malformed
}

func decodeField(raw json.RawMessage, dst interface{}) bool {
	if isJSONNull(raw) {
		return true
	}
	return json.Unmarshal(raw, dst) == nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// CreateOrder compiles the submitted cart into an order
// POST /api/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	items, malformed := decodeOrderItems(req.OrderItems)
	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), userID, service.CreateOrderInput{
		OrderItems:      items,
		MalformedItems:  malformed,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		respondOrderError(c, err, "creating order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GET /api/orders/myorders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetMyOrders(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetching orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		respondOrderError(c, err, "fetching order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// PayOrder records the payment processor's confirmation
// PUT /api/orders/:id/pay
func (ctrl *OrderController) PayOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}

	var result model.PaymentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid payment result")
		return
	}

	order, err := ctrl.orderService.PayOrder(c.Request.Context(), orderID, userID, middleware.IsAdmin(c), result)
	if err != nil {
		respondOrderError(c, err, "paying order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeliverOrder is admin only
// PUT /api/orders/:id/deliver
func (ctrl *OrderController) DeliverOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "Invalid order ID")
	if !ok {
		return
	}

	order, err := ctrl.orderService.DeliverOrder(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err, "delivering order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func respondOrderError(c *gin.Context, err error, context string) {
	var lineErr *service.LineError
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrNoOrderItems):
		apperrors.BadRequest(c, apperrors.OrderNoItems, "No order items")
	case errors.Is(err, service.ErrShippingAddressRequired):
		apperrors.BadRequest(c, apperrors.OrderShippingRequired, "Shipping address is required")
	case errors.Is(err, service.ErrInvalidOrderItems):
		apperrors.BadRequest(c, apperrors.OrderInvalidItems, "Invalid order items structure")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.BadRequest(c, apperrors.ProductNotFound, "Product not found")
	case errors.As(err, &lineErr) && errors.Is(err, service.ErrInsufficientStock):
		apperrors.BadRequest(c, apperrors.OrderInsufficientStock, "Insufficient stock for "+lineErr.Title)
	case errors.As(err, &lineErr) && errors.Is(err, service.ErrPriceChanged):
		apperrors.BadRequest(c, apperrors.OrderPriceChanged, "Price changed for "+lineErr.Title)
	case errors.Is(err, service.ErrTotalsMismatch):
		apperrors.BadRequest(c, apperrors.OrderTotalsMismatch, "Order totals do not match items")
	default:
		middleware.GetLoggerFromContext(c).Error("Order request failed", err, map[string]interface{}{
			"action": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
