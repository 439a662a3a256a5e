package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/pkg/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	*testEnv
	ps5 *model.Product
	pad *model.Product
}

func setupOrderControllerTest(t *testing.T) *orderFixture {
	env := setupControllerTest(t)
	return &orderFixture{
		testEnv: env,
		ps5:     env.createProduct(t, "PlayStation 5", model.CategoryConsole, "Sony", 499.99, 10),
		pad:     env.createProduct(t, "DualSense Controller", model.CategoryAccessory, "Sony", 69.99, 5),
	}
}

func (f *orderFixture) validOrder() gin.H {
	return gin.H{
		"orderItems": []gin.H{
			{"product": f.ps5.ID, "title": "PlayStation 5", "quantity": 1, "imageUrl": f.ps5.ImageURL, "price": 499.99},
			{"product": f.pad.ID, "title": "DualSense Controller", "quantity": 2, "imageUrl": f.pad.ImageURL, "price": 69.99},
		},
		"shippingAddress": gin.H{"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "USA"},
		"paymentMethod":   "PayPal",
		"itemsPrice":      639.97,
		"shippingPrice":   0,
		"totalPrice":      639.97,
	}
}

func (f *orderFixture) createOrder(t *testing.T, token string) model.Order {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/orders", f.validOrder(), token)
	requireStatus(t, w, http.StatusCreated)
	var order model.Order
	decodeJSON(t, w, &order)
	return order
}

func TestOrderController_CreateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)

	order := f.createOrder(t, f.userToken)
	assert.NotZero(t, order.ID)
	assert.Equal(t, f.user.ID, order.UserID)
	assert.Equal(t, 639.97, order.TotalPrice)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, "Springfield", order.ShippingAddress.City)

	ps5, err := f.products.FindByID(f.ps5.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, ps5.Stock)

	require.Len(t, f.publisher.Events(), 1)
	assert.Equal(t, events.OrderCreated, f.publisher.Events()[0].Type)
}

func TestOrderController_CreateOrderRejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *orderFixture, body gin.H)
		raw      string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "no items",
			mutate:   func(_ *orderFixture, body gin.H) { body["orderItems"] = []gin.H{} },
			wantCode: "ORDER_NO_ITEMS",
			wantMsg:  "No order items",
		},
		{
			name: "no items wins over missing address",
			mutate: func(_ *orderFixture, body gin.H) {
				delete(body, "orderItems")
				delete(body, "shippingAddress")
			},
			wantCode: "ORDER_NO_ITEMS",
			wantMsg:  "No order items",
		},
		{
			name:     "missing address",
			mutate:   func(_ *orderFixture, body gin.H) { delete(body, "shippingAddress") },
			wantCode: "ORDER_SHIPPING_REQUIRED",
			wantMsg:  "Shipping address is required",
		},
		{
			name: "blank city",
			mutate: func(_ *orderFixture, body gin.H) {
				body["shippingAddress"] = gin.H{"address": "1 Main St", "city": "  ", "postalCode": "12345", "country": "USA"}
			},
			wantCode: "ORDER_SHIPPING_REQUIRED",
			wantMsg:  "Shipping address is required",
		},
		{
			name: "item without price",
			mutate: func(f *orderFixture, body gin.H) {
				body["orderItems"] = []gin.H{{"product": f.ps5.ID, "title": "PlayStation 5", "quantity": 1, "imageUrl": "/x.jpg"}}
			},
			wantCode: "ORDER_INVALID_ITEMS",
			wantMsg:  "Invalid order items structure",
		},
		{
			name:     "non numeric price",
			raw:      `{"orderItems":[{"product":1,"title":"PlayStation 5","quantity":1,"imageUrl":"/x.jpg","price":"free"}],"shippingAddress":{"address":"1 Main St","city":"Springfield","postalCode":"12345","country":"USA"}}`,
			wantCode: "ORDER_INVALID_ITEMS",
			wantMsg:  "Invalid order items structure",
		},
		{
			name:     "missing address wins over non numeric price",
			raw:      `{"orderItems":[{"product":1,"title":"PlayStation 5","quantity":1,"imageUrl":"/x.jpg","price":"free"}]}`,
			wantCode: "ORDER_SHIPPING_REQUIRED",
			wantMsg:  "Shipping address is required",
		},
		{
			name:     "quantity as text",
			raw:      `{"orderItems":[{"product":1,"title":"PlayStation 5","quantity":"one","imageUrl":"/x.jpg","price":499.99}],"shippingAddress":{"address":"1 Main St","city":"Springfield","postalCode":"12345","country":"USA"}}`,
			wantCode: "ORDER_INVALID_ITEMS",
			wantMsg:  "Invalid order items structure",
		},
		{
			name:     "items not a list",
			raw:      `{"orderItems":{"product":1},"shippingAddress":{"address":"1 Main St","city":"Springfield","postalCode":"12345","country":"USA"}}`,
			wantCode: "ORDER_INVALID_ITEMS",
			wantMsg:  "Invalid order items structure",
		},
		{
			name:     "null price",
			raw:      `{"orderItems":[{"product":1,"title":"PlayStation 5","quantity":1,"imageUrl":"/x.jpg","price":null}],"shippingAddress":{"address":"1 Main St","city":"Springfield","postalCode":"12345","country":"USA"}}`,
			wantCode: "ORDER_INVALID_ITEMS",
			wantMsg:  "Invalid order items structure",
		},
		{
			name: "more than stock",
			mutate: func(f *orderFixture, body gin.H) {
				body["orderItems"] = []gin.H{{"product": f.pad.ID, "title": "DualSense Controller", "quantity": 6, "imageUrl": "/x.jpg", "price": 69.99}}
				body["itemsPrice"] = 419.94
				body["totalPrice"] = 419.94
			},
			wantCode: "ORDER_INSUFFICIENT_STOCK",
			wantMsg:  "Insufficient stock for DualSense Controller",
		},
		{
			name: "stale price",
			mutate: func(f *orderFixture, body gin.H) {
				body["orderItems"] = []gin.H{{"product": f.ps5.ID, "title": "PlayStation 5", "quantity": 1, "imageUrl": "/x.jpg", "price": 399.99}}
				body["itemsPrice"] = 399.99
				body["totalPrice"] = 399.99
			},
			wantCode: "ORDER_PRICE_CHANGED",
			wantMsg:  "Price changed for PlayStation 5",
		},
		{
			name:     "totals mismatch",
			mutate:   func(_ *orderFixture, body gin.H) { body["totalPrice"] = 1.00 },
			wantCode: "ORDER_TOTALS_MISMATCH",
			wantMsg:  "Order totals do not match items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupOrderControllerTest(t)

			var body interface{} = tt.raw
			if tt.raw == "" {
				order := f.validOrder()
				tt.mutate(f, order)
				body = order
			}

			w := f.do(t, http.MethodPost, "/api/orders", body, f.userToken)
			requireStatus(t, w, http.StatusBadRequest)
			got := decodeError(t, w)
			assert.Equal(t, tt.wantCode, got.Error)
			assert.Equal(t, tt.wantMsg, got.Message)

			// Rejected orders leave stock untouched.
			ps5, err := f.products.FindByID(f.ps5.ID, false)
			require.NoError(t, err)
			assert.Equal(t, 10, ps5.Stock)
		})
	}
}

func TestOrderController_RequiresAuth(t *testing.T) {
	f := setupOrderControllerTest(t)
	w := f.do(t, http.MethodPost, "/api/orders", f.validOrder(), "")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestOrderController_GetOrders(t *testing.T) {
	f := setupOrderControllerTest(t)
	first := f.createOrder(t, f.userToken)
	second := f.createOrder(t, f.userToken)
	_, strangerToken := createUserWithToken(t, f.db, "Stranger", "stranger@example.com", model.RoleUser)

	w := f.do(t, http.MethodGet, "/api/orders/myorders", nil, f.userToken)
	requireStatus(t, w, http.StatusOK)
	var mine []model.Order
	decodeJSON(t, w, &mine)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	w = f.do(t, http.MethodGet, "/api/orders/myorders", nil, strangerToken)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())

	path := fmt.Sprintf("/api/orders/%d", first.ID)
	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "owner", token: f.userToken, wantStatus: http.StatusOK},
		{name: "admin", token: f.adminToken, wantStatus: http.StatusOK},
		{name: "stranger", token: strangerToken, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, path, nil, tt.token)
			requireStatus(t, w, tt.wantStatus)
			if tt.wantStatus == http.StatusOK {
				var order model.Order
				decodeJSON(t, w, &order)
				require.NotNil(t, order.User)
				assert.Equal(t, "Jane Player", order.User.Name)
				assert.Equal(t, "jane@example.com", order.User.Email)
			}
		})
	}

	w = f.do(t, http.MethodGet, "/api/orders/9999", nil, f.userToken)
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, "Order not found", decodeError(t, w).Message)
}

func TestOrderController_PayOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	order := f.createOrder(t, f.userToken)
	path := fmt.Sprintf("/api/orders/%d/pay", order.ID)

	result := gin.H{"id": "PAY-1", "status": "COMPLETED", "update_time": "2024-05-01T10:00:00Z", "email_address": "jane@example.com"}
	w := f.do(t, http.MethodPut, path, result, f.userToken)
	requireStatus(t, w, http.StatusOK)
	var paid model.Order
	decodeJSON(t, w, &paid)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "PAY-1", paid.PaymentResult.ID)
	assert.Equal(t, "jane@example.com", paid.PaymentResult.EmailAddress)

	// Paying again succeeds and overwrites the stored result.
	result["id"] = "PAY-2"
	w = f.do(t, http.MethodPut, path, result, f.userToken)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &paid)
	assert.Equal(t, "PAY-2", paid.PaymentResult.ID)

	w = f.do(t, http.MethodPut, "/api/orders/9999/pay", result, f.userToken)
	requireStatus(t, w, http.StatusNotFound)
}

func TestOrderController_DeliverOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	order := f.createOrder(t, f.userToken)
	path := fmt.Sprintf("/api/orders/%d/deliver", order.ID)

	w := f.do(t, http.MethodPut, path, nil, f.userToken)
	requireStatus(t, w, http.StatusForbidden)

	w = f.do(t, http.MethodPut, path, nil, f.adminToken)
	requireStatus(t, w, http.StatusOK)
	var delivered model.Order
	decodeJSON(t, w, &delivered)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)

	w = f.do(t, http.MethodPut, "/api/orders/9999/deliver", nil, f.adminToken)
	requireStatus(t, w, http.StatusNotFound)
}
