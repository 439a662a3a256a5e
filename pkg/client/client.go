package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/cart"
	"github.com/gamevault/storefront-backend/pkg/logger"
)

// SessionFileName is the fixed name of the stored session record.
const SessionFileName = "session.json"

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL  string
	StateDir string
	Timeout  time.Duration
}

func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state directory is required")
	}
	return nil
}

// Session is the signed-in shopper as stored on disk.
type Session struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Client is a shopper's view of the storefront. It owns the local cart
// ledger and session record under Config.StateDir.
type Client struct {
	config     Config
	httpClient *http.Client
	cart       *cart.Ledger

	mu      sync.Mutex
	session *Session
}

// NewClient rehydrates the cart and session from the state directory.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cart:       cart.NewLedger(ctx, cart.NewFileStorage(config.StateDir)),
	}

	var session Session
	found, err := cart.ReadJSONFile(c.sessionPath(), &session)
	if err != nil {
		logger.Warn("Discarding unreadable session", map[string]interface{}{
			"error": err.Error(),
		})
	} else if found && session.Token != "" {
		c.session = &session
	}
	return c, nil
}

func (c *Client) sessionPath() string {
	return filepath.Join(c.config.StateDir, SessionFileName)
}

// Cart is the local ledger. Mutations are persisted immediately.
func (c *Client) Cart() *cart.Ledger {
	return c.cart
}

// Session returns the stored session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

func (c *Client) saveSession(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := cart.WriteJSONFile(c.sessionPath(), s); err != nil {
		return err
	}
	c.session = s
	return nil
}

// clearSession forgets the session locally. The server is not contacted.
func (c *Client) clearSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	return cart.RemoveFile(c.sessionPath())
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, body, &session, false); err != nil {
		return nil, err
	}
	if err := c.saveSession(&session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &session, nil
}

// Logout revokes the token server side when possible and always discards
// the local session.
func (c *Client) Logout(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
	if err != nil && !IsUnauthorized(err) {
		logger.Warn("Server logout failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return c.clearSession()
}

// ValidateSession asks the server whether the stored credential is still
// accepted.
func (c *Client) ValidateSession(ctx context.Context) (bool, error) {
	if c.token() == "" {
		return false, nil
	}
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/validate", nil, &resp, true); err != nil {
		if IsUnauthorized(err) {
			return false, nil
		}
		return false, err
	}
	return resp.Valid, nil
}

type ProductQuery struct {
	Keyword  string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Page     int
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	Total    int64           `json:"total"`
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	params := url.Values{}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Brand != "" {
		params.Set("brand", q.Brand)
	}
	if q.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page, false); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &product, false); err != nil {
		return nil, err
	}
	return &product, nil
}

// AddToCart snapshots the product's current listing into the local cart.
func (c *Client) AddToCart(ctx context.Context, productID uint, quantity int) error {
	product, err := c.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return c.cart.AddToCart(ctx, cart.Item{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Stock:     product.Stock,
	}, quantity)
}

func (c *Client) AddReview(ctx context.Context, productID uint, rating int, comment string) error {
	if c.token() == "" {
		return ErrNotLoggedIn
	}
	body := map[string]interface{}{"rating": rating, "comment": comment}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/products/%d/reviews", productID), body, nil, true)
}

// Checkout validates the form, confirms the session is still valid, submits
// the cart as an order and clears the cart once the order exists. A rejected
// session is discarded and reported as ErrSessionExpired without submitting
// anything.
func (c *Client) Checkout(ctx context.Context, form CheckoutForm) (*model.Order, error) {
	if c.token() == "" {
		return nil, ErrNotLoggedIn
	}
	if c.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form = form.Normalize()

	valid, err := c.ValidateSession(ctx)
	if err != nil {
		return nil, err
	}
	if !valid {
		if err := c.clearSession(); err != nil {
			logger.Warn("Failed to discard expired session", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, ErrSessionExpired
	}

	items := c.cart.Items()
	orderItems := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, map[string]interface{}{
			"product":  item.ProductID,
			"title":    item.Title,
			"quantity": item.Quantity,
			"imageUrl": item.ImageURL,
			"price":    item.Price,
		})
	}
	total, _ := cart.Total(items).Round(2).Float64()

	body := map[string]interface{}{
		"orderItems": orderItems,
		"shippingAddress": model.ShippingAddress{
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
			Country:    form.Country,
		},
		"paymentMethod": form.PaymentMethod,
		"itemsPrice":    total,
		"shippingPrice": 0,
		"totalPrice":    total,
	}

	var order model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", body, &order, true); err != nil {
		return nil, err
	}

	if err := c.cart.ClearCart(ctx); err != nil {
		logger.Warn("Order placed but cart could not be cleared", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
	return &order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/myorders", nil, &orders, true); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &order, true); err != nil {
		return nil, err
	}
	return &order, nil
}

// PayOrder submits a simulated processor confirmation for the order.
func (c *Client) PayOrder(ctx context.Context, id uint, result model.PaymentResult) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d/pay", id), result, &order, true); err != nil {
		return nil, err
	}
	return &order, nil
}

// do performs one request. Non-2xx responses become *APIError. There are no
// retries.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}, auth bool) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
