package cart

import (
	"context"
	"sync"

	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const DefaultQuantity = 1

// Item is one cart line. Title, Price, ImageURL and Stock are captured when
// the product is first added and are not refreshed afterwards.
type Item struct {
	ProductID uint    `json:"product"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Storage persists the whole ledger as one value.
// Load returns (nil, nil) when nothing has been stored yet.
type Storage interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
	Remove(ctx context.Context) error
}

// Ledger is a shopper's cart. It has a single owner; the mutex only guards
// against accidental concurrent use from the same owner.
type Ledger struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
}

// NewLedger rehydrates from storage. Missing or unreadable state yields an
// empty ledger; use it where the stored state is disposable.
func NewLedger(ctx context.Context, storage Storage) *Ledger {
	l, err := LoadLedger(ctx, storage)
	if err != nil {
		logger.Warn("Discarding unreadable cart state", map[string]interface{}{
			"error": err.Error(),
		})
		return &Ledger{storage: storage}
	}
	return l
}

// LoadLedger rehydrates from storage and returns the load error instead of
// starting empty, so a failed read never leads to a Save over stored lines.
func LoadLedger(ctx context.Context, storage Storage) (*Ledger, error) {
	items, err := storage.Load(ctx)
	if err != nil {
		return nil, err
	}

	l := &Ledger{storage: storage}
	for _, item := range items {
		if item.ProductID == 0 {
			continue
		}
		l.items = append(l.items, item)
	}

	logger.Debug("Cart rehydrated", map[string]interface{}{
		"lines": len(l.items),
	})
	return l, nil
}

// AddToCart merges quantity into the line for item.ProductID, or appends a new
// line. Merging does not clamp against stock. Items without a product id are
// ignored.
func (l *Ledger) AddToCart(ctx context.Context, item Item, quantity int) error {
	if item.ProductID == 0 {
		logger.Warn("Ignoring cart add without product id", map[string]interface{}{
			"title": item.Title,
		})
		return nil
	}
	if quantity < 1 {
		quantity = DefaultQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(item.ProductID); i >= 0 {
		l.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		l.items = append(l.items, item)
	}
	return l.persist(ctx)
}

// UpdateQuantity sets the quantity of an existing line. Zero ids and
// quantities below one are ignored.
func (l *Ledger) UpdateQuantity(ctx context.Context, productID uint, quantity int) error {
	if productID == 0 || quantity < 1 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(productID)
	if i < 0 {
		return nil
	}
	l.items[i].Quantity = quantity
	return l.persist(ctx)
}

func (l *Ledger) RemoveFromCart(ctx context.Context, productID uint) error {
	if productID == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(productID)
	if i < 0 {
		return nil
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return l.persist(ctx)
}

// ClearCart empties the ledger and deletes the stored value.
func (l *Ledger) ClearCart(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
	return l.storage.Remove(ctx)
}

// Items returns a copy of the current lines in insertion order.
func (l *Ledger) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Total is the sum of price times quantity. Missing or negative values count
// as zero.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Total(l.items)
}

// ItemCount is the sum of quantities across all lines.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, item := range l.items {
		if item.Quantity > 0 {
			count += item.Quantity
		}
	}
	return count
}

func (l *Ledger) IsEmpty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) == 0
}

// Total sums price times quantity over items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Price <= 0 || item.Quantity <= 0 {
			continue
		}
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

func (l *Ledger) indexOf(productID uint) int {
	for i := range l.items {
		if l.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) persist(ctx context.Context) error {
	snapshot := make([]Item, len(l.items))
	copy(snapshot, l.items)
	if err := l.storage.Save(ctx, snapshot); err != nil {
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"lines": len(snapshot),
		})
		return err
	}
	return nil
}
