package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/redis/go-redis/v9"
)

// FileName is the fixed name of the client-local cart file.
const FileName = "cart.json"

// MemoryStorage keeps the ledger in process. Used by tests and as a
// throwaway cart for anonymous CLI sessions.
type MemoryStorage struct {
	mu    sync.Mutex
	items []Item
	saved bool
}

func NewMemoryStorage(initial ...Item) *MemoryStorage {
	s := &MemoryStorage{}
	if len(initial) > 0 {
		s.items = append([]Item(nil), initial...)
		s.saved = true
	}
	return s
}

func (s *MemoryStorage) Load(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return nil, nil
	}
	return append([]Item(nil), s.items...), nil
}

func (s *MemoryStorage) Save(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Item(nil), items...)
	s.saved = true
	return nil
}

func (s *MemoryStorage) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.saved = false
	return nil
}

// Saved reports whether a value is currently stored.
func (s *MemoryStorage) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// FileStorage stores the ledger as JSON in dir/cart.json.
type FileStorage struct {
	path string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, FileName)}
}

func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load(ctx context.Context) ([]Item, error) {
	var items []Item
	found, err := ReadJSONFile(s.path, &items)
	if err != nil || !found {
		return nil, err
	}
	return items, nil
}

func (s *FileStorage) Save(ctx context.Context, items []Item) error {
	return WriteJSONFile(s.path, items)
}

func (s *FileStorage) Remove(ctx context.Context) error {
	return RemoveFile(s.path)
}

// ReadJSONFile decodes path into v. found is false when the file does not
// exist.
func ReadJSONFile(path string, v interface{}) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// WriteJSONFile replaces path atomically with the JSON encoding of v.
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// RedisStorage mirrors a signed-in shopper's ledger under cart:<user id>.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

const redisCartTTL = 30 * 24 * time.Hour

func NewRedisStorage(client *redis.Client, userID uint) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    fmt.Sprintf("cart:%d", userID),
		ttl:    redisCartTTL,
	}
}

func (s *RedisStorage) Load(ctx context.Context) ([]Item, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", s.key, err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse cart %s: %w", s.key, err)
	}
	return items, nil
}

func (s *RedisStorage) Save(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStorage) Remove(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// RepositoryStorage mirrors a signed-in shopper's ledger in the cart_items
// table. Used when Redis is not configured.
type RepositoryStorage struct {
	repo   repository.CartRepository
	userID uint
}

func NewRepositoryStorage(repo repository.CartRepository, userID uint) *RepositoryStorage {
	return &RepositoryStorage{repo: repo, userID: userID}
}

func (s *RepositoryStorage) Load(ctx context.Context) ([]Item, error) {
	rows, err := s.repo.FindByUserID(s.userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{
			ProductID: row.ProductID,
			Title:     row.Title,
			Price:     row.Price,
			ImageURL:  row.ImageURL,
			Stock:     row.Stock,
			Quantity:  row.Quantity,
		})
	}
	return items, nil
}

func (s *RepositoryStorage) Save(ctx context.Context, items []Item) error {
	rows := make([]model.CartItem, 0, len(items))
	for i, item := range items {
		rows = append(rows, model.CartItem{
			UserID:    s.userID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			ImageURL:  item.ImageURL,
			Stock:     item.Stock,
			Quantity:  item.Quantity,
			Position:  i,
		})
	}
	return s.repo.ReplaceForUser(s.userID, rows)
}

func (s *RepositoryStorage) Remove(ctx context.Context) error {
	return s.repo.ClearUserCart(s.userID)
}
