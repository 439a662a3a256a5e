package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const revokedValue = "revoked"

var client *redis.Client

// Init connects the shared client. Callers should skip it when
// cfg.Enabled() is false.
func Init(cfg config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	c := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = c.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client = c
	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns nil until Init succeeds.
func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection", nil)
	err := client.Close()
	client = nil
	return err
}

// Blacklist records revoked access tokens until they would have expired on
// their own.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(c *redis.Client) *Blacklist {
	return &Blacklist{client: c}
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// Revoke stores token for ttl. Tokens that are already expired are skipped.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		logger.Debug("Skipping blacklist for expired token", nil)
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(token), revokedValue, ttl).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}

	logger.Debug("Token blacklisted", map[string]interface{}{
		"ttl": ttl.String(),
	})
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	val, err := b.client.Get(ctx, blacklistKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}
	return val == revokedValue, nil
}
