package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// Client wraps Redis as the fast secondary delivery store.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientFromRedis wraps an existing go-redis client. Used by tests.
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func deliveryKey(urlHash string) string {
	return fmt.Sprintf("delivery:%s", urlHash)
}

// Get retrieves a delivery by URL hash. TTL handling is delegated to Redis;
// a vanished key is a plain miss. Returns (nil, nil) on miss. Access-time
// bookkeeping is owned by the primary store; the payload here is returned as
// written.
func (c *Client) Get(ctx context.Context, urlHash string) (*domain.Delivery, error) {
	val, err := c.rdb.Get(ctx, deliveryKey(urlHash)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}

	var d domain.Delivery
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("invalid delivery payload: %w", err)
	}
	if d.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return &d, nil
}

// Set stores a delivery with a TTL matching its expiry.
func (c *Client) Set(ctx context.Context, d *domain.Delivery) error {
	ttl := time.Until(d.ExpiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to cache
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}
	if err := c.rdb.Set(ctx, deliveryKey(d.URLHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Delete removes a delivery.
func (c *Client) Delete(ctx context.Context, urlHash string) error {
	if err := c.rdb.Del(ctx, deliveryKey(urlHash)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}
