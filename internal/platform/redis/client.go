package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a Redis client from a redis:// URL.
// Returns nil if the URL is empty (Redis not configured).
func New(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// CEPCache stores resolved addresses as JSON strings under a key prefix.
type CEPCache struct {
	client redis.Cmdable
	prefix string
}

// NewCEPCache creates a cache on top of any go-redis command client.
func NewCEPCache(client redis.Cmdable) *CEPCache {
	return &CEPCache{client: client, prefix: "cep:"}
}

// Get returns the cached address, reporting false on a miss.
func (c *CEPCache) Get(ctx context.Context, cep string) (model.Address, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+cep).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Address{}, false, nil
	}
	if err != nil {
		return model.Address{}, false, fmt.Errorf("get cep %s: %w", cep, err)
	}
	var addr model.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return model.Address{}, false, fmt.Errorf("decode cep %s: %w", cep, err)
	}
	return addr, true, nil
}

// Set stores the address with a TTL.
func (c *CEPCache) Set(ctx context.Context, cep string, addr model.Address, ttl time.Duration) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("encode cep %s: %w", cep, err)
	}
	if err := c.client.Set(ctx, c.prefix+cep, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cep %s: %w", cep, err)
	}
	return nil
}
