// Package redis wraps go-redis with the operations and key layout the café services share:
// refresh sessions, idempotency records, rate-limit counters, browser sessions and the content read cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

const keyNamespace = "cafe"

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is the shared Redis handle.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// IdempotencyStore is the subset used by the idempotency middleware.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New connects using cfg.URL when set, otherwise cfg.Address, and pings before returning.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}

	// Explicit pool settings fill whatever the URL left unset.
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	opts.PoolSize = firstNonZero(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = firstNonZero(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = firstNonZero(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = firstNonZero(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = firstNonZero(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// conn returns the underlying commands, or an error for a zero Client.
func (c *Client) conn() (cmdable, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialized
	}
	return c.store, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rc, err := c.conn()
	if err != nil {
		return err
	}
	return rc.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil (see IsMiss) when the key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	rc, err := c.conn()
	if err != nil {
		return "", err
	}
	return rc.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	rc, err := c.conn()
	if err != nil {
		return false, err
	}
	return rc.SetNX(ctx, key, value, ttl).Result()
}

// IncrWithTTL increments key and starts its expiry on the first hit, giving a fixed window.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	rc, err := c.conn()
	if err != nil {
		return 0, err
	}
	count, err := rc.Incr(ctx, key).Result()
	if err != nil || count != 1 || ttl <= 0 {
		return count, err
	}
	if err := rc.Expire(ctx, key, ttl).Err(); err != nil {
		return count, fmt.Errorf("expire %s: %w", key, err)
	}
	return count, nil
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	rc, err := c.conn()
	if err != nil {
		return err
	}
	return rc.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	rc, err := c.conn()
	if err != nil {
		return err
	}
	return rc.Ping(ctx).Err()
}

// Close is a no-op for clients built without a connection.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IsMiss reports whether err is the "key not found" sentinel.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return key("session", "access", accessID)
}

func (c *Client) BrowserSessionKey(token string) string {
	return key("browser_session", token)
}

func (c *Client) ContentCacheKey(resource string) string {
	return key("content", resource)
}

// key joins non-empty parts under the cafe namespace.
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
