package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the redis client used for response caching, the token
// store and the rate limit counters. A nil *Cache is valid and turns
// every operation into a no-op miss, so the server runs without redis.
type Cache struct {
	client *redis.Client
}

// New connects to redis and verifies the connection. Returns nil when
// addr is empty.
func New(addr, password string, db int) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// GetJSON loads a cached value into dest. Returns false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores a value under key for ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

const tokenKeyPrefix = "auth:token:"

// StoreToken records the active token of a user so logins can be
// revoked server side.
func (c *Cache) StoreToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, tokenKeyPrefix+userID, token, ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// ActiveToken returns the stored token for a user, or "" when none is
// stored (redis disabled counts as none).
func (c *Cache) ActiveToken(ctx context.Context, userID string) (string, error) {
	if c == nil {
		return "", nil
	}
	token, err := c.client.Get(ctx, tokenKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// RevokeToken drops a user's stored token.
func (c *Cache) RevokeToken(ctx context.Context, userID string) error {
	return c.Delete(ctx, tokenKeyPrefix+userID)
}

// CountRequest increments the request counter for a client and returns
// the count within the current window. The first hit sets the window
// expiry. Returns 0 when redis is disabled, which callers treat as
// "always allowed".
func (c *Cache) CountRequest(ctx context.Context, clientID string, window time.Duration) (int64, error) {
	if c == nil {
		return 0, nil
	}
	key := "ratelimit:" + clientID
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count, nil
}
