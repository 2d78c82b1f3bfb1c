package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client is a read cache over Redis. It fails safe: an unreachable server
// behaves like an empty cache, and errors are only logged.
type Client struct {
	client redis.UniversalClient
	log    zerolog.Logger
}

// New connects a cache to the Redis server at addr.
func New(addr, password string, db int, log zerolog.Logger) *Client {
	return Wrap(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), log)
}

// Wrap builds a cache over an existing client.
func Wrap(client redis.UniversalClient, log zerolog.Logger) *Client {
	return &Client{client: client, log: log.With().Str("component", "cache").Logger()}
}

// Get returns the raw value under key, or nil on a miss.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil
	}
	return res
}

// Load decodes the JSON value under key into v and reports whether it did.
func (c *Client) Load(ctx context.Context, key string, v any) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores value with TTL.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Store encodes v as JSON under key.
func (c *Client) Store(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	c.Set(ctx, key, payload, ttl)
}

// Delete removes keys.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

// Close releases the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
