// Package cache keeps resolved principals in Redis so authenticated requests
// skip the user lookup.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis pool and the principal cache.
type Options struct {
	// PoolSize is the maximum number of Redis connections. The auth
	// middleware issues one GET per request, so it bounds concurrent lookups.
	PoolSize int
	// PrincipalTTL bounds how long a profile change can go unnoticed.
	PrincipalTTL time.Duration
}

// DefaultOptions returns the settings used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		PoolSize:     10,
		PrincipalTTL: 5 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PoolSize <= 0 {
		o.PoolSize = def.PoolSize
	}
	if o.PrincipalTTL <= 0 {
		o.PrincipalTTL = def.PrincipalTTL
	}
	return o
}

// Cache stores principals in Redis.
type Cache struct {
	client       *redis.Client
	principalTTL time.Duration
}

// clientOptions parses redisURL and applies the pool settings.
func clientOptions(redisURL string, o Options) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = o.PoolSize
	opt.MinIdleConns = max(o.PoolSize/5, 1)
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = o.PrincipalTTL

	return opt, nil
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opts = opts.withDefaults()

	opt, err := clientOptions(redisURL, opts)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, principalTTL: opts.PrincipalTTL}, nil
}

// Ping checks Redis connectivity for the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the Redis client to test fixtures.
func (c *Cache) Client() *redis.Client {
	return c.client
}
