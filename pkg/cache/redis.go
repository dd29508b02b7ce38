package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/medtrace/pkg/config"
)

// connectTimeout bounds the startup ping. A process that cannot reach Redis
// at boot fails fast instead of serving without sessions.
const connectTimeout = 2 * time.Second

// RedisClient is the shared connection pool behind sessions, the batch read
// cache and the per-batch advisory lock.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient parses cfg.RedisURL, sizes the pool from cfg.RedisPoolSize
// and pings once before returning.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisClient{client: rdb}, nil
}

// redisOptions applies the pool settings on top of the URL. Lock acquisition
// retries on a short backoff, so reads and writes keep tight deadlines and a
// pool wait never outlives one lock attempt by much.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.RedisPoolSize > 0 {
		opts.PoolSize = cfg.RedisPoolSize
		opts.MinIdleConns = max(1, cfg.RedisPoolSize/10)
	}
	if opts.ClientName == "" {
		opts.ClientName = cfg.ServiceName
	}
	opts.MaxRetries = 2
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond
	opts.PoolTimeout = time.Second
	return opts, nil
}

// Ping reports whether Redis answers. Used by the readiness probe.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the pool. Safe on a zero RedisClient.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client exposes the pool to the session store and the locker.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
