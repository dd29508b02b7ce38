package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// BatchCacheTTL bounds staleness if an invalidation is ever missed.
	BatchCacheTTL = 10 * time.Minute

	batchCacheKeyPrefix = "batch"
)

// CachedLedgerEvent is one ledger event in the cached read model.
type CachedLedgerEvent struct {
	Sequence      int       `json:"seq"`
	Kind          string    `json:"kind"`
	Recipient     string    `json:"recipient"`
	RecipientRole string    `json:"recipient_role"`
	SourceParty   string    `json:"source_party,omitempty"`
	Units         int       `json:"units"`
	Timestamp     time.Time `json:"timestamp"`
}

// CachedBatch is the denormalized batch read model stored in Redis as JSON.
// It is never used for ledger authorization; writes always reload from Postgres.
type CachedBatch struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	ProducerName    string              `json:"producer_name"`
	ManufactureDate time.Time           `json:"manufacture_date"`
	ExpiryDate      time.Time           `json:"expiry_date"`
	TotalUnits      int                 `json:"total_units"`
	Status          string              `json:"status"`
	Registrant      string              `json:"registrant"`
	TrustScore      int                 `json:"trust_score"`
	IntegrityDigest string              `json:"integrity_digest"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Events          []CachedLedgerEvent `json:"events"`
}

// BatchCache provides read/write operations for batch read-model entries.
// Key format: "batch:{batchID}"
type BatchCache struct {
	client *RedisClient
}

// NewBatchCache creates a new BatchCache backed by the given RedisClient.
func NewBatchCache(r *RedisClient) *BatchCache {
	return &BatchCache{client: r}
}

// Get retrieves a cached batch. Returns redis.Nil when the key does not exist or has expired.
func (c *BatchCache) Get(ctx context.Context, batchID string) (*CachedBatch, error) {
	raw, err := c.client.Client().Get(ctx, c.key(batchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var b CachedBatch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("cache decode batch: %w", err)
	}
	return &b, nil
}

// Set writes the batch with BatchCacheTTL.
func (c *BatchCache) Set(ctx context.Context, b *CachedBatch) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("cache encode batch: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(b.ID), raw, BatchCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached batch.
func (c *BatchCache) Delete(ctx context.Context, batchID string) error {
	if err := c.client.Client().Del(ctx, c.key(batchID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "batch:{batchID}"
func (c *BatchCache) key(batchID string) string {
	return fmt.Sprintf("%s:%s", batchCacheKeyPrefix, batchID)
}
