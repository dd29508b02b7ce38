package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	domainevents "github.com/ghuser/medtrace/services/batch/domain/events"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// BufferKey is the Redis list holding parked scan writes. New entries are
// pushed on the left; the oldest sits at the right end.
const BufferKey = "medtrace:scan:retry"

// RedisBuffer parks scan log entries in a Redis list. It backs up the primary
// retry queue, which lives on the same database whose outage usually caused
// the write to fail. The worker empties it with Drain.
type RedisBuffer struct {
	rdb redis.Cmdable
	key string
}

// NewRedisBuffer returns a buffer on BufferKey.
func NewRedisBuffer(rdb redis.Cmdable) *RedisBuffer {
	return &RedisBuffer{rdb: rdb, key: BufferKey}
}

// Enqueue parks entry.
func (b *RedisBuffer) Enqueue(ctx context.Context, entry models.ScanLogEntry, cause error) error {
	evt := domainevents.ScanRetryEvent{
		EventID:    uuid.New(),
		Version:    1,
		Scan:       domainevents.NewScanPayload(entry),
		OccurredAt: time.Now().UTC(),
	}
	if cause != nil {
		evt.Cause = cause.Error()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode buffered scan: %w", err)
	}
	if err := b.rdb.LPush(ctx, b.key, data).Err(); err != nil {
		return fmt.Errorf("buffer scan in redis: %w", err)
	}
	return nil
}

// Len reports how many entries are parked.
func (b *RedisBuffer) Len(ctx context.Context) (int64, error) {
	return b.rdb.LLen(ctx, b.key).Result()
}

// Drain writes up to limit parked entries, oldest first, and returns how many
// it wrote. An entry is removed only after write succeeds, so a crash
// mid-drain repeats a write instead of losing it; write must be idempotent.
// Draining stops at the first failed write and leaves that entry in place.
// Undecodable entries are dropped and reported in the error.
func (b *RedisBuffer) Drain(ctx context.Context, limit int, write func(context.Context, models.ScanLogEntry) error) (int, error) {
	var (
		written int
		bad     []error
	)
	for written < limit {
		raw, err := b.rdb.LIndex(ctx, b.key, -1).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("peek buffered scan: %w", err)
		}

		var evt domainevents.ScanRetryEvent
		if err := json.Unmarshal([]byte(raw), &evt); err != nil {
			bad = append(bad, fmt.Errorf("decode buffered scan: %w", err))
		} else if err := write(ctx, evt.Scan.Entry()); err != nil {
			return written, errors.Join(append(bad, fmt.Errorf("write buffered scan %s: %w", evt.Scan.ID, err))...)
		} else {
			written++
		}

		if err := b.rdb.LRem(ctx, b.key, -1, raw).Err(); err != nil {
			return written, fmt.Errorf("remove buffered scan: %w", err)
		}
	}
	return written, errors.Join(bad...)
}

// Queue is a scan retry destination.
type Queue interface {
	Enqueue(ctx context.Context, entry models.ScanLogEntry, cause error) error
}

// Fallback enqueues on Primary and, when that fails, on Secondary.
type Fallback struct {
	Primary   Queue
	Secondary Queue
}

// Enqueue reports an error only when both queues refused the entry.
func (f Fallback) Enqueue(ctx context.Context, entry models.ScanLogEntry, cause error) error {
	perr := f.Primary.Enqueue(ctx, entry, cause)
	if perr == nil {
		return nil
	}
	if serr := f.Secondary.Enqueue(ctx, entry, cause); serr != nil {
		return errors.Join(perr, serr)
	}
	return nil
}
