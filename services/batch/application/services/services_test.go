package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/pkg/locker"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/signing"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/memory"
)

var (
	mfg   = models.Principal{Party: "mfg@x", Role: models.RoleManufacturer}
	dist  = models.Principal{Party: "dist@y", Role: models.RoleDistributor}
	admin = models.Principal{Party: "admin@corp", Role: models.RoleAdmin}
)

func nopLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, "error")
}

func testSigner(t *testing.T) *signing.Signer {
	t.Helper()
	s, err := signing.NewSigner("test-signing-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

// mapCache is an in-process BatchCache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*pkgcache.CachedBatch
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*pkgcache.CachedBatch)}
}

func (c *mapCache) Get(_ context.Context, id string) (*pkgcache.CachedBatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[id]
	if !ok {
		return nil, redis.Nil
	}
	return b, nil
}

func (c *mapCache) Set(_ context.Context, b *pkgcache.CachedBatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[b.ID] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deletes++
	return nil
}

type failingLocker struct{}

func (failingLocker) Acquire(context.Context, string, time.Duration) (locker.Release, error) {
	return nil, locker.ErrNotObtained
}

// captureQueue records entries handed to the retry queue.
type captureQueue struct {
	mu      sync.Mutex
	entries []models.ScanLogEntry
}

func (q *captureQueue) Enqueue(_ context.Context, entry models.ScanLogEntry, _ error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entry)
	return nil
}

func (q *captureQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

type fixture struct {
	batches *memory.BatchRepository
	scans   *memory.ScanLogRepository
	cache   *mapCache
	ledger  *LedgerService
	verify  *VerificationService
	signer  *signing.Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		batches: memory.NewBatchRepository(),
		scans:   memory.NewScanLogRepository(),
		cache:   newMapCache(),
		signer:  testSigner(t),
	}
	log := nopLogger()
	f.ledger = NewLedgerService(f.batches, f.cache, locker.NewLocalLocker(), time.Second, f.signer, log)
	recorder := NewScanRecorder(f.scans, nil, nil, log)
	f.verify = NewVerificationService(f.batches, f.scans, memory.NewScoringReader(f.batches, f.scans), recorder, f.cache, f.signer, log)
	return f
}

func (f *fixture) register(t *testing.T, id string, units int) (*models.Batch, string) {
	t.Helper()
	r := registrationFor(id)
	r.TotalUnits = units
	b, sig, err := f.ledger.Register(context.Background(), mfg, r)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return b, sig
}

func registrationFor(id string) domainsvcs.Registration {
	now := time.Now().UTC()
	return domainsvcs.Registration{
		BatchID:         id,
		Name:            "Paracetamol 500mg",
		ProducerName:    "Acme Pharma",
		ManufactureDate: now.AddDate(0, -1, 0),
		ExpiryDate:      now.AddDate(2, 0, 0),
		TotalUnits:      10,
	}
}
