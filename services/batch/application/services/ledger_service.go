package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/pkg/locker"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/signing"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
)

const lockKeyPrefix = "lock:batch:"

// BatchCache is the read-model cache used for batch detail reads.
// *pkgcache.BatchCache satisfies it.
type BatchCache interface {
	Get(ctx context.Context, batchID string) (*pkgcache.CachedBatch, error)
	Set(ctx context.Context, b *pkgcache.CachedBatch) error
	Delete(ctx context.Context, batchID string) error
}

// Holding is one batch in which a party currently controls units.
type Holding struct {
	Batch     *models.Batch
	Available int
}

// LedgerService orchestrates registration and unit movements of batches.
// Event publishing is handled by the repository layer (outbox pattern).
// Detail reads are served from Redis when available; authorization always
// replays the log loaded from the store.
type LedgerService struct {
	repo    repositories.BatchRepository
	cache   BatchCache
	locker  locker.Locker
	lockTTL time.Duration
	signer  *signing.Signer
	log     logger.Logger
	metrics *serviceMetrics
	now     func() time.Time
}

// NewLedgerService returns a LedgerService. cache and lk may be nil, which
// disables read caching and the advisory per-batch lock respectively.
func NewLedgerService(
	repo repositories.BatchRepository,
	cache BatchCache,
	lk locker.Locker,
	lockTTL time.Duration,
	signer *signing.Signer,
	log logger.Logger,
) *LedgerService {
	return &LedgerService{
		repo:    repo,
		cache:   cache,
		locker:  lk,
		lockTTL: lockTTL,
		signer:  signer,
		log:     log,
		metrics: newServiceMetrics(),
		now:     time.Now,
	}
}

// Register creates a batch credited to actor and returns it with its signed code.
func (s *LedgerService) Register(ctx context.Context, actor models.Principal, r domainsvcs.Registration) (*models.Batch, string, error) {
	b, err := domainsvcs.Register(r, actor, s.now())
	if err != nil {
		s.metrics.rejection(ctx, "register", err)
		return nil, "", fmt.Errorf("register batch: %w", err)
	}
	b.IntegrityDigest = domainsvcs.IntegrityDigest(b)

	if err := s.repo.Create(ctx, b); err != nil {
		s.metrics.rejection(ctx, "register", err)
		return nil, "", fmt.Errorf("save batch: %w", err)
	}

	s.log.InfoContext(ctx, "batch registered",
		"batch_id", b.ID, "registrant", b.Registrant, "total_units", b.TotalUnits)
	return b, s.signer.Sign(b.ID.String()), nil
}

// Transfer moves units from actor to recipient.
func (s *LedgerService) Transfer(ctx context.Context, actor models.Principal, batchID, recipientEmail, recipientRole string, units int) (*models.Batch, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}
	recipient, err := models.NewParty(recipientEmail)
	if err != nil {
		s.metrics.rejection(ctx, "transfer", batchdomain.ErrInvalidParty)
		return nil, fmt.Errorf("%w: recipient: %w", batchdomain.ErrInvalidParty, err)
	}
	role, err := models.ParseRole(recipientRole)
	if err != nil {
		s.metrics.rejection(ctx, "transfer", batchdomain.ErrInvalidParty)
		return nil, fmt.Errorf("%w: recipient role: %w", batchdomain.ErrInvalidParty, err)
	}

	return s.mutate(ctx, "transfer", id, func(b *models.Batch) error {
		_, err := domainsvcs.Transfer(b, actor, recipient, role, units, s.now())
		return err
	})
}

// Sell records a sale of units by actor. An empty customerEmail is recorded
// as the unknown customer.
func (s *LedgerService) Sell(ctx context.Context, actor models.Principal, batchID, customerEmail string, units int) (*models.Batch, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}
	var customer models.Party
	if customerEmail != "" {
		if customer, err = models.NewParty(customerEmail); err != nil {
			s.metrics.rejection(ctx, "sell", batchdomain.ErrInvalidParty)
			return nil, fmt.Errorf("%w: customer: %w", batchdomain.ErrInvalidParty, err)
		}
	}

	return s.mutate(ctx, "sell", id, func(b *models.Batch) error {
		_, err := domainsvcs.Sell(b, actor, customer, units, s.now())
		return err
	})
}

// Block freezes the batch. Blocking an already blocked batch succeeds without change.
func (s *LedgerService) Block(ctx context.Context, actor models.Principal, batchID string) (*models.Batch, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}

	var changed bool
	b, err := s.mutate(ctx, "block", id, func(b *models.Batch) error {
		changed, err = domainsvcs.Block(b, actor, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.WarnContext(ctx, "batch blocked", "batch_id", b.ID, "admin", actor.Party)
	}
	return b, nil
}

// AvailableUnits returns the units party controls in the batch. It reads the
// authoritative store, so it is exact even while a cached detail is stale.
func (s *LedgerService) AvailableUnits(ctx context.Context, batchID string, party models.Party) (int, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return 0, err
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get batch: %w", err)
	}
	return domainsvcs.AvailableUnits(b, party), nil
}

// GetBatch retrieves a batch using a read-through cache:
//  1. Check Redis first.
//  2. On a miss (or cache error), load from the store.
//  3. Warm the cache with the loaded batch.
func (s *LedgerService) GetBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id.String())
		if err == nil {
			return fromCachedBatch(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "batch cache read failed", "batch_id", id, "error", err)
		}
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, toCachedBatch(b)); err != nil {
			s.log.WarnContext(ctx, "batch cache write failed", "batch_id", id, "error", err)
		}
	}
	return b, nil
}

// Holdings lists the batches in which party currently controls units. The
// page is applied to batches mentioning the party before empty holdings are
// filtered out.
func (s *LedgerService) Holdings(ctx context.Context, party models.Party, opts repositories.QueryOpts) ([]Holding, error) {
	batches, err := s.repo.FindByParty(ctx, party, opts)
	if err != nil {
		return nil, fmt.Errorf("find batches: %w", err)
	}
	out := make([]Holding, 0, len(batches))
	for _, b := range batches {
		if n := domainsvcs.AvailableUnits(b, party); n > 0 {
			out = append(out, Holding{Batch: b, Available: n})
		}
	}
	return out, nil
}

// SignatureFor issues the signed code of a registered batch to its registrant or an admin.
func (s *LedgerService) SignatureFor(ctx context.Context, actor models.Principal, batchID string) (string, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return "", err
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get batch: %w", err)
	}
	if !domainsvcs.HasOversight(b, actor) {
		return "", fmt.Errorf("%w: only the registrant or an admin may issue codes", batchdomain.ErrRoleNotPermitted)
	}
	return s.signer.Sign(b.ID.String()), nil
}

// mutate runs fn as one atomic load-authorize-append against the store,
// behind the advisory per-batch lock.
func (s *LedgerService) mutate(ctx context.Context, op string, id models.BatchID, fn repositories.MutateFunc) (*models.Batch, error) {
	release := s.lock(ctx, id)
	defer release()

	b, err := s.repo.Update(ctx, id, fn)
	if err != nil {
		s.metrics.rejection(ctx, op, err)
		return nil, fmt.Errorf("%s batch: %w", op, err)
	}
	s.invalidate(ctx, id)

	s.log.InfoContext(ctx, "ledger updated",
		"operation", op, "batch_id", id, "status", b.Status, "events", len(b.Events))
	return b, nil
}

// lock takes the advisory lock for id. Failure is logged and ignored: the
// store's row lock is what guarantees correctness.
func (s *LedgerService) lock(ctx context.Context, id models.BatchID) locker.Release {
	if s.locker == nil {
		return func() {}
	}
	release, err := s.locker.Acquire(ctx, lockKeyPrefix+id.String(), s.lockTTL)
	if err != nil {
		s.log.WarnContext(ctx, "batch lock not obtained, proceeding", "batch_id", id, "error", err)
		return func() {}
	}
	return release
}

func (s *LedgerService) invalidate(ctx context.Context, id models.BatchID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(context.WithoutCancel(ctx), id.String()); err != nil {
		s.log.WarnContext(ctx, "batch cache invalidation failed", "batch_id", id, "error", err)
	}
}

// parseBatchID maps a malformed identifier to ErrBatchNotFound: no batch can
// exist under it.
func parseBatchID(raw string) (models.BatchID, error) {
	id, err := models.NewBatchID(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", batchdomain.ErrBatchNotFound, err)
	}
	return id, nil
}
