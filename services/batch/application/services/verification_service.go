package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/signing"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
)

// VerifyRequest is one scanned code plus where it was scanned.
type VerifyRequest struct {
	BatchID   string
	Signature string
	Scan      models.ScanContext
}

// VerificationResult is the answer to a scan. Negative outcomes are results,
// not errors.
type VerificationResult struct {
	Outcome    models.Outcome
	BatchID    string
	ScanID     uuid.UUID
	CheckedAt  time.Time
	TrustScore int
	Reasons    []string
	Anomaly    bool
	// Batch is set for BLOCKED, GENUINE and SUSPICIOUS outcomes.
	Batch *models.Batch
}

// VerificationService checks scanned codes and maintains the trust projection.
type VerificationService struct {
	batches  repositories.BatchRepository
	scans    repositories.ScanLogRepository
	scoring  repositories.ScoringSnapshotReader
	recorder *ScanRecorder
	cache    BatchCache
	signer   *signing.Signer
	log      logger.Logger
	metrics  *serviceMetrics
	now      func() time.Time
}

// NewVerificationService returns a VerificationService. cache may be nil.
// scoring must read from the same store as batches and scans.
func NewVerificationService(
	batches repositories.BatchRepository,
	scans repositories.ScanLogRepository,
	scoring repositories.ScoringSnapshotReader,
	recorder *ScanRecorder,
	cache BatchCache,
	signer *signing.Signer,
	log logger.Logger,
) *VerificationService {
	return &VerificationService{
		batches:  batches,
		scans:    scans,
		scoring:  scoring,
		recorder: recorder,
		cache:    cache,
		signer:   signer,
		log:      log,
		metrics:  newServiceMetrics(),
		now:      time.Now,
	}
}

// Verify classifies a scan; the first matching rule wins:
//  1. missing or wrong signature: FAKE_SIGNATURE
//  2. no such batch: FAKE_UNKNOWN
//  3. blocked batch: BLOCKED
//  4. otherwise GENUINE or SUSPICIOUS by trust score
//
// Every attempt is logged. Only store failures while reading are returned as errors.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (*VerificationResult, error) {
	now := s.now().UTC()

	if !s.signer.Verify(req.BatchID, req.Signature) {
		return s.reject(ctx, req, models.OutcomeFakeSignature, nil, now), nil
	}

	id, err := models.NewBatchID(req.BatchID)
	if err != nil {
		return s.reject(ctx, req, models.OutcomeFakeUnknown, nil, now), nil
	}
	// Status and history come from one snapshot.
	b, history, err := s.scoring.LoadForScoring(ctx, id)
	if errors.Is(err, batchdomain.ErrBatchNotFound) {
		return s.reject(ctx, req, models.OutcomeFakeUnknown, nil, now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load batch for scoring: %w", err)
	}

	if b.Status == models.StatusBlocked {
		return s.reject(ctx, req, models.OutcomeBlocked, b, now), nil
	}
	entry := models.NewScanLogEntry(b.ID.String(), models.OutcomeGenuine, req.Scan, false, 0, now)
	assessment := domainsvcs.AssessTrust(domainsvcs.TrustInput{
		Scans:     append(history, entry),
		Status:    b.Status,
		UpdatedAt: b.UpdatedAt,
		Expiry:    b.ExpiryDate,
		Now:       now,
	})
	if assessment.Anomaly {
		entry.Outcome = models.OutcomeSuspicious
	}
	entry.Anomaly = assessment.Anomaly
	entry.TrustScore = assessment.Score

	b.TrustScore = assessment.Score
	b.IntegrityDigest = domainsvcs.IntegrityDigest(b)
	if err := s.batches.SaveTrust(ctx, b.ID, b.TrustScore, b.IntegrityDigest); err != nil {
		s.log.WarnContext(ctx, "trust projection not saved", "batch_id", b.ID, "error", err)
	} else if s.cache != nil {
		if err := s.cache.Delete(context.WithoutCancel(ctx), b.ID.String()); err != nil {
			s.log.WarnContext(ctx, "batch cache invalidation failed", "batch_id", b.ID, "error", err)
		}
	}

	s.recorder.Record(ctx, entry)
	s.metrics.verification(ctx, entry.Outcome)
	s.metrics.trustScore(ctx, assessment.Score, entry.Outcome)
	if assessment.Anomaly {
		s.log.WarnContext(ctx, "suspicious scan",
			"batch_id", b.ID, "trust_score", assessment.Score, "reasons", assessment.Reasons,
			"device_id", req.Scan.DeviceID, "location", req.Scan.Location)
	}

	return &VerificationResult{
		Outcome:    entry.Outcome,
		BatchID:    b.ID.String(),
		ScanID:     entry.ID,
		CheckedAt:  now,
		TrustScore: assessment.Score,
		Reasons:    assessment.Reasons,
		Anomaly:    assessment.Anomaly,
		Batch:      b,
	}, nil
}

// ScanHistory returns a newest-first page of the batch's scans to its
// registrant or an admin, with the total count.
func (s *VerificationService) ScanHistory(ctx context.Context, actor models.Principal, batchID string, opts repositories.QueryOpts) ([]models.ScanLogEntry, int, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, 0, err
	}
	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("get batch: %w", err)
	}
	if !domainsvcs.HasOversight(b, actor) {
		return nil, 0, fmt.Errorf("%w: only the registrant or an admin may read scans", batchdomain.ErrRoleNotPermitted)
	}
	entries, total, err := s.scans.FindByBatch(ctx, b.ID.String(), opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find scans: %w", err)
	}
	return entries, total, nil
}

// reject logs an anomalous scan for a negative outcome. The batch, if any, is
// not modified.
func (s *VerificationService) reject(ctx context.Context, req VerifyRequest, outcome models.Outcome, b *models.Batch, now time.Time) *VerificationResult {
	entry := models.NewScanLogEntry(req.BatchID, outcome, req.Scan, true, 0, now)
	s.recorder.Record(ctx, entry)
	s.metrics.verification(ctx, outcome)
	s.log.WarnContext(ctx, "verification failed",
		"outcome", outcome, "batch_id", req.BatchID,
		"device_id", req.Scan.DeviceID, "location", req.Scan.Location)

	res := &VerificationResult{
		Outcome:   outcome,
		BatchID:   req.BatchID,
		ScanID:    entry.ID,
		CheckedAt: now,
		Reasons:   []string{},
		Anomaly:   true,
		Batch:     b,
	}
	if b != nil {
		res.TrustScore = b.TrustScore
	}
	return res
}
