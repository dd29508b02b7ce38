package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ghuser/medtrace/pkg/worker"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/memory"
	"github.com/ghuser/medtrace/services/batch/infrastructure/retry"
)

func TestVerify_TamperedSignature(t *testing.T) {
	f := newFixture(t)
	before, sig := f.register(t, "B1", 100)
	ctx := context.Background()

	tampered := "0" + sig[1:]
	if tampered == sig {
		tampered = "1" + sig[1:]
	}
	res, err := f.verify.Verify(ctx, VerifyRequest{BatchID: "B1", Signature: tampered, Scan: models.ScanContext{DeviceID: "d1"}})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Outcome != models.OutcomeFakeSignature || !res.Anomaly || res.Batch != nil {
		t.Fatalf("unexpected result: %+v", res)
	}

	logged, _ := f.scans.ListByBatch(ctx, "B1")
	if len(logged) != 1 || logged[0].Outcome != models.OutcomeFakeSignature || !logged[0].Anomaly {
		t.Fatalf("expected one anomalous FAKE_SIGNATURE entry, got %+v", logged)
	}

	after, _ := f.batches.GetByID(ctx, "B1")
	if after.TrustScore != before.TrustScore || !after.UpdatedAt.Equal(before.UpdatedAt) || len(after.Events) != 1 {
		t.Fatal("a fake scan must leave the batch untouched")
	}
}

func TestVerify_MissingSignature(t *testing.T) {
	f := newFixture(t)
	f.register(t, "B1", 10)
	res, err := f.verify.Verify(context.Background(), VerifyRequest{BatchID: "B1"})
	if err != nil || res.Outcome != models.OutcomeFakeSignature {
		t.Fatalf("expected FAKE_SIGNATURE, got %+v %v", res, err)
	}
}

func TestVerify_UnknownBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A validly signed code for a batch that was never registered.
	res, err := f.verify.Verify(ctx, VerifyRequest{BatchID: "GHOST-1", Signature: f.signer.Sign("GHOST-1")})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Outcome != models.OutcomeFakeUnknown || !res.Anomaly {
		t.Fatalf("unexpected result: %+v", res)
	}
	if logged, _ := f.scans.ListByBatch(ctx, "GHOST-1"); len(logged) != 1 {
		t.Fatalf("expected the scan to be logged under the raw id, got %d", len(logged))
	}
}

func TestVerify_Blocked(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	ctx := context.Background()
	if _, err := f.ledger.Block(ctx, admin, "B1"); err != nil {
		t.Fatalf("Block: %v", err)
	}

	res, err := f.verify.Verify(ctx, VerifyRequest{BatchID: "B1", Signature: sig})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Outcome != models.OutcomeBlocked || !res.Anomaly || res.Batch == nil || res.Batch.Status != models.StatusBlocked {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerify_FourDevicesIsGenuineAt80(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	ctx := context.Background()

	var res *VerificationResult
	for i := 1; i <= 4; i++ {
		var err error
		res, err = f.verify.Verify(ctx, VerifyRequest{
			BatchID:   "B1",
			Signature: sig,
			Scan:      models.ScanContext{DeviceID: fmt.Sprintf("dev-%d", i), Location: "Pune"},
		})
		if err != nil {
			t.Fatalf("Verify #%d: %v", i, err)
		}
	}

	if res.Outcome != models.OutcomeGenuine || res.Anomaly || res.TrustScore != 80 {
		t.Fatalf("expected GENUINE at 80, got %+v", res)
	}
	if len(res.Reasons) != 1 || res.Reasons[0] != domainsvcs.ReasonMultipleDevices {
		t.Fatalf("unexpected reasons: %v", res.Reasons)
	}

	b, _ := f.batches.GetByID(ctx, "B1")
	if b.TrustScore != 80 || b.IntegrityDigest != domainsvcs.IntegrityDigest(b) {
		t.Fatalf("expected the trust projection to be saved, got %d %s", b.TrustScore, b.IntegrityDigest)
	}
}

func TestVerify_SuspiciousAfterSellOut(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	ctx := context.Background()
	if _, err := f.ledger.Sell(ctx, mfg, "B1", "", 10); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	f.verify.now = func() time.Time { return time.Now().Add(time.Hour) }

	var res *VerificationResult
	for i := 1; i <= 4; i++ {
		var err error
		res, err = f.verify.Verify(ctx, VerifyRequest{BatchID: "B1", Signature: sig, Scan: models.ScanContext{DeviceID: fmt.Sprintf("dev-%d", i)}})
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
	}

	// 100 - 20 (devices) - 30 (scanned after sell-out) = 50
	if res.Outcome != models.OutcomeSuspicious || !res.Anomaly || res.TrustScore != 50 {
		t.Fatalf("expected SUSPICIOUS at 50, got %+v", res)
	}
	logged, _ := f.scans.ListByBatch(ctx, "B1")
	if last := logged[len(logged)-1]; last.Outcome != models.OutcomeSuspicious || !last.Anomaly || last.TrustScore != 50 {
		t.Fatalf("unexpected logged entry: %+v", last)
	}
}

func TestVerify_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	ctx := context.Background()
	if _, err := f.ledger.GetBatch(ctx, "B1"); err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if _, err := f.verify.Verify(ctx, VerifyRequest{BatchID: "B1", Signature: sig}); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := f.cache.Get(ctx, "B1"); err == nil {
		t.Fatal("expected the cached batch to be dropped after a trust refresh")
	}
}

func TestScanHistory(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.verify.Verify(ctx, VerifyRequest{BatchID: "B1", Signature: sig}); err != nil {
			t.Fatalf("Verify: %v", err)
		}
	}

	entries, total, err := f.verify.ScanHistory(ctx, mfg, "B1", repositories.QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("ScanHistory: %v", err)
	}
	if total != 3 || len(entries) != 2 {
		t.Fatalf("expected page of 2 of 3, got %d of %d", len(entries), total)
	}
	if _, _, err := f.verify.ScanHistory(ctx, admin, "B1", repositories.QueryOpts{}); err != nil {
		t.Fatalf("admin ScanHistory: %v", err)
	}
	if _, _, err := f.verify.ScanHistory(ctx, dist, "B1", repositories.QueryOpts{}); !errors.Is(err, batchdomain.ErrRoleNotPermitted) {
		t.Fatalf("expected ErrRoleNotPermitted, got %v", err)
	}
}

// brokenScanRepo fails every write.
type brokenScanRepo struct {
	*memory.ScanLogRepository
}

func (brokenScanRepo) Append(context.Context, models.ScanLogEntry) error {
	return errors.New("connection refused")
}

func TestScanRecorder_HandsFailedWritesToRetryQueue(t *testing.T) {
	queue := &captureQueue{}
	r := NewScanRecorder(brokenScanRepo{memory.NewScanLogRepository()}, nil, queue, nopLogger())

	entry := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{}, false, 100, time.Now())
	r.Record(context.Background(), entry)

	if queue.len() != 1 || queue.entries[0].ID != entry.ID {
		t.Fatalf("expected the entry in the retry queue, got %+v", queue.entries)
	}
}

func TestScanRecorder_WritesOnPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool, err := worker.New(ctx, worker.Config{Name: "scans", Size: 2}, nopLogger())
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}
	defer pool.Shutdown()

	repo := memory.NewScanLogRepository()
	r := NewScanRecorder(repo, pool, &captureQueue{}, nopLogger())
	for i := 0; i < 5; i++ {
		r.Record(ctx, models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{}, false, 100, time.Now()))
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.Len() < 5 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 5 entries written, got %d", repo.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScanRecorder_WriteIsIdempotent(t *testing.T) {
	repo := memory.NewScanLogRepository()
	r := NewScanRecorder(repo, nil, nil, nopLogger())
	entry := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{}, false, 100, time.Now())
	for i := 0; i < 3; i++ {
		if err := r.Write(context.Background(), entry); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if repo.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", repo.Len())
	}
}

// flakyScanRepo fails every other write.
type flakyScanRepo struct {
	*memory.ScanLogRepository
	calls atomic.Int32
}

func (r *flakyScanRepo) Append(ctx context.Context, entry models.ScanLogEntry) error {
	if r.calls.Add(1)%2 == 0 {
		return errors.New("connection refused")
	}
	return r.ScanLogRepository.Append(ctx, entry)
}

func TestScanRecorder_ShutdownLosesNoEntries(t *testing.T) {
	for round := 0; round < 20; round++ {
		pool, err := worker.New(context.Background(), worker.Config{Name: "scan-log", Size: 64, Nonblocking: true}, nopLogger())
		if err != nil {
			t.Fatalf("worker.New: %v", err)
		}
		repo := &flakyScanRepo{ScanLogRepository: memory.NewScanLogRepository()}
		queue := &captureQueue{}
		r := NewScanRecorder(repo, pool, queue, nopLogger())

		const recorded = 100
		for i := 0; i < recorded; i++ {
			r.Record(context.Background(), models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{}, false, 100, time.Now()))
		}
		pool.Shutdown()

		if got := repo.Len() + queue.len(); got != recorded {
			t.Fatalf("round %d: %d written + %d queued, want %d", round, repo.Len(), queue.len(), recorded)
		}
	}
}

func TestScanRecorder_FallsBackWhenRetryQueueIsDown(t *testing.T) {
	buffer := &captureQueue{}
	r := NewScanRecorder(brokenScanRepo{memory.NewScanLogRepository()}, nil, retry.Fallback{Primary: failingQueue{}, Secondary: buffer}, nopLogger())
	entry := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{}, false, 100, time.Now())
	r.Record(context.Background(), entry)

	if buffer.len() != 1 || buffer.entries[0].ID != entry.ID {
		t.Fatalf("expected the entry parked in the buffer, got %+v", buffer.entries)
	}
}

// failingQueue stands in for the event bus during a database outage.
type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, models.ScanLogEntry, error) error {
	return errors.New("publish scan retry: connection refused")
}

func TestWithBuffer(t *testing.T) {
	buffer := retry.NewRedisBuffer(nil)
	if q := withBuffer(nil, buffer); q != ScanRetryQueue(buffer) {
		t.Fatalf("without a primary queue the buffer is the queue, got %T", q)
	}
	q, ok := withBuffer(failingQueue{}, buffer).(retry.Fallback)
	if !ok || q.Secondary != retry.Queue(buffer) {
		t.Fatalf("expected the buffer behind the primary queue, got %#v", q)
	}
}

// snapshotStub serves a fixed batch and history, or fails.
type snapshotStub struct {
	batch   *models.Batch
	history []models.ScanLogEntry
	err     error
}

func (s snapshotStub) LoadForScoring(context.Context, models.BatchID) (*models.Batch, []models.ScanLogEntry, error) {
	return s.batch, s.history, s.err
}

func TestVerify_ScoresFromOneSnapshot(t *testing.T) {
	f := newFixture(t)
	b, sig := f.register(t, "B1", 10)

	var history []models.ScanLogEntry
	for _, device := range []string{"d1", "d2", "d3"} {
		history = append(history, models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{DeviceID: device}, false, 100, time.Now()))
	}
	recorder := NewScanRecorder(f.scans, nil, nil, nopLogger())
	svc := NewVerificationService(f.batches, f.scans, snapshotStub{batch: b, history: history}, recorder, f.cache, f.signer, nopLogger())

	// The scan log itself is empty; only the snapshot carries three devices.
	res, err := svc.Verify(context.Background(), VerifyRequest{BatchID: "B1", Signature: sig, Scan: models.ScanContext{DeviceID: "d4"}})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.TrustScore != 80 || len(res.Reasons) != 1 || res.Reasons[0] != domainsvcs.ReasonMultipleDevices {
		t.Fatalf("expected 80 for a fourth device, got %d %v", res.TrustScore, res.Reasons)
	}
}

func TestVerify_SnapshotFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	_, sig := f.register(t, "B1", 10)
	recorder := NewScanRecorder(f.scans, nil, nil, nopLogger())
	svc := NewVerificationService(f.batches, f.scans, snapshotStub{err: errors.New("begin snapshot: connection refused")}, recorder, f.cache, f.signer, nopLogger())

	if _, err := svc.Verify(context.Background(), VerifyRequest{BatchID: "B1", Signature: sig}); err == nil {
		t.Fatal("expected the read failure to surface")
	}
}
