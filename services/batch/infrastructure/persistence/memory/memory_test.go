package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

func newBatch(t *testing.T, id models.BatchID, registrant models.Party) *models.Batch {
	t.Helper()
	b, err := models.NewBatch(id, "X", "Acme", time.Now(), time.Now().AddDate(1, 0, 0), 100, registrant, models.RoleManufacturer, time.Now())
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	return b
}

func TestBatchRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository()
	b := newBatch(t, "B1", "mfg@x")

	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, b); !errors.Is(err, batchdomain.ErrBatchAlreadyExists) {
		t.Fatalf("expected ErrBatchAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, batchdomain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}

	got, err := repo.GetByID(ctx, "B1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.Status = models.StatusBlocked
	again, _ := repo.GetByID(ctx, "B1")
	if again.Status != models.StatusActive {
		t.Fatal("returned batches must not alias stored state")
	}
}

func TestBatchRepository_UpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository()
	if err := repo.Create(ctx, newBatch(t, "B1", "mfg@x")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "B1", func(b *models.Batch) error {
		b.Append(models.LedgerEvent{Kind: models.EventTransferred, SourceParty: "mfg@x", Recipient: "dist@y", Units: 5, Timestamp: time.Now()})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := repo.GetByID(ctx, "B1")
	if len(got.Events) != 1 {
		t.Fatalf("failed update must not persist, got %d events", len(got.Events))
	}

	if _, err := repo.Update(ctx, "missing", func(*models.Batch) error { return nil }); !errors.Is(err, batchdomain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestBatchRepository_UpdateSerializesPerBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository()
	if err := repo.Create(ctx, newBatch(t, "B1", "mfg@x")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, "B1", func(b *models.Batch) error {
				b.Append(models.LedgerEvent{Kind: models.EventTransferred, SourceParty: "mfg@x", Recipient: "dist@y", Units: 1, Timestamp: time.Now()})
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := repo.GetByID(ctx, "B1")
	if len(got.Events) != 51 {
		t.Fatalf("expected 51 events, got %d", len(got.Events))
	}
	for i, e := range got.Events {
		if e.Sequence != i+1 {
			t.Fatalf("event %d has sequence %d", i, e.Sequence)
		}
	}
}

func TestBatchRepository_SaveTrustKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository()
	b := newBatch(t, "B1", "mfg@x")
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SaveTrust(ctx, "B1", 55, "abc"); err != nil {
		t.Fatalf("SaveTrust: %v", err)
	}
	got, _ := repo.GetByID(ctx, "B1")
	if got.TrustScore != 55 || got.IntegrityDigest != "abc" || !got.UpdatedAt.Equal(b.UpdatedAt) {
		t.Fatalf("unexpected trust state: %+v", got)
	}
}

func TestBatchRepository_FindByParty(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository()
	for _, id := range []models.BatchID{"B1", "B2", "B3"} {
		if err := repo.Create(ctx, newBatch(t, id, "mfg@x")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	_, _ = repo.Update(ctx, "B2", func(b *models.Batch) error {
		b.Append(models.LedgerEvent{Kind: models.EventTransferred, SourceParty: "mfg@x", Recipient: "dist@y", Units: 1, Timestamp: time.Now().Add(time.Minute)})
		return nil
	})

	got, err := repo.FindByParty(ctx, "dist@y", repositories.QueryOpts{})
	if err != nil || len(got) != 1 || got[0].ID != "B2" {
		t.Fatalf("expected only B2 for dist@y, got %v %v", got, err)
	}

	all, _ := repo.FindByParty(ctx, "mfg@x", repositories.QueryOpts{})
	if len(all) != 3 || all[0].ID != "B2" {
		t.Fatalf("expected 3 batches with B2 first, got %d", len(all))
	}
	page, _ := repo.FindByParty(ctx, "mfg@x", repositories.QueryOpts{Limit: 1, Offset: 1})
	if len(page) != 1 {
		t.Fatalf("expected one batch in page, got %d", len(page))
	}
}

func TestScanLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScanLogRepository()
	base := time.Now()

	first := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{DeviceID: "d1"}, false, 100, base.Add(time.Second))
	second := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{DeviceID: "d2"}, false, 100, base)
	other := models.NewScanLogEntry("B2", models.OutcomeFakeSignature, models.ScanContext{}, true, 0, base)

	for _, e := range []models.ScanLogEntry{first, second, other, first} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if repo.Len() != 3 {
		t.Fatalf("duplicate append must be a no-op, got %d entries", repo.Len())
	}

	list, _ := repo.ListByBatch(ctx, "B1")
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected chronological order, got %+v", list)
	}

	page, total, _ := repo.FindByBatch(ctx, "B1", repositories.QueryOpts{Limit: 1})
	if total != 2 || len(page) != 1 || page[0].ID != first.ID {
		t.Fatalf("expected newest-first page, got %+v total %d", page, total)
	}
}

func TestScoringReader_LoadForScoring(t *testing.T) {
	ctx := context.Background()
	batches := NewBatchRepository()
	scans := NewScanLogRepository()
	r := NewScoringReader(batches, scans)

	if _, _, err := r.LoadForScoring(ctx, "B1"); !errors.Is(err, batchdomain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}

	if err := batches.Create(ctx, newBatch(t, "B1", "mfg@x")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	now := time.Now()
	later := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{DeviceID: "d2"}, false, 100, now)
	earlier := models.NewScanLogEntry("B1", models.OutcomeGenuine, models.ScanContext{DeviceID: "d1"}, false, 100, now.Add(-time.Minute))
	other := models.NewScanLogEntry("B2", models.OutcomeGenuine, models.ScanContext{}, false, 100, now)
	for _, e := range []models.ScanLogEntry{later, earlier, other} {
		if err := scans.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	b, history, err := r.LoadForScoring(ctx, "B1")
	if err != nil {
		t.Fatalf("LoadForScoring: %v", err)
	}
	if b.ID != "B1" {
		t.Fatalf("unexpected batch %s", b.ID)
	}
	if len(history) != 2 || history[0].ID != earlier.ID || history[1].ID != later.ID {
		t.Fatalf("expected the batch's scans oldest first, got %+v", history)
	}
}
