package services

import (
	pkgcache "github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

func toCachedBatch(b *models.Batch) *pkgcache.CachedBatch {
	evts := make([]pkgcache.CachedLedgerEvent, len(b.Events))
	for i, e := range b.Events {
		evts[i] = pkgcache.CachedLedgerEvent{
			Sequence:      e.Sequence,
			Kind:          string(e.Kind),
			Recipient:     e.Recipient.String(),
			RecipientRole: string(e.RecipientRole),
			SourceParty:   e.SourceParty.String(),
			Units:         e.Units,
			Timestamp:     e.Timestamp,
		}
	}
	return &pkgcache.CachedBatch{
		ID:              b.ID.String(),
		Name:            b.Name,
		ProducerName:    b.ProducerName,
		ManufactureDate: b.ManufactureDate,
		ExpiryDate:      b.ExpiryDate,
		TotalUnits:      b.TotalUnits,
		Status:          string(b.Status),
		Registrant:      b.Registrant.String(),
		TrustScore:      b.TrustScore,
		IntegrityDigest: b.IntegrityDigest,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Events:          evts,
	}
}

func fromCachedBatch(c *pkgcache.CachedBatch) *models.Batch {
	evts := make([]models.LedgerEvent, len(c.Events))
	for i, e := range c.Events {
		evts[i] = models.LedgerEvent{
			Sequence:      e.Sequence,
			Kind:          models.EventKind(e.Kind),
			Recipient:     models.Party(e.Recipient),
			RecipientRole: models.Role(e.RecipientRole),
			SourceParty:   models.Party(e.SourceParty),
			Units:         e.Units,
			Timestamp:     e.Timestamp.UTC(),
		}
	}
	return &models.Batch{
		ID:              models.BatchID(c.ID),
		Name:            c.Name,
		ProducerName:    c.ProducerName,
		ManufactureDate: c.ManufactureDate.UTC(),
		ExpiryDate:      c.ExpiryDate.UTC(),
		TotalUnits:      c.TotalUnits,
		Status:          models.Status(c.Status),
		Registrant:      models.Party(c.Registrant),
		TrustScore:      c.TrustScore,
		IntegrityDigest: c.IntegrityDigest,
		CreatedAt:       c.CreatedAt.UTC(),
		UpdatedAt:       c.UpdatedAt.UTC(),
		Events:          evts,
	}
}
