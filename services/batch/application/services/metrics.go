package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/medtrace/pkg/telemetry"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

const meterName = "github.com/ghuser/medtrace/services/batch"

// serviceMetrics holds the domain instruments exported through the global meter
// provider (Prometheus /metrics and OTLP when configured).
type serviceMetrics struct {
	verifications metric.Int64Counter
	rejections    metric.Int64Counter
	scanFailures  metric.Int64Counter
	trustScores   metric.Int64Histogram
}

// newServiceMetrics registers the instruments. Instrument creation only fails on
// invalid names, in which case the SDK still returns a usable no-op instrument.
func newServiceMetrics() *serviceMetrics {
	meter := otel.Meter(meterName)
	verifications, _ := meter.Int64Counter("medtrace.verifications",
		metric.WithDescription("Verification attempts by outcome"))
	rejections, _ := meter.Int64Counter("medtrace.ledger.rejections",
		metric.WithDescription("Ledger operations rejected by the domain rules"))
	scanFailures, _ := meter.Int64Counter("medtrace.scanlog.failures",
		metric.WithDescription("Scan log writes handed to the retry queue"))
	trustScores, _ := meter.Int64Histogram(telemetry.TrustScoreHistogram,
		metric.WithDescription("Trust scores assigned to scored verifications"))
	return &serviceMetrics{
		verifications: verifications,
		rejections:    rejections,
		scanFailures:  scanFailures,
		trustScores:   trustScores,
	}
}

func (m *serviceMetrics) verification(ctx context.Context, outcome models.Outcome) {
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

func (m *serviceMetrics) trustScore(ctx context.Context, score int, outcome models.Outcome) {
	m.trustScores.Record(ctx, int64(score), metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

func (m *serviceMetrics) rejection(ctx context.Context, op string, err error) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("reason", rejectionReason(err)),
	))
}

func (m *serviceMetrics) scanFailure(ctx context.Context, stage string) {
	m.scanFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// rejectionReason keeps the reason attribute low-cardinality.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, batchdomain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, batchdomain.ErrUnauthorizedActor):
		return "unauthorized_actor"
	case errors.Is(err, batchdomain.ErrBatchNotActive):
		return "not_active"
	case errors.Is(err, batchdomain.ErrRoleNotPermitted):
		return "role_not_permitted"
	case errors.Is(err, batchdomain.ErrInvalidUnitCount):
		return "invalid_unit_count"
	case errors.Is(err, batchdomain.ErrInvalidParty):
		return "invalid_party"
	case errors.Is(err, batchdomain.ErrInvalidBatch):
		return "invalid_batch"
	case errors.Is(err, batchdomain.ErrBatchNotFound):
		return "not_found"
	case errors.Is(err, batchdomain.ErrBatchAlreadyExists):
		return "already_exists"
	default:
		return "other"
	}
}
