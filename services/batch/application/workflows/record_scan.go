// Package workflows holds the Temporal workflows of the batch context.
package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	domainevents "github.com/ghuser/medtrace/services/batch/domain/events"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// RecordScanWorkflowName is the registered name of RecordScanWorkflow.
const RecordScanWorkflowName = "RecordScanWorkflow"

// scanRetryPolicy keeps retrying a failed scan write for about a day.
var scanRetryPolicy = &temporal.RetryPolicy{
	InitialInterval:    time.Second,
	BackoffCoefficient: 2.0,
	MaximumInterval:    5 * time.Minute,
	MaximumAttempts:    300,
}

// ScanWriter appends a scan log entry idempotently.
type ScanWriter interface {
	Write(ctx context.Context, entry models.ScanLogEntry) error
}

// ScanActivities are the activities used by RecordScanWorkflow.
type ScanActivities struct {
	Writer ScanWriter
}

// AppendScan writes one scan log entry.
func (a *ScanActivities) AppendScan(ctx context.Context, p domainevents.ScanPayload) error {
	return a.Writer.Write(ctx, p.Entry())
}

// RecordScanWorkflow durably writes a scan log entry whose first write failed.
func RecordScanWorkflow(ctx workflow.Context, p domainevents.ScanPayload) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         scanRetryPolicy,
	})
	var a *ScanActivities
	if err := workflow.ExecuteActivity(ctx, a.AppendScan, p).Get(ctx, nil); err != nil {
		return fmt.Errorf("append scan %s: %w", p.ID, err)
	}
	workflow.GetLogger(ctx).Info("scan log entry recorded", "scan_id", p.ID.String(), "batch_id", p.BatchID)
	return nil
}

// Register adds the scan workflow and its activities to a Temporal worker.
func Register(r worker.Registry, a *ScanActivities) {
	r.RegisterWorkflowWithOptions(RecordScanWorkflow, workflow.RegisterOptions{Name: RecordScanWorkflowName})
	r.RegisterActivity(a)
}

// TemporalRetryQueue schedules RecordScanWorkflow for failed scan writes.
// The workflow ID is derived from the scan ID, so enqueuing the same entry
// twice attaches to the running workflow instead of starting another.
type TemporalRetryQueue struct {
	client    client.Client
	taskQueue string
}

// NewTemporalRetryQueue returns a queue that starts workflows on taskQueue.
func NewTemporalRetryQueue(c client.Client, taskQueue string) *TemporalRetryQueue {
	return &TemporalRetryQueue{client: c, taskQueue: taskQueue}
}

// Enqueue starts RecordScanWorkflow for entry.
func (q *TemporalRetryQueue) Enqueue(ctx context.Context, entry models.ScanLogEntry, _ error) error {
	_, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "record-scan-" + entry.ID.String(),
		TaskQueue: q.taskQueue,
	}, RecordScanWorkflowName, domainevents.NewScanPayload(entry))
	if err != nil {
		return fmt.Errorf("start record scan workflow: %w", err)
	}
	return nil
}
