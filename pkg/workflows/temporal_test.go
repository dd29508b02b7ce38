package workflows

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ghuser/medtrace/pkg/logger"
)

func TestWorkerOptions(t *testing.T) {
	opts := workerOptions("medtrace@host:1", 8)
	if opts.Identity != "medtrace@host:1" || opts.MaxConcurrentActivityExecutionSize != 8 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts := workerOptions("x", 0); opts.MaxConcurrentActivityExecutionSize != 0 {
		t.Fatalf("zero concurrency must keep the SDK default, got %d", opts.MaxConcurrentActivityExecutionSize)
	}
}

func TestProcessIdentity(t *testing.T) {
	id := processIdentity("medtrace-worker")
	if !strings.HasPrefix(id, "medtrace-worker@") || !strings.Contains(id, ":") {
		t.Fatalf("unexpected identity %q", id)
	}
}

func TestTemporalLogger_PassesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := temporalLogger{log: logger.NewWithWriter(&buf, "debug")}
	l.Warn("activity retry", "ActivityType", "RecordScan", "Attempt", 3)

	out := buf.String()
	for _, want := range []string{`"msg":"activity retry"`, `"ActivityType":"RecordScan"`, `"Attempt":3`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}
