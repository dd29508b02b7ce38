package app_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ghuser/medtrace/pkg/app"
	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/logger"
)

func TestBootstrap_FailsOnBadDatabaseURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "postgres://medtrace:secret@%zz/medtrace"}

	a, cleanup, err := app.Bootstrap(context.Background(), cfg, logger.NewWithWriter(io.Discard, "error"), app.ProcessAPI)
	if err == nil {
		t.Fatal("expected an error")
	}
	if a != nil || cleanup != nil {
		t.Fatal("a failed bootstrap must not return an application or cleanup")
	}
	if !strings.HasPrefix(err.Error(), "connect database:") {
		t.Fatalf("error should name the failing step, got %q", err)
	}
}

func TestProcess_String(t *testing.T) {
	if app.ProcessAPI.String() != "api" || app.ProcessWorker.String() != "worker" {
		t.Fatalf("got %q and %q", app.ProcessAPI, app.ProcessWorker)
	}
}
