package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewWithWriter(os.Stderr, "info").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg).With("component", "migrator")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := migrator.Source{Context: "batch", FS: MigrationsFS}
	if err := migrator.RunMigrations(ctx, cfg.DatabaseURL, src, log); err != nil {
		log.Error("batch migrations failed", "error", err)
		os.Exit(1)
	}
}
