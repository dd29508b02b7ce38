package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/medtrace/docs/swagger"
	"github.com/ghuser/medtrace/pkg/app"
	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/httpx"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/telemetry"
	batchApi "github.com/ghuser/medtrace/services/batch/application/api"
)

// @title					MedTrace API
// @version				1.0
// @description			Pharmaceutical batch ledger and counterfeit verification API.
// @termsOfService			http://swagger.io/terms/
// @contact.name			API Support
// @contact.email			support@medtrace.example
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		return fmt.Errorf("production config: %w", err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	// Crash reporting is optional.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	a, cleanup, err := app.Bootstrap(ctx, cfg, log, app.ProcessAPI)
	if err != nil {
		return err
	}
	defer cleanup()

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimit:          cfg.RateLimit,
			RequestTimeout:     cfg.RequestTimeout,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)
	r.Get("/health", httpx.HealthHandler(healthChecks(a)))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, a)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r, cfg.RequestTimeout)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", "grace", shutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// shutdownGrace is how long in-flight requests get to finish.
const shutdownGrace = 30 * time.Second

func healthChecks(a *app.Application) httpx.HealthChecks {
	checks := httpx.HealthChecks{
		Database: a.Db,
		Redis:    a.Redis,
		EventBus: a.EventBus,
		Pools:    map[string]httpx.PoolReporter{"scan-log": a.ScanPool},
	}
	// A nil *TemporalClient in the interface would not compare equal to nil.
	if a.TemporalClient != nil {
		checks.Temporal = a.TemporalClient
	}
	return checks
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	batchApi.BatchRoutes(r, a)
}
