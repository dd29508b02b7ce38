package app

import (
	"context"
	"fmt"

	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/database"
	"github.com/ghuser/medtrace/pkg/events"
	"github.com/ghuser/medtrace/pkg/locker"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/signing"
	"github.com/ghuser/medtrace/pkg/worker"
	"github.com/ghuser/medtrace/pkg/workflows"
)

// Process selects the process-specific pieces Bootstrap wires.
type Process int

const (
	// ProcessAPI adds the session store, the scan log pool and the outbox
	// forwarder.
	ProcessAPI Process = iota
	ProcessWorker
)

func (p Process) String() string {
	if p == ProcessAPI {
		return "api"
	}
	return "worker"
}

// lockRetries bounds how often a batch lock is retried before the caller
// proceeds without it.
const lockRetries = 20

// Bootstrap connects the infrastructure for process p. The returned cleanup
// releases it in reverse order. When a step fails Bootstrap releases what it
// already opened and returns a nil cleanup.
//
// Background work (the forwarder, the scan pool) runs on a context detached
// from ctx, so a shutdown signal does not cut off requests that are still
// draining. Cleanup cancels it last.
func Bootstrap(ctx context.Context, cfg *config.Config, log logger.Logger, p Process) (*Application, func(), error) {
	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		cancel()
	}
	fail := func(step string, err error) (*Application, func(), error) {
		cleanup()
		return nil, nil, fmt.Errorf("%s: %w", step, err)
	}

	a := &Application{Config: cfg, Logger: log}

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fail("connect database", err)
	}
	a.Db = db
	closers = append(closers, db.Close)
	log.Info("database pool connected")

	bus, err := events.New(cfg, log, events.Options{Forwarder: p == ProcessAPI})
	if err != nil {
		return fail("setup event bus", err)
	}
	a.EventBus = bus
	closers = append(closers, func() {
		if err := bus.Close(); err != nil {
			log.Warn("event bus close", "error", err)
		}
	})
	if p == ProcessAPI {
		if err := bus.StartForwarder(bg); err != nil {
			return fail("start event forwarder", err)
		}
	}

	rdb, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fail("connect redis", err)
	}
	a.Redis = rdb
	closers = append(closers, func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close", "error", err)
		}
	})
	log.Info("redis connected", "pool_size", cfg.RedisPoolSize)

	if a.Signer, err = signing.NewSigner(cfg.SigningSecret); err != nil {
		return fail("initialize batch signer", err)
	}
	a.Locker = locker.NewRedisLocker(rdb.Client(), cfg.BatchLockTTL/lockRetries, lockRetries)

	if cfg.TemporalEnabled {
		tc, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			return fail("connect temporal", err)
		}
		a.TemporalClient = tc
		closers = append(closers, tc.Close)
	}

	if p == ProcessAPI {
		pool, err := worker.New(bg, worker.Config{
			Name:        "scan-log",
			Size:        cfg.ScanPoolSize,
			Nonblocking: true,
		}, log)
		if err != nil {
			return fail("start scan log pool", err)
		}
		a.ScanPool = pool
		closers = append(closers, pool.Shutdown)

		a.SessionStore = auth.NewSessionStore(
			rdb.Client(),
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			cfg.Environment == config.EnvProduction,
			cfg.SessionTTL,
		)
		log.Info("session store initialized", "backend", "redis", "ttl", cfg.SessionTTL)
	}

	log.Info("infrastructure ready", "process", p.String(), "temporal", cfg.TemporalEnabled)
	return a, cleanup, nil
}
