package app

import (
	"github.com/gorilla/sessions"

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

// Application is the infrastructure a process hands to its services. Build it
// with Bootstrap. Fields marked API-only are nil in the worker.
//
// Logger is trace-aware: the *Context methods add trace_id, span_id and
// request_id, so request-path code logs with them.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient // nil unless TEMPORAL_ENABLED
	SessionStore   sessions.Store            // API-only
	Signer         *signing.Signer
	Locker         locker.Locker
	ScanPool       *worker.Pool // API-only
}
