package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/medtrace/pkg/app"
	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/httpx"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/services/batch/application/handlers"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// Options tunes the public surface.
type Options struct {
	// DevLogin exposes POST /session, which trusts the posted identity.
	DevLogin bool
	// VerifyRateLimit is the per-IP budget of POST /verify per minute; 0 disables it.
	VerifyRateLimit int
}

// BatchRoutes registers batch and verification endpoints on the provided chi router.
func BatchRoutes(r chi.Router, a *app.Application) {
	opts := Options{
		DevLogin:        a.Config.Environment != config.EnvProduction,
		VerifyRateLimit: a.Config.VerifyRateLimit,
	}
	Routes(r, appsvcs.New(a), a.SessionStore, a.Logger, opts)
}

// Routes mounts the handlers over an already wired service container.
func Routes(r chi.Router, svcs *appsvcs.Services, store sessions.Store, log logger.Logger, opts Options) {
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(store, log))
		r.With(httpx.EndpointRateLimit(opts.VerifyRateLimit)).
			Post("/verify", handlers.NewPostVerifyHandler(svcs).Execute)
		if opts.DevLogin {
			r.Post("/session", handlers.NewPostSessionHandler(store).Execute)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(store, log))
		r.Get("/holdings", handlers.NewGetHoldingsHandler(svcs).Execute)
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", handlers.NewPostBatchHandler(svcs).Execute)
			r.Route("/{batchID}", func(r chi.Router) {
				r.Get("/", handlers.NewGetBatchHandler(svcs).Execute)
				r.Post("/transfers", handlers.NewPostTransferHandler(svcs).Execute)
				r.Post("/sales", handlers.NewPostSaleHandler(svcs).Execute)
				r.Post("/block", handlers.NewPostBlockHandler(svcs).Execute)
				r.Get("/available", handlers.NewGetAvailableHandler(svcs).Execute)
				r.Get("/signature", handlers.NewGetSignatureHandler(svcs).Execute)
				r.Get("/scans", handlers.NewGetScansHandler(svcs).Execute)
			})
		})
	})
}
