package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ghuser/medtrace/pkg/worker"
)

const healthProbeTimeout = 2 * time.Second

// HealthChecker is anything with a Ping: the database pool, Redis, the event
// bus and the Temporal client all qualify.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PoolReporter exposes worker pool usage; *worker.Pool satisfies it.
type PoolReporter interface {
	Stats() worker.Stats
}

// HealthChecks lists what /health probes. Pools are reported but never
// degrade the status: a saturated scan pool sheds writes to the retry queue
// instead of failing requests.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	// Temporal is nil when durable retries are disabled.
	Temporal HealthChecker
	Pools    map[string]PoolReporter
}

type healthResponse struct {
	Status   string                  `json:"status"`
	Database string                  `json:"database"`
	Redis    string                  `json:"redis"`
	EventBus string                  `json:"event_bus"`
	Temporal string                  `json:"temporal,omitempty"`
	Pools    map[string]worker.Stats `json:"pools,omitempty"`
}

// HealthHandler probes every configured dependency within one shared
// deadline. Any failure answers 503 with status "degraded".
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		probe := func(c HealthChecker, field *string) {
			if c == nil {
				return
			}
			*field = "ok"
			if err := c.Ping(ctx); err != nil {
				*field = "unreachable"
				resp.Status = "degraded"
			}
		}
		probe(checks.Database, &resp.Database)
		probe(checks.Redis, &resp.Redis)
		probe(checks.EventBus, &resp.EventBus)
		probe(checks.Temporal, &resp.Temporal)

		if len(checks.Pools) > 0 {
			resp.Pools = make(map[string]worker.Stats, len(checks.Pools))
			for name, p := range checks.Pools {
				resp.Pools[name] = p.Stats()
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
