// Package httptransport assembles the HTTP surface: middleware stack,
// module handlers, and the unauthenticated operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quiverbook/internal/archers"
	"quiverbook/internal/competitions"
	"quiverbook/internal/equipment"
	"quiverbook/internal/platform/metrics"
	"quiverbook/internal/platform/middleware"
	recordsHandler "quiverbook/internal/records/handler"
	"quiverbook/internal/rounds"
	scoresHandler "quiverbook/internal/scores/handler"
	stagingHandler "quiverbook/internal/staging/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	JWTValidator   middleware.JWTValidator
	RequestTimeout time.Duration

	Staging *stagingHandler.Handler
	Scores  *scoresHandler.Handler
	Records *recordsHandler.Handler

	Archers      archers.Store
	Rounds       rounds.Store
	Equipment    equipment.Store
	Competitions competitions.Store
}

// NewRouter builds the full application router. Operational endpoints stay
// outside the auth boundary; everything else requires a bearer token.
func NewRouter(deps Deps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))

		deps.Staging.Register(r)
		deps.Scores.Register(r)
		deps.Records.Register(r)

		ref := &referenceHandler{
			archers:      deps.Archers,
			rounds:       deps.Rounds,
			equipment:    deps.Equipment,
			competitions: deps.Competitions,
		}
		ref.register(r)
	})

	return r
}
