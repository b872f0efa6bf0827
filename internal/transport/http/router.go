package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caseworks/internal/budget"
	"caseworks/internal/platform/metrics"
	"caseworks/internal/platform/middleware"
	platformredis "caseworks/internal/platform/redis"
	"caseworks/internal/stay"
	"caseworks/internal/timesession"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts. The transport layer stays thin;
// all business rules live behind the module handlers.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	TokenValidator middleware.TokenValidator
	Stays          *stay.Handler
	Budgets        *budget.Handler
	Sessions       *timesession.Handler
	DB             *sql.DB
	Redis          *platformredis.Client
}

// NewRouter wires all endpoints. Health and metrics are unauthenticated;
// everything else requires a valid bearer token.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.TokenValidator, deps.Logger))

		deps.Stays.Register(r)
		deps.Budgets.Register(r)
		deps.Sessions.Register(r)
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				deps.Logger.ErrorContext(ctx, "health check failed", "component", "postgres", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unhealthy","component":"postgres"}`))
				return
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				deps.Logger.ErrorContext(ctx, "health check failed", "component", "redis", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unhealthy","component":"redis"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
