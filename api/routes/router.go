package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stockline-backend/api/controllers"
	"github.com/angelmondragon/stockline-backend/api/middleware"
	"github.com/angelmondragon/stockline-backend/pkg/config"
	"github.com/angelmondragon/stockline-backend/pkg/logger"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

// NewRouter assembles the dev/ops HTTP surface: event ingestion, health and
// metrics. The conversational transport itself lives outside this repo.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db dbPinger,
	engine controllers.EventDispatcher,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, db))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", controllers.PostEvent(engine, logg))
	})

	return r
}
