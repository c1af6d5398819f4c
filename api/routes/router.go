package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookfairhq/pos-backend/api/controllers"
	"github.com/bookfairhq/pos-backend/api/middleware"
	"github.com/bookfairhq/pos-backend/pkg/logger"
)

type Params struct {
	Logger     *logger.Logger
	Registry   *prometheus.Registry
	Dispatcher controllers.Dispatcher
	Catalog    controllers.CacheInvalidator
}

// New builds the HTTP surface: health and metrics for operators, plus the
// action dispatch endpoint a chat transport calls on every user interaction.
func New(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(p.Logger))
	r.Use(middleware.Logging(p.Logger))
	r.Use(middleware.Recoverer(p.Logger))

	health := controllers.NewHealthController()
	actions := controllers.NewActionsController(p.Dispatcher, p.Logger)
	refresh := controllers.NewRefreshController(p.Catalog, p.Logger)

	r.Get("/healthz", health.Handle)
	if p.Registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/actions", actions.Handle)
		r.Post("/refresh", refresh.Handle)
	})

	return r
}
