package api

import (
	"net/http"
	"zust-route-service/internal/api/handlers"
	"zust-route-service/internal/platform/obs"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(routes handlers.RouteService, raw handlers.RawRouteLoader) http.Handler {
	obs.Register()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(chimiddleware.Recoverer)

	routeHandler := &handlers.RouteHandler{Routes: routes, Raw: raw}

	r.Get("/health", handlers.Health)
	r.Get("/profiles", handlers.Profiles)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	r.Route("/zones/{zone}", func(r chi.Router) {
		r.Get("/deliveries", routeHandler.Deliveries)

		r.Post("/route", routeHandler.Generate)
		r.Get("/route", routeHandler.Saved)
		r.Get("/route/map", routeHandler.Map)
		r.Get("/route/export.json", routeHandler.ExportJSON)
		r.Get("/route/stats.csv", routeHandler.StatsCSV)
		r.Get("/route/order.csv", routeHandler.OrderCSV)
	})

	return r
}
