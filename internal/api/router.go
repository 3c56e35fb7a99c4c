package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/thermolab/internal/panel"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.sessionMiddleware)

	// Prometheus exposition
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.instrumentMiddleware)

		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Session gate
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		// Security toggle panel
		r.Get("/security", s.handleGetSecurity)
		r.Post("/update_security", s.handleUpdateSecurity)

		// Device registry (mutations are admin only, checked in the registry)
		r.Get("/list_thermostats", s.handleListThermostats)
		r.Post("/add_thermostat", s.handleAddThermostat)
		r.Post("/remove_thermostat", s.handleRemoveThermostat)
		r.Post("/set_temperature", s.handleSetTemperature)

		// Attack simulators
		r.Get("/simulate_dos", s.handleSimulateDoS)
		r.Get("/simulate_unauthorized", s.handleSimulateUnauthorized)

		r.Get("/audit", s.handleListAudit)

		r.Get("/ws", s.handleWebSocket)
	})

	// Lab console
	r.Handle("/*", panel.Handler(s.cfg.PanelDir))

	return r
}
