/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer connecting URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/logEntries", func(r chi.Router) {
			r.Post("/", h.AddLogEntry)
			r.Put("/{id}", h.UpdateLogEntry)
			r.Delete("/{id}", h.DeleteLogEntry)
			r.Get("/{date}", h.GetLogEntriesForDate)
		})

		r.Post("/search", h.FindLogEntries)

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/{year}", h.GetStatisticsForYear)
			r.Post("/{year}", h.RecalculateStatisticsForYear)
		})

		r.Route("/absences", func(r chi.Router) {
			r.Get("/{from}/{to}", h.GetAbsencesForDateRange)
			r.Put("/", h.UpdateAbsence)
		})
	})

	return r
}
