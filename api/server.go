/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/projection/*     Projection engine (config, base, snapshot, readers)
  /api/transactions/*   Raw financial records
  /health               Liveness

SECURITY NOTE:
  No authentication middleware. The engine is consumed behind the
  surrounding application's boundary.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/projection", func(r chi.Router) {
			r.Get("/", h.GetSnapshot)
			r.Post("/sync", h.Sync)
			r.Post("/rebuild", h.Rebuild)

			r.Get("/config", h.GetConfig)
			r.Put("/config", h.ReplaceConfig)

			r.Get("/base", h.GetBase)
			r.Put("/base", h.ReplaceBase)

			// Category readers (served from the cached snapshot)
			r.Get("/fixed-expenses", h.GetFixedExpenses)
			r.Get("/variable-expenses", h.GetVariableExpenses)
			r.Get("/investments", h.GetInvestments)
			r.Get("/revenue", h.GetRevenue)
			r.Get("/mkt", h.GetMktComponents)
			r.Get("/budget", h.GetBudget)
			r.Get("/resultado", h.GetResultado)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
		})
	})

	return r
}
