/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging (slog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CleanPath:  Collapse double slashes
  5. Heartbeat:  /healthz for load balancers, before rate limiting
  6. CORS:       Cross-origin requests for frontend
  7. RateLimit:  Per-client token bucket on /api

ROUTE GROUPS:
  /api/workers/*        Workers, punches, advances, productivity
  /api/productivity     Stateless calculation
  /api/settings         Schedule settings
  /api/holidays/*       Holiday calendar
  /api/payroll/*        Period close and snapshots
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterConfig carries the middleware settings that come from config.
type RouterConfig struct {
	Logger         *slog.Logger
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = h.Logger
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Heartbeat("/healthz"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", h.Index)

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
			r.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}

		// Worker routes
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Get("/{id}", h.GetWorker)
			r.Delete("/{id}", h.DeleteWorker)
			r.Get("/{id}/punches", h.ListPunches)
			r.Post("/{id}/punches", h.AppendPunches)
			r.Get("/{id}/advances", h.ListAdvances)
			r.Post("/{id}/advances", h.CreateAdvance)
			r.Get("/{id}/productivity", h.GetProductivity)
			r.Get("/{id}/report.csv", h.GetReportCSV)
		})

		r.Post("/productivity", h.Calculate)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Get("/snapshots", h.ListSnapshots)
			r.Post("/close", h.ClosePeriod)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// Index lists the entry points.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "attendance-engine",
		"endpoints": []string{
			"/api/workers",
			"/api/productivity",
			"/api/settings",
			"/api/holidays",
			"/api/payroll/snapshots",
			"/api/scenarios",
		},
	})
}
