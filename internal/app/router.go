package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prism-console/internal/api"
	"prism-console/internal/middleware"
	"prism-console/internal/ui"
)

// NewRouter builds the HTTP surface: the JSON API under /v1, the console
// under /ui, plus /healthz and /metrics. ctx bounds the rate limiter's
// background sweep.
func (a *App) NewRouter(ctx context.Context) http.Handler {
	cfg := a.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cfg.Auth.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		IdleTimeout:       10 * time.Minute,
	}))

	// Public endpoints
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusFound)
	})

	apiHandler := api.NewHandler(
		a.warehouse,
		a.Services.Admin,
		a.Services.Metadata,
		a.Services.Audit,
		a.Services.Cost,
		a.Environments,
		a.logger,
	)
	apiHandler.SetAPIKeys(a.Services.APIKey)
	r.Route("/v1", func(r chi.Router) {
		r.Use(a.Auth.Middleware())
		apiHandler.Routes(r)
	})

	uiHandler := ui.NewHandler(
		a.warehouse,
		a.Services.Metadata,
		a.Services.Audit,
		cfg.Auth,
		cfg.IsProduction(),
		a.logger,
	)
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler, a.Auth.MiddlewareWithFallback(ui.RedirectToLogin))
	})

	return r
}
