package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dconn.dev/projectgrid/internal/config"
	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/middleware"
	"dconn.dev/projectgrid/internal/services"
	"dconn.dev/projectgrid/internal/session"
	"dconn.dev/projectgrid/internal/web"
)

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, projectService *services.ProjectService, logger *logging.Logger) (http.Handler, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := chi.NewRouter()

	// Middleware. Recovery runs inside Logger so a panic still gets its
	// access log line with the 500.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger.Named("http")))
	r.Use(middleware.Recovery(logger))

	projectHandler := NewProjectHandler(projectService, tmpl, cfg)
	sessions := session.NewStore(cfg.Status.TTL, cfg.Session.IdleTimeout)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessions))

		r.Get("/", projectHandler.Index)
		r.Get("/filter/{type}", projectHandler.Filter)
		r.Get("/projects/{id}", projectHandler.Detail)
		r.Post("/projects", projectHandler.Upload)
		r.Get("/projects/{id}/download", projectHandler.Download)
		r.Post("/projects/{id}/delete", projectHandler.Delete)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/cards", projectHandler.Cards)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Static files
	fileServer := http.FileServerFS(web.Static())
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromContext(r.Context()).Warn(r.Context(), "error encoding JSON", zap.Error(err))
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]string{"error": message})
}
