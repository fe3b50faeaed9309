// Package api exposes the HTTP surface of the application: the legacy
// tracking endpoints polled by the browser UI, a session-authenticated JSON
// API and a websocket progress feed.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/jobs"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/tracker"
	"github.com/spectrack/spectrack-go/internal/websocket"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	version string
	cfg     *config.Config
	store   *store.Store
	hub     *websocket.Hub
	tracker *tracker.Service
	jobs    *jobs.Manager
	router  chi.Router
}

// NewServer creates the HTTP server and mounts all routes.
func NewServer(version string, cfg *config.Config, st *store.Store, hub *websocket.Hub, trk *tracker.Service, jm *jobs.Manager) *Server {
	s := &Server{
		version: version,
		cfg:     cfg,
		store:   st,
		hub:     hub,
		tracker: trk,
		jobs:    jm,
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// Router returns the mounted router for use by http.Server and tests.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Legacy endpoints polled by the tracking UI. These predate the
	// session API and stay unauthenticated.
	r.Post("/start-tracking", s.handleStartTracking)
	r.Get("/progress", s.handleProgress)
	r.Get("/logs", s.handleLogs)
	r.Get("/results", s.handleResults)
	r.Get("/export", s.handleExport)

	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.hub, w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.version})
		})

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		// Session-protected routes.
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{runID}", s.handleGetRun)
			r.Get("/runs/{runID}/logs", s.handleGetRunLogs)
			r.Get("/runs/{runID}/results", s.handleGetRunResults)

			r.Get("/subscriptions", s.handleListSubscriptions)
			r.Post("/subscriptions", s.handleCreateSubscription)
			r.Post("/subscriptions/{subID}/recheck", s.handleRecheckSubscription)
			r.Delete("/subscriptions/{subID}", s.handleDeleteSubscription)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)
				r.Get("/jobs", s.handleGetJobsStatus)
				r.Post("/jobs/{jobID}/run", s.handleRunJob)
			})
		})
	})
}
