// Package api provides the HTTP server for tomato.
// It exposes the gamification, timeline, task and timer endpoints the
// popup UI talks to.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/app/tasks"
	"github.com/tomato-clock/tomato/internal/app/timeline"
	"github.com/tomato-clock/tomato/internal/app/timer"
	"github.com/tomato-clock/tomato/internal/health"
)

// Server is the tomato HTTP API server.
type Server struct {
	gamification   *gamification.Service
	timeline       *timeline.Store
	tasks          *tasks.Store
	timer          *timer.Timer
	sessionMinutes func(t string) int
	metricsEnabled bool
	corsOrigins    []string
	events         *EventHub
	health         *health.Checker
}

// NewServer creates a new API server over the core services.
func NewServer(g *gamification.Service, tl *timeline.Store, ts *tasks.Store, tm *timer.Timer) *Server {
	return &Server{
		gamification: g,
		timeline:     tl,
		tasks:        ts,
		timer:        tm,
		events:       NewEventHub(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins restricts CORS to the given origins. Empty or "*"
// allows any origin.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetSessionMinutes installs the configured session lengths, keyed by
// session type name. Used when a timer start request omits the duration.
func (s *Server) SetSessionMinutes(fn func(t string) int) { s.sessionMinutes = fn }

// Events returns the live event hub (for broadcasting completions).
func (s *Server) Events() *EventHub { return s.events }

// SetHealth installs the daemon health checker behind /health.
func (s *Server) SetHealth(h *health.Checker) { s.health = h }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.corsOrigins))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(time.Minute))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if s.health == nil {
				writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
				return
			}
			status := "ok"
			code := http.StatusOK
			if !s.health.IsHealthy() {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			writeJSON(w, code, map[string]interface{}{
				"status": status,
				"checks": s.health.Statuses(),
			})
		})

		if s.metricsEnabled {
			r.Handle("/metrics", promhttp.Handler())
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(time.Minute))

			r.Route("/gamification", func(r chi.Router) {
				r.Get("/", s.handleGamificationData)
				r.Get("/summary", s.handleSummary)
				r.Get("/badges", s.handleBadges)
				r.Get("/badges/recent", s.handleRecentBadges)
				r.Delete("/badges/recent", s.handleClearRecentBadges)
				r.Get("/level", s.handleLevel)
				r.Get("/export", s.handleExport)
				r.Post("/import", s.handleImport)
				r.Delete("/", s.handleResetGamification)
			})

			r.Route("/timeline", func(r chi.Router) {
				r.Get("/", s.handleTimeline)
				r.Get("/analysis", s.handleTimeAnalysis)
				r.Post("/note", s.handleAttachNote)
				r.Post("/migrate", s.handleMigrate)
				r.Delete("/", s.handleResetTimeline)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Get("/{id}", s.handleGetTask)
				r.Patch("/{id}", s.handleUpdateTask)
				r.Delete("/{id}", s.handleDeleteTask)
				r.Post("/{id}/toggle", s.handleToggleTask)
			})

			r.Route("/timer", func(r chi.Router) {
				r.Get("/", s.handleTimerStatus)
				r.Post("/start", s.handleTimerStart)
				r.Post("/reset", s.handleTimerReset)
			})
		})

		// Live completion feed for the popup. No request timeout: the
		// stream must outlive a full session.
		r.Get("/events", s.events.HandleSSE)
	})

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the extension popup. With no
// configured origins (or "*") any origin is allowed; otherwise the
// request origin is echoed back only when it is on the list.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAny := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[r.Header.Get("Origin")]:
				w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
