// Package api provides the HTTP server for jobtrail.
// Progression routes live under /api/v1; /health and /metrics sit at the root.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/app/progression"
	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/health"
)

// Version is reported by /api/version and the CLI.
const Version = "0.1.0"

// Server is the jobtrail HTTP API server.
type Server struct {
	svc            *progression.Service
	health         *health.Checker
	log            *zap.Logger
	corsOrigins    []string
	metricsEnabled bool
}

// NewServer creates a new API server over the progression service.
func NewServer(svc *progression.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log, corsOrigins: []string{"*"}}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth sets the checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins restricts the allowed CORS origins. Empty keeps "*".
func (s *Server) SetCORSOrigins(origins []string) {
	if len(origins) > 0 {
		s.corsOrigins = origins
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match-score", s.handleMatchScore)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/goals", s.handleGoals)
			r.Put("/mode", s.handleSetMode)

			r.Get("/quests", s.handleQuests)
			r.Delete("/quests/expired", s.handleCleanupQuests)
			r.Post("/quests/{questID}/progress", s.handleQuestProgress)
			r.Get("/achievements", s.handleAchievements)

			r.Post("/applications", s.handleAddApplication)
			r.Patch("/applications/{appID}", s.handleUpdateApplication)
			r.Post("/events", s.handleAddEvent)
			r.Post("/contacts", s.handleAddContact)
			r.Get("/skills", s.handleSkills)
			r.Post("/skills", s.handleAddSkill)
			r.Post("/skills/{skillID}/hours", s.handleSkillHours)
			r.Post("/activity", s.handleActivity)

			r.Get("/progress/weekly", s.handleWeekly)
			r.Get("/progress/monthly", s.handleMonthly)
			r.Get("/smart-steps", s.handleSmartSteps)

			r.Get("/notifications", s.handleNotifications)
			r.Post("/notifications/{id}/shown", s.handleNotificationShown)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	statuses := s.health.RunOnce(r.Context())
	status, code := "ok", http.StatusOK
	for _, st := range statuses {
		if !st.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": statuses,
	})
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
			"type":    errorType(status),
		},
	})
}

// writeDomainError maps service errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedTimestamp):
		writeError(w, http.StatusInternalServerError, err.Error())
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStorage):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.log.Error("unhandled api error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func errorType(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= 500:
		return "server_error"
	default:
		return "invalid_request_error"
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origins := strings.Join(s.corsOrigins, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
