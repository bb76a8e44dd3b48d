// Package httpapi exposes the weather pipeline over HTTP: forecast and
// current-conditions lookups, the notification opt-in/confirm flow, and the
// usual health, readiness and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-notify/internal/domain"
	"github.com/couchcryptid/weather-notify/internal/orchestrator"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SessionAPI is the slice of the orchestrator the handlers need.
type SessionAPI interface {
	ReadinessChecker
	FetchForecast(ctx context.Context, location string) (domain.Forecast, error)
	FetchCurrent(ctx context.Context, city string) (*domain.Report, error)
	SetNotifyOptIn(enabled bool) error
	Progress() int
	ConfirmSend(ctx context.Context, email string) (domain.DispatchOutcome, error)
}

// Server exposes the weather API plus health, readiness and metrics routes.
type Server struct {
	httpServer *http.Server
	session    SessionAPI
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, session SessionAPI, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		session: session,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(session))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/current", s.handleCurrent)
	mux.HandleFunc("POST /api/notify/optin", s.handleOptIn)
	mux.HandleFunc("GET /api/notify/progress", s.handleProgress)
	mux.HandleFunc("POST /api/notify/send", s.handleSend)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location is required"})
		return
	}

	forecast, err := s.session.FetchForecast(r.Context(), location)
	switch {
	case errors.Is(err, orchestrator.ErrUnknownLocation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown location"})
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrTransport):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "cannot reach service, try again"})
	case errors.Is(err, domain.ErrDataShape):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "data unavailable"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		writeJSON(w, http.StatusOK, forecast)
	}
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city is required"})
		return
	}

	report, err := s.session.FetchCurrent(r.Context(), city)
	switch {
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrTransport):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "cannot reach service, try again"})
	case errors.Is(err, domain.ErrDataShape), errors.Is(err, domain.ErrIncompleteData):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "data unavailable"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	case report == nil:
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "no data available"})
	default:
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) handleOptIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.session.SetNotifyOptIn(body.Enabled); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no report to notify about"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": body.Enabled})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"percent": s.session.Progress()})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	outcome, err := s.session.ConfirmSend(r.Context(), body.Email)
	switch {
	case errors.Is(err, domain.ErrInvalidRecipient):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipient address"})
	case errors.Is(err, orchestrator.ErrNoPendingDispatch):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no notification pending"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		writeJSON(w, http.StatusOK, outcome)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
