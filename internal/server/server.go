// Package server exposes the analytics service over HTTP: batch event
// ingest plus the dashboard query endpoints. The dashboard app is the only
// intended client.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/analytics"
	"github.com/upliftapps/pulse/internal/auth"
	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/schema"
	"github.com/upliftapps/pulse/internal/settings"
	"github.com/upliftapps/pulse/internal/store"
)

// Server wires the HTTP surface. validator may be nil, which disables
// API-key auth (local development).
type Server struct {
	svc       *analytics.Service
	prefs     *settings.Store
	validator *auth.Validator
}

// New creates the server.
func New(svc *analytics.Service, prefs *settings.Store, validator *auth.Validator) *Server {
	return &Server{svc: svc, prefs: prefs, validator: validator}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if s.validator != nil {
			r.Use(s.apiKeyMiddleware)
		}
		r.Post("/v1/events", s.handleIngest)
		r.Get("/v1/metrics", s.handleMetrics)
		r.Get("/v1/charts", s.handleCharts)
		r.Get("/v1/insights", s.handleInsights)
		r.Get("/v1/alerts", s.handleAlerts)
		r.Post("/v1/alerts/{id}/dismiss", s.handleDismissAlert)
		r.Post("/v1/insights/{id}/implement", s.handleImplementInsight)
		r.Get("/v1/settings/mode", s.handleGetMode)
		r.Put("/v1/settings/mode", s.handleSetMode)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := s.validator.ValidateKey(r.Context(), r.Header.Get("X-API-Key"))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid API key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseFilter builds the query filter from URL parameters: either a preset
// or an explicit start/end pair, plus an optional mode (default both).
func parseFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()

	m := mode.Mode(q.Get("mode"))
	if m == "" {
		m = mode.Both
	}

	if preset := q.Get("preset"); preset != "" {
		return analytics.FromPreset(analytics.Preset(preset), m)
	}

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		return analytics.Filter{}, analytics.ErrInvalidFilter
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		return analytics.Filter{}, analytics.ErrInvalidFilter
	}
	return analytics.NewFilter(start, end, m), nil
}

// queryError maps aggregation failures onto HTTP semantics: invalid filters
// are the caller's fault; a store timeout degrades to an empty payload so
// the dashboard renders zeros instead of an error screen.
func (s *Server) queryError(w http.ResponseWriter, r *http.Request, err error, empty interface{}) {
	switch {
	case errors.Is(err, analytics.ErrInvalidFilter):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrQueryTimeout):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Query timed out")
		w.Header().Set("X-Pulse-Degraded", "timeout")
		writeJSON(w, http.StatusOK, empty)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// displayMode reads the persisted display personality for copy resolution.
// Failures fall back to encouragement copy.
func (s *Server) displayMode() mode.Mode {
	if s.prefs == nil {
		return mode.Encouragement
	}
	m, err := s.prefs.DisplayMode()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read display mode")
		return mode.Encouragement
	}
	return m
}

// ─── Ingest ─────────────────────────────────────────────────────────────────

type ingestEvent struct {
	Kind       schema.Kind  `json:"kind"`
	Value      float64      `json:"value"`
	Properties schema.Props `json:"properties"`
}

type ingestRequest struct {
	Events []ingestEvent `json:"events"`
}

type ingestResponse struct {
	Success       bool     `json:"success"`
	AcceptedCount int      `json:"accepted_count"`
	RejectedCount int      `json:"rejected_count"`
	Errors        []string `json:"errors,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	defer r.Body.Close()

	accepted := 0
	rejected := 0
	var errs []string

	for _, in := range req.Events {
		e, err := schema.Validate(in.Kind, in.Value, in.Properties)
		if err != nil {
			rejected++
			errs = append(errs, err.Error())
			continue
		}
		if err := s.svc.Record(r.Context(), e); err != nil {
			rejected++
			errs = append(errs, err.Error())
			continue
		}
		accepted++
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:       rejected == 0,
		AcceptedCount: accepted,
		RejectedCount: rejected,
		Errors:        errs,
	})
}

// ─── Queries ────────────────────────────────────────────────────────────────

type metricsResponse struct {
	Cards []analytics.MetricCard `json:"cards"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.queryError(w, r, err, metricsResponse{Cards: []analytics.MetricCard{}})
		return
	}
	cards, err := s.svc.ComputeMetricCards(r.Context(), f)
	if err != nil {
		s.queryError(w, r, err, metricsResponse{Cards: []analytics.MetricCard{}})
		return
	}

	// Resolve titles for the persisted display personality; the per-mode
	// fields stay in the payload for clients doing their own resolution.
	display := s.displayMode()
	for i := range cards {
		cards[i].Title = mode.ResolveFor(cards[i].TitleCopy(), f.Mode, display)
	}

	writeJSON(w, http.StatusOK, metricsResponse{Cards: cards})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	empty := map[string][]analytics.ChartData{"charts": {}}
	f, err := parseFilter(r)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	charts, err := s.svc.ComputeChartData(r.Context(), f)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"charts": charts})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	empty := map[string]interface{}{"insights": []interface{}{}}
	f, err := parseFilter(r)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	found, err := s.svc.ComputeInsights(r.Context(), f)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"insights": found})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	empty := map[string][]analytics.Alert{"alerts": {}}
	f, err := parseFilter(r)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	alerts, err := s.svc.ComputeAlerts(r.Context(), f)
	if err != nil {
		s.queryError(w, r, err, empty)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// ─── Mutations ──────────────────────────────────────────────────────────────

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DismissAlert(id); err != nil {
		log.Error().Err(err).Str("alert", id).Msg("Failed to dismiss alert")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": true})
}

func (s *Server) handleImplementInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.MarkInsightImplemented(id); err != nil {
		log.Error().Err(err).Str("insight", id).Msg("Failed to mark insight implemented")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"implemented": true})
}

// ─── Settings ───────────────────────────────────────────────────────────────

type modeResponse struct {
	FaithMode bool `json:"faithMode"`
}

func (s *Server) handleGetMode(w http.ResponseWriter, _ *http.Request) {
	if s.prefs == nil {
		writeJSON(w, http.StatusOK, modeResponse{})
		return
	}
	on, err := s.prefs.FaithMode()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, modeResponse{FaithMode: on})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	if s.prefs == nil {
		writeJSON(w, http.StatusOK, modeResponse{})
		return
	}
	var req modeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	if err := s.prefs.SetFaithMode(req.FaithMode); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, req)
}
