package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// Query defaults for the yearly forecast.
const (
	DefaultForecastYear = 2026
	maxBodyBytes        = 1 << 20
)

// PredictionService is the prediction surface served over HTTP.
type PredictionService interface {
	PredictCityMonth(ctx context.Context, city string, month int) (domain.Prediction, error)
	PredictLive(ctx context.Context, city string) (domain.Prediction, error)
	YearlyForecast(ctx context.Context, city string, year int) ([]domain.ForecastPoint, error)
	Cities() []string
	CheckReadiness(ctx context.Context) error
}

// Server exposes the prediction API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        PredictionService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz,
// and /metrics. Readiness follows svc.CheckReadiness, so /readyz reports 503
// while no model is loaded.
func NewServer(addr string, svc PredictionService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /api/live-weather", s.handleLiveWeather)
	mux.HandleFunc("POST /api/predict-city", s.handlePredictCity)
	mux.HandleFunc("GET /api/yearly-forecast", s.handleYearlyForecast)
	mux.HandleFunc("GET /api/cities", s.handleCities)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleLiveWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	p, err := s.svc.PredictLive(r.Context(), city)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type cityMonthRequest struct {
	City  string `json:"city"`
	Month int    `json:"month"`
}

func (s *Server) handlePredictCity(w http.ResponseWriter, r *http.Request) {
	var req cityMonthRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	p, err := s.svc.PredictCityMonth(r.Context(), req.City, req.Month)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleYearlyForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year := DefaultForecastYear
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		year = n
	}
	city := q.Get("city")
	if city == "" {
		city = domain.DefaultCity
	}

	points, err := s.svc.YearlyForecast(r.Context(), city, year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forecast": points})
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cities": s.svc.Cities()})
}

// fail maps service errors to HTTP responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrModelUnavailable):
		writeError(w, http.StatusInternalServerError, domain.ErrModelUnavailable.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// withCORS allows the browser dashboard to call the API from any origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
