package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	geojsonadapter "github.com/couchcryptid/crime-hotspot-service/internal/adapter/geojson"
	"github.com/couchcryptid/crime-hotspot-service/internal/analysis"
	"github.com/couchcryptid/crime-hotspot-service/internal/dataset"
	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

const geoJSONContentType = "application/geo+json"

// maxBodyBytes caps prediction request bodies.
const maxBodyBytes = 1 << 16

// Analyzer runs the analyses exposed over HTTP.
type Analyzer interface {
	CheckReadiness(ctx context.Context) error
	Hotspots(ctx context.Context, req analysis.HotspotRequest) (analysis.HotspotReport, error)
	Clusters(ctx context.Context, params domain.ClusterParams) (analysis.ClusterReport, error)
	DistrictTrend(ctx context.Context, state, district string) (analysis.TrendReport, error)
	Severity(ctx context.Context, state, district string, year int) (analysis.SeverityReport, error)
	PredictCity(ctx context.Context, req analysis.PredictionRequest) (analysis.PredictionReport, error)
	Locate(ctx context.Context, state, district string) (domain.ResolvedLocation, error)
	Cities() []domain.City
	Categories() []domain.CrimeCategory
	Districts() []dataset.District
}

// Server exposes the analysis API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	logger     *slog.Logger
}

// NewServer creates an HTTP server. An empty allowedOrigins list allows
// every origin.
func NewServer(addr string, analyzer Analyzer, allowedOrigins []string, logger *slog.Logger) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		logger:   logger,
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(analyzer))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/hotspots", s.handleHotspots)
		r.Get("/clusters", s.handleClusters)
		r.Get("/districts", s.handleDistricts)
		r.Get("/districts/{state}/{district}/trend", s.handleTrend)
		r.Get("/districts/{state}/{district}/severity", s.handleSeverity)
		r.Get("/locations/{state}/{district}", s.handleLocation)
		r.Get("/cities", s.handleCities)
		r.Get("/crime-categories", s.handleCategories)
		r.Post("/predictions", s.handlePrediction)
	})

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker Analyzer) http.HandlerFunc {
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

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var req analysis.HotspotRequest
	var err error
	if req.Point.Lat, err = requiredFloat(q.Get("lat"), "lat"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Point.Lon, err = requiredFloat(q.Get("lon"), "lon"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if raw := q.Get("radius_km"); raw != "" {
		radius, err := optionalFloat(raw, "radius_km")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.RadiusKm = &radius
	}
	if req.Tiers, err = parseTiers(q.Get("tiers")); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.analyzer.Hotspots(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wantsGeoJSON(r) {
		writeGeoJSON(w, geojsonadapter.Hotspots(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var params domain.ClusterParams
	var err error
	if params.EpsilonKm, err = optionalFloat(q.Get("epsilon_km"), "epsilon_km"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if params.MinPoints, err = optionalInt(q.Get("min_points"), "min_points"); err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.analyzer.Clusters(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wantsGeoJSON(r) {
		writeGeoJSON(w, geojsonadapter.Clusters(report))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyzer.DistrictTrend(r.Context(), chi.URLParam(r, "state"), chi.URLParam(r, "district"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSeverity(w http.ResponseWriter, r *http.Request) {
	year, err := optionalInt(r.URL.Query().Get("year"), "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.analyzer.Severity(r.Context(), chi.URLParam(r, "state"), chi.URLParam(r, "district"), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.analyzer.Locate(r.Context(), chi.URLParam(r, "state"), chi.URLParam(r, "district"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Districts())
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Cities())
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Categories())
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	var req analysis.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, badRequest(fmt.Errorf("decode prediction request: %w", err)))
		return
	}

	report, err := s.analyzer.PredictCity(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// requestError marks a malformed request parameter.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func requiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, badRequest(fmt.Errorf("%s is required", name))
	}
	return optionalFloat(raw, name)
}

func optionalFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%s: %q is not a number", name, raw))
	}
	return v, nil
}

func optionalInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Errorf("%s: %q is not an integer", name, raw))
	}
	return v, nil
}

// parseTiers reads a comma-separated severity list. Empty means the
// default tiers.
func parseTiers(raw string) ([]domain.Severity, error) {
	if raw == "" {
		return nil, nil
	}
	var tiers []domain.Severity
	for _, part := range strings.Split(raw, ",") {
		sev, err := domain.ParseSeverity(part)
		if err != nil {
			return nil, badRequest(fmt.Errorf("tiers: %w", err))
		}
		tiers = append(tiers, sev)
	}
	return tiers, nil
}

func wantsGeoJSON(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "geojson")
}

// statusFor maps an analysis error onto an HTTP status.
func statusFor(err error) int {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return http.StatusBadRequest
	}
	switch analysis.Outcome(err) {
	case "invalid":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "disabled":
		return http.StatusServiceUnavailable
	case "model_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", geoJSONContentType)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
