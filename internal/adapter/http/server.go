package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/dwd-pollen/internal/domain"
)

// ForecastAPI is the read surface the server exposes. Implemented by
// client.AsyncClient.
type ForecastAPI interface {
	Get(ctx context.Context, regionID, partregionID int) (domain.RegionForecast, error)
	Regions(ctx context.Context) ([]domain.RegionInfo, error)
	AllergenNames(ctx context.Context) ([]string, error)
	Summary(ctx context.Context, regionID, partregionID int) (map[string]map[string]string, error)
}

// Server exposes the forecast, health, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	api        ForecastAPI
	logger     *slog.Logger
}

// NewServer creates the pollend HTTP server.
func NewServer(addr string, api ForecastAPI, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/regions", s.handleRegions)
	mux.HandleFunc("GET /api/v1/allergens", s.handleAllergens)
	mux.HandleFunc("GET /api/v1/pollen/{region}/{partregion}", s.handlePollen)
	mux.HandleFunc("GET /api/v1/pollen/{region}/{partregion}/summary", s.handleSummary)

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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	regions, err := s.api.Regions(ctx)
	if err != nil || len(regions) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.api.Regions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

type allergenInfo struct {
	Name          string `json:"name"`
	BotanicalName string `json:"botanical_name"`
	SeasonMonths  []int  `json:"season_months"`
}

func (s *Server) handleAllergens(w http.ResponseWriter, r *http.Request) {
	names, err := s.api.AllergenNames(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(names) == 0 {
		names = domain.Allergens
	}
	infos := make([]allergenInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, allergenInfo{
			Name:          name,
			BotanicalName: domain.BotanicalName(name),
			SeasonMonths:  domain.SeasonMonths(name),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"allergens": infos})
}

func (s *Server) handlePollen(w http.ResponseWriter, r *http.Request) {
	regionID, partregionID, ok := pathIDs(w, r)
	if !ok {
		return
	}
	region, err := s.api.Get(r.Context(), regionID, partregionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	regionID, partregionID, ok := pathIDs(w, r)
	if !ok {
		return
	}
	summary, err := s.api.Summary(r.Context(), regionID, partregionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func pathIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	regionID, err := strconv.Atoi(r.PathValue("region"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("region must be an integer"))
		return 0, 0, false
	}
	partregionID, err := strconv.Atoi(r.PathValue("partregion"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("partregion must be an integer"))
		return 0, 0, false
	}
	return regionID, partregionID, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRegionNotFound), errors.Is(err, domain.ErrAllergenNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, domain.ErrFetchFailed):
		s.logger.Error("upstream fetch failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody("upstream pollen report unavailable"))
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"status": "error", "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
