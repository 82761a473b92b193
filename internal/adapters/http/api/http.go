// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/launchdash/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SiteDependencies
	PieDependencies
	ScatterDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sitesHandler   *SitesHandler
	pieHandler     *PieHandler
	scatterHandler *ScatterHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sitesHandler:   NewSitesHandler(deps),
		pieHandler:     NewPieHandler(deps),
		scatterHandler: NewScatterHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/sites", MetricsMiddleware(s.sitesHandler.HandleGetSites, "sites"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(s.sitesHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("/api/success-pie", MetricsMiddleware(s.pieHandler.HandleGetPie, "success_pie"))
	mux.HandleFunc("/api/payload-scatter", MetricsMiddleware(s.scatterHandler.HandleGetScatter, "payload_scatter"))
	mux.HandleFunc("/charts/success-pie.svg", MetricsMiddleware(s.pieHandler.HandleGetPieSVG, "success_pie_svg"))
	mux.HandleFunc("/charts/payload-scatter.svg", MetricsMiddleware(s.scatterHandler.HandleGetScatterSVG, "payload_scatter_svg"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeSVG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// siteParam returns the site query value; missing or empty selects all sites.
// Matching is exact, so "all" is a site name, not the sentinel.
func siteParam(q url.Values) string {
	if site := q.Get("site"); site != "" {
		return site
	}
	return types.AllSites
}

// rangeParam parses min and max, falling back to def for missing values.
// An inverted range is returned as is; it selects nothing.
func rangeParam(q url.Values, def types.Range) (types.Range, error) {
	rng := def
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"min", &rng.Min}, {"max", &rng.Max}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return types.Range{}, fmt.Errorf("invalid %s %q: must be a finite number", p.name, raw)
		}
		*p.dst = v
	}
	return rng, nil
}
