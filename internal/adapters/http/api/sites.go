// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/launchdash/internal/domain/types"
)

// SiteDependencies defines the dataset metadata operations.
type SiteDependencies interface {
	Sites(ctx context.Context) ([]types.SiteOption, error)
	Summary(ctx context.Context) (types.DatasetSummary, error)
	SliderBounds(ctx context.Context) (types.SliderBounds, error)
}

// summaryResponse is the body of GET /api/summary.
type summaryResponse struct {
	types.DatasetSummary
	Slider types.SliderBounds `json:"slider"`
}

// SitesHandler serves the dropdown options and the dataset summary.
type SitesHandler struct {
	deps SiteDependencies
}

// NewSitesHandler creates a new sites handler.
func NewSitesHandler(deps SiteDependencies) *SitesHandler {
	return &SitesHandler{deps: deps}
}

// HandleGetSites handles GET /api/sites requests.
func (h *SitesHandler) HandleGetSites(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sites"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sites, err := h.deps.Sites(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// HandleGetSummary handles GET /api/summary requests.
func (h *SitesHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sum, err := h.deps.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	slider, err := h.deps.SliderBounds(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{DatasetSummary: sum, Slider: slider})
}
