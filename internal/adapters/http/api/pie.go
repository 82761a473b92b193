// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/launchdash/internal/domain/types"
)

// PieDependencies defines the success pie operations.
type PieDependencies interface {
	SuccessPie(ctx context.Context, site string) (types.PieChart, error)
	SuccessPieSVG(ctx context.Context, site string) ([]byte, error)
}

// PieHandler serves the success pie aggregate and chart.
type PieHandler struct {
	deps PieDependencies
}

// NewPieHandler creates a new pie handler.
func NewPieHandler(deps PieDependencies) *PieHandler {
	return &PieHandler{deps: deps}
}

// HandleGetPie handles GET /api/success-pie?site=S requests.
func (h *PieHandler) HandleGetPie(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pie"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pie, err := h.deps.SuccessPie(r.Context(), siteParam(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, pie)
}

// HandleGetPieSVG handles GET /charts/success-pie.svg?site=S requests.
func (h *PieHandler) HandleGetPieSVG(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pie_svg"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := h.deps.SuccessPieSVG(r.Context(), siteParam(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind(op, ErrRender, err))
		return
	}
	writeSVG(w, b)
}
