// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/launchdash/internal/domain/types"
)

// ScatterDependencies defines the payload scatter operations.
type ScatterDependencies interface {
	Summary(ctx context.Context) (types.DatasetSummary, error)
	PayloadScatter(ctx context.Context, site string, rng types.Range) (types.ScatterChart, error)
	PayloadScatterSVG(ctx context.Context, site string, rng types.Range) ([]byte, error)
}

// ScatterHandler serves the payload scatter points and chart.
type ScatterHandler struct {
	deps ScatterDependencies
}

// NewScatterHandler creates a new scatter handler.
func NewScatterHandler(deps ScatterDependencies) *ScatterHandler {
	return &ScatterHandler{deps: deps}
}

// HandleGetScatter handles GET /api/payload-scatter?site=S&min=a&max=b requests.
func (h *ScatterHandler) HandleGetScatter(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scatter"
	site, rng, ok := h.parse(w, r, op)
	if !ok {
		return
	}
	sc, err := h.deps.PayloadScatter(r.Context(), site, rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// HandleGetScatterSVG handles GET /charts/payload-scatter.svg?site=S&min=a&max=b requests.
func (h *ScatterHandler) HandleGetScatterSVG(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scatter_svg"
	site, rng, ok := h.parse(w, r, op)
	if !ok {
		return
	}
	b, err := h.deps.PayloadScatterSVG(r.Context(), site, rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind(op, ErrRender, err))
		return
	}
	writeSVG(w, b)
}

// parse reads site and payload range, writing the error response itself
// when the request cannot be served.
func (h *ScatterHandler) parse(w http.ResponseWriter, r *http.Request, op string) (string, types.Range, bool) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return "", types.Range{}, false
	}
	q := r.URL.Query()

	def := types.Range{}
	if q.Get("min") == "" || q.Get("max") == "" {
		sum, err := h.deps.Summary(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
			return "", types.Range{}, false
		}
		def = types.Range{Min: sum.PayloadMin, Max: sum.PayloadMax}
	}

	rng, err := rangeParam(q, def)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return "", types.Range{}, false
	}
	return siteParam(q), rng, true
}
