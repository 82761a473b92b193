// Package chart renders dashboard aggregates to SVG with go-chart.
package chart

import (
	"fmt"
	"html"
	"io"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/launchdash/internal/domain/types"
)

// Chart names used in cache keys, metrics and logs.
const (
	NamePie     = "success_pie"
	NameScatter = "payload_scatter"
)

const (
	defaultWidth  = 720
	defaultHeight = 420

	outcomeAxisMin = -0.25
	outcomeAxisMax = 1.25

	uncategorized = "unknown"
)

// palette colors booster categories in first-appearance order, cycling when
// there are more categories than colors.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

// Renderer draws pie and scatter charts as SVG.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with configuration options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the configured canvas size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// RenderPie writes the success pie. Zero slices are skipped; when nothing is
// left a "No data" placeholder is written instead.
func (r *Renderer) RenderPie(w io.Writer, pie types.PieChart) error {
	values := make([]gochart.Value, 0, len(pie.Slices))
	for i, s := range pie.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: s.Label + " (" + strconv.FormatFloat(s.Value, 'f', -1, 64) + ")",
			Value: s.Value,
			Style: gochart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return r.placeholder(w, pie.Title)
	}

	pc := gochart.PieChart{
		Title:  pie.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	if err := pc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRender, NamePie, err)
	}
	return nil
}

// RenderScatter writes the payload scatter: payload on X, outcome on Y, one
// dot series per booster category. categories fixes the color order so a
// category keeps its color across filters; categories that are not listed
// are appended in point order.
func (r *Renderer) RenderScatter(w io.Writer, sc types.ScatterChart, categories []string) error {
	if len(sc.Points) == 0 {
		return r.placeholder(w, sc.Title)
	}

	order := make([]string, 0, len(categories))
	colorOf := make(map[string]drawing.Color, len(categories))
	addCategory := func(c string) {
		if _, ok := colorOf[c]; ok {
			return
		}
		colorOf[c] = palette[len(order)%len(palette)]
		order = append(order, c)
	}
	for _, c := range categories {
		addCategory(c)
	}

	xs := make(map[string][]float64)
	ys := make(map[string][]float64)
	lo, hi := sc.Points[0].PayloadMassKG, sc.Points[0].PayloadMassKG
	for _, p := range sc.Points {
		addCategory(p.BoosterCategory)
		xs[p.BoosterCategory] = append(xs[p.BoosterCategory], p.PayloadMassKG)
		ys[p.BoosterCategory] = append(ys[p.BoosterCategory], float64(p.Outcome))
		lo = min(lo, p.PayloadMassKG)
		hi = max(hi, p.PayloadMassKG)
	}

	series := make([]gochart.Series, 0, len(xs))
	for _, c := range order {
		if len(xs[c]) == 0 {
			continue
		}
		name := c
		if name == "" {
			name = uncategorized
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    name,
			XValues: xs[c],
			YValues: ys[c],
			Style:   dotStyle(colorOf[c]),
		})
	}

	ch := gochart.Chart{
		Title:      sc.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  "Payload Mass (kg)",
			Range: payloadAxis(lo, hi),
		},
		YAxis: gochart.YAxis{
			Name:  "class",
			Range: &gochart.ContinuousRange{Min: outcomeAxisMin, Max: outcomeAxisMax},
			Ticks: []gochart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRender, NameScatter, err)
	}
	return nil
}

// dotStyle renders points only, without a connecting line.
func dotStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		StrokeColor: col,
		DotWidth:    4,
		DotColor:    col,
	}
}

// payloadAxis pads the X range so edge points are not clipped and a single
// payload value still has a non-zero span.
func payloadAxis(lo, hi float64) *gochart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(1, hi*0.05)
	}
	return &gochart.ContinuousRange{Min: max(0, lo-pad), Max: hi + pad}
}

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">` +
	`<rect width="100%%" height="100%%" fill="#ffffff"/>` +
	`<text x="50%%" y="32" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>` +
	`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#7f7f7f">No data</text>` +
	`</svg>`

// placeholder is written when a chart has nothing to draw; go-chart rejects
// empty and all-zero inputs.
func (r *Renderer) placeholder(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, placeholderSVG, r.width, r.height, r.width, r.height, html.EscapeString(title))
	if err != nil {
		return fmt.Errorf("%w: placeholder: %v", ErrRender, err)
	}
	return nil
}
