// Package types contains the read shapes returned by the dashboard API.
package types

// AllSites is the selector value meaning no site filter is applied.
const AllSites = "ALL"

// AllSitesLabel is the dropdown label for AllSites.
const AllSitesLabel = "All Sites"

// SiteOption is one dropdown entry.
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Range is a closed payload interval in kilograms.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max]. An inverted range contains nothing.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Empty reports whether the range excludes every value.
func (r Range) Empty() bool { return r.Min > r.Max }

// SiteSuccess is one row of the all-sites success aggregate.
type SiteSuccess struct {
	Site      string `json:"site"`
	Successes int    `json:"successes"`
}

// OutcomeCount is one row of the single-site outcome aggregate.
type OutcomeCount struct {
	Outcome int    `json:"outcome"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// Slice is one pie wedge.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PieChart is the aggregate behind the success pie chart. Exactly one of
// BySite (all sites) or ByOutcome (single site) is populated.
type PieChart struct {
	Site      string         `json:"site"`
	Title     string         `json:"title"`
	BySite    []SiteSuccess  `json:"by_site,omitempty"`
	ByOutcome []OutcomeCount `json:"by_outcome,omitempty"`
	Slices    []Slice        `json:"slices"`
}

// ScatterPoint is one plotted launch.
type ScatterPoint struct {
	PayloadMassKG   float64 `json:"payload_mass_kg"`
	Outcome         int     `json:"outcome"`
	BoosterCategory string  `json:"booster_category"`
	Site            string  `json:"site"`
}

// ScatterChart is the filtered record set behind the payload scatter chart.
type ScatterChart struct {
	Site   string         `json:"site"`
	Title  string         `json:"title"`
	Range  Range          `json:"range"`
	Points []ScatterPoint `json:"points"`
}

// DatasetSummary describes the loaded dataset.
type DatasetSummary struct {
	Records           int      `json:"records"`
	Successes         int      `json:"successes"`
	Sites             []string `json:"sites"`
	BoosterCategories []string `json:"booster_categories"`
	PayloadMin        float64  `json:"payload_min"`
	PayloadMax        float64  `json:"payload_max"`
}

// SliderBounds configures the payload range slider.
type SliderBounds struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Initial Range   `json:"initial"`
}
