// Package model contains domain models passed between layers.
package model

// Outcome is the binary launch result flag ("class" in the source data).
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// Label returns the human-readable outcome name.
func (o Outcome) Label() string {
	if o == Success {
		return "Success"
	}
	return "Failure"
}

// Launch is one row of the launch dataset.
type Launch struct {
	FlightNumber    int     // optional, 0 when the column is absent
	Site            string  // launch site name, e.g. "KSC LC-39A"
	PayloadMassKG   float64 // payload mass in kilograms, non-negative
	BoosterVersion  string  // optional full booster version, e.g. "F9 v1.0  B0003"
	BoosterCategory string  // booster version category, e.g. "FT"
	Outcome         Outcome // 1 success, 0 failure
}

// Dataset is the immutable, ordered set of launches loaded at startup
// together with metadata derived once at construction.
type Dataset struct {
	launches   []Launch
	sites      []string
	boosters   []string
	payloadMin float64
	payloadMax float64
}

// NewDataset copies launches and derives site/booster order and payload bounds.
func NewDataset(launches []Launch) *Dataset {
	ds := &Dataset{launches: make([]Launch, len(launches))}
	copy(ds.launches, launches)

	seenSite := make(map[string]struct{})
	seenBooster := make(map[string]struct{})
	for i, l := range ds.launches {
		if _, ok := seenSite[l.Site]; !ok {
			seenSite[l.Site] = struct{}{}
			ds.sites = append(ds.sites, l.Site)
		}
		if _, ok := seenBooster[l.BoosterCategory]; !ok {
			seenBooster[l.BoosterCategory] = struct{}{}
			ds.boosters = append(ds.boosters, l.BoosterCategory)
		}
		if i == 0 || l.PayloadMassKG < ds.payloadMin {
			ds.payloadMin = l.PayloadMassKG
		}
		if i == 0 || l.PayloadMassKG > ds.payloadMax {
			ds.payloadMax = l.PayloadMassKG
		}
	}
	return ds
}

// Len returns the number of launches.
func (d *Dataset) Len() int { return len(d.launches) }

// Launches returns the records in load order. Callers must not modify the slice.
func (d *Dataset) Launches() []Launch { return d.launches }

// Sites returns the distinct launch sites in first-appearance order.
func (d *Dataset) Sites() []string { return d.sites }

// BoosterCategories returns the distinct booster categories in first-appearance order.
func (d *Dataset) BoosterCategories() []string { return d.boosters }

// PayloadBounds returns the smallest and largest payload mass; zeros when empty.
func (d *Dataset) PayloadBounds() (float64, float64) { return d.payloadMin, d.payloadMax }
