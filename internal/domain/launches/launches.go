// Package launches holds the pure filter and aggregate functions behind the
// dashboard charts. Nothing here mutates the dataset or returns errors: an
// unknown site or an empty payload interval simply yields an empty result.
package launches

import (
	"github.com/okian/launchdash/internal/domain/model"
	"github.com/okian/launchdash/internal/domain/types"
)

// SuccessPie aggregates launch outcomes for the pie chart.
//
// For types.AllSites it counts successes per site, keeping sites with no
// successes at zero. For a specific site it counts occurrences of each
// outcome at that site, in ascending outcome order, listing only outcomes
// that occur.
func SuccessPie(ds *model.Dataset, site string) types.PieChart {
	if site == types.AllSites {
		return successBySite(ds)
	}
	return outcomesForSite(ds, site)
}

func successBySite(ds *model.Dataset) types.PieChart {
	counts := make(map[string]int, len(ds.Sites()))
	for _, l := range ds.Launches() {
		if l.Outcome == model.Success {
			counts[l.Site]++
		}
	}

	pie := types.PieChart{
		Site:   types.AllSites,
		Title:  "Success Count for all launch sites",
		BySite: make([]types.SiteSuccess, 0, len(ds.Sites())),
		Slices: make([]types.Slice, 0, len(ds.Sites())),
	}
	for _, s := range ds.Sites() {
		pie.BySite = append(pie.BySite, types.SiteSuccess{Site: s, Successes: counts[s]})
		pie.Slices = append(pie.Slices, types.Slice{Label: s, Value: float64(counts[s])})
	}
	return pie
}

func outcomesForSite(ds *model.Dataset, site string) types.PieChart {
	var counts [2]int
	for _, l := range ds.Launches() {
		if l.Site == site && (l.Outcome == model.Failure || l.Outcome == model.Success) {
			counts[l.Outcome]++
		}
	}

	pie := types.PieChart{
		Site:      site,
		Title:     "Total Success Launches for site " + site,
		ByOutcome: []types.OutcomeCount{},
		Slices:    []types.Slice{},
	}
	for _, o := range []model.Outcome{model.Failure, model.Success} {
		if counts[o] == 0 {
			continue
		}
		pie.ByOutcome = append(pie.ByOutcome, types.OutcomeCount{Outcome: int(o), Label: o.Label(), Count: counts[o]})
		pie.Slices = append(pie.Slices, types.Slice{Label: o.Label(), Value: float64(counts[o])})
	}
	return pie
}

// PayloadScatter keeps the launches whose payload lies in rng (inclusive)
// and, unless site is types.AllSites, that launched from site. Points keep
// dataset order.
func PayloadScatter(ds *model.Dataset, site string, rng types.Range) types.ScatterChart {
	sc := types.ScatterChart{
		Site:   site,
		Title:  "Launch Success Rate For " + site,
		Range:  rng,
		Points: []types.ScatterPoint{},
	}
	if site == types.AllSites {
		sc.Title = "Launch Success Rate For All Sites"
	}
	if rng.Empty() {
		return sc
	}

	for _, l := range ds.Launches() {
		if !rng.Contains(l.PayloadMassKG) {
			continue
		}
		if site != types.AllSites && l.Site != site {
			continue
		}
		sc.Points = append(sc.Points, types.ScatterPoint{
			PayloadMassKG:   l.PayloadMassKG,
			Outcome:         int(l.Outcome),
			BoosterCategory: l.BoosterCategory,
			Site:            l.Site,
		})
	}
	return sc
}

// Bounds returns the payload interval spanned by the dataset.
func Bounds(ds *model.Dataset) types.Range {
	lo, hi := ds.PayloadBounds()
	return types.Range{Min: lo, Max: hi}
}

// KnownSite reports whether site is AllSites or appears in the dataset.
func KnownSite(ds *model.Dataset, site string) bool {
	if site == types.AllSites {
		return true
	}
	for _, s := range ds.Sites() {
		if s == site {
			return true
		}
	}
	return false
}

// Summarize describes the dataset.
func Summarize(ds *model.Dataset) types.DatasetSummary {
	lo, hi := ds.PayloadBounds()
	sum := types.DatasetSummary{
		Records:           ds.Len(),
		Sites:             append([]string{}, ds.Sites()...),
		BoosterCategories: append([]string{}, ds.BoosterCategories()...),
		PayloadMin:        lo,
		PayloadMax:        hi,
	}
	for _, l := range ds.Launches() {
		if l.Outcome == model.Success {
			sum.Successes++
		}
	}
	return sum
}

// SiteOptions returns the dropdown entries: All Sites first, then every site
// in dataset order.
func SiteOptions(ds *model.Dataset) []types.SiteOption {
	opts := make([]types.SiteOption, 0, len(ds.Sites())+1)
	opts = append(opts, types.SiteOption{Label: types.AllSitesLabel, Value: types.AllSites})
	for _, s := range ds.Sites() {
		opts = append(opts, types.SiteOption{Label: s, Value: s})
	}
	return opts
}
