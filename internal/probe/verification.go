package probe

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/launchdash/internal/domain/types"
)

// verifySites checks the dropdown options: the all-sites entry first, then
// every dataset site in order.
func verifySites(opts []types.SiteOption, sum Summary) error {
	if len(opts) != len(sum.Sites)+1 {
		return fmt.Errorf("got %d options for %d sites", len(opts), len(sum.Sites))
	}
	if opts[0].Value != types.AllSites {
		return fmt.Errorf("first option is %q, want %q", opts[0].Value, types.AllSites)
	}
	for i, site := range sum.Sites {
		if o := opts[i+1]; o.Value != site || o.Label != site {
			return fmt.Errorf("option %d is %+v, want site %q", i+1, o, site)
		}
	}
	return nil
}

// verifyPieAll checks that per-site success counts add up to the number of
// successful launches.
func verifyPieAll(pie types.PieChart, baseline []types.ScatterPoint, sum Summary) error {
	if pie.Site != types.AllSites {
		return fmt.Errorf("pie site is %q, want %q", pie.Site, types.AllSites)
	}
	if len(pie.BySite) != len(sum.Sites) {
		return fmt.Errorf("pie lists %d sites, dataset has %d", len(pie.BySite), len(sum.Sites))
	}

	want := make(map[string]int, len(sum.Sites))
	for _, p := range baseline {
		if p.Outcome == 1 {
			want[p.Site]++
		}
	}

	total := 0
	for _, row := range pie.BySite {
		if row.Successes != want[row.Site] {
			return fmt.Errorf("site %q has %d successes, want %d", row.Site, row.Successes, want[row.Site])
		}
		total += row.Successes
	}
	if total != sum.Successes {
		return fmt.Errorf("success counts sum to %d, dataset has %d successes", total, sum.Successes)
	}
	return nil
}

// verifyPieSite checks that outcome counts for site add up to its launches.
func verifyPieSite(pie types.PieChart, site string, baseline []types.ScatterPoint) error {
	if pie.Site != site {
		return fmt.Errorf("pie site is %q, want %q", pie.Site, site)
	}

	var want [2]int
	for _, p := range baseline {
		if p.Site == site && (p.Outcome == 0 || p.Outcome == 1) {
			want[p.Outcome]++
		}
	}

	total := 0
	for i, row := range pie.ByOutcome {
		if i > 0 && row.Outcome <= pie.ByOutcome[i-1].Outcome {
			return fmt.Errorf("outcomes not in ascending order at %d", i)
		}
		if row.Outcome != 0 && row.Outcome != 1 {
			return fmt.Errorf("unexpected outcome %d", row.Outcome)
		}
		if row.Count == 0 {
			return fmt.Errorf("outcome %d listed with zero count", row.Outcome)
		}
		if row.Count != want[row.Outcome] {
			return fmt.Errorf("outcome %d has %d launches, want %d", row.Outcome, row.Count, want[row.Outcome])
		}
		total += row.Count
	}
	if total != want[0]+want[1] {
		return fmt.Errorf("outcome counts sum to %d, site has %d launches", total, want[0]+want[1])
	}
	return nil
}

// verifyScatter checks that the returned points are exactly the baseline
// points matching the job's site and range.
func verifyScatter(sc types.ScatterChart, job Job, baseline []types.ScatterPoint) error {
	if sc.Range != job.Range {
		return fmt.Errorf("echoed range %+v, want %+v", sc.Range, job.Range)
	}

	for _, p := range sc.Points {
		if !job.Range.Contains(p.PayloadMassKG) {
			return fmt.Errorf("point with payload %g outside [%g, %g]", p.PayloadMassKG, job.Range.Min, job.Range.Max)
		}
		if job.Site != types.AllSites && p.Site != job.Site {
			return fmt.Errorf("point from site %q in %q result", p.Site, job.Site)
		}
	}

	want := 0
	for _, p := range baseline {
		if (job.Site == types.AllSites || p.Site == job.Site) && job.Range.Contains(p.PayloadMassKG) {
			want++
		}
	}
	if len(sc.Points) != want {
		return fmt.Errorf("got %d points, want %d", len(sc.Points), want)
	}
	return nil
}

// verifyEmpty checks that an inverted range selected nothing.
func verifyEmpty(sc types.ScatterChart) error {
	if len(sc.Points) != 0 {
		return fmt.Errorf("inverted range [%g, %g] returned %d points", sc.Range.Min, sc.Range.Max, len(sc.Points))
	}
	return nil
}

// verifyBadRequest checks that a malformed number is rejected with a JSON error.
func verifyBadRequest(resp *Response) error {
	if resp.Status != http.StatusBadRequest {
		return fmt.Errorf("status %d, want %d", resp.Status, http.StatusBadRequest)
	}
	if !strings.Contains(string(resp.Body), `"bad_request"`) {
		return fmt.Errorf("error body %q lacks bad_request code", strings.TrimSpace(string(resp.Body)))
	}
	return nil
}

// verifySVG checks that a chart endpoint returned an SVG document.
func verifySVG(resp *Response) error {
	if resp.Status != http.StatusOK {
		return fmt.Errorf("status %d, want %d", resp.Status, http.StatusOK)
	}
	if !strings.HasPrefix(resp.ContentType, contentTypeSVG) {
		return fmt.Errorf("content type %q, want %q", resp.ContentType, contentTypeSVG)
	}
	if !bytes.Contains(resp.Body, []byte("<svg")) {
		return fmt.Errorf("body is not an SVG document")
	}
	return nil
}
