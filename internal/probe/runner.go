// Package probe checks a running dashboard service from the outside: it
// queries the JSON API over many site and payload-range combinations and
// verifies the aggregate and filter properties against a full baseline.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/launchdash/internal/domain/types"
	"github.com/okian/launchdash/pkg/logger"
)

// runner carries the state shared by the checks of one run.
type runner struct {
	cfg    *Config
	client *Client
	log    logger.Logger

	mu    sync.Mutex
	stats *Stats
}

// Run executes every check against cfg.BaseURL. It returns the collected
// statistics together with ErrPropertyViolation when any check failed.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Ranges <= 0 {
		cfg.Ranges = DefaultRanges
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	r := &runner{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		log:    logger.Named("probe"),
		stats:  &Stats{StartTime: time.Now()},
	}

	r.log.Info(ctx, "starting launch dashboard probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("ranges", cfg.Ranges),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	err := r.run(ctx)

	r.stats.Requests = r.client.Requests()
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)

	if err != nil {
		return r.stats, err
	}
	if r.stats.ChecksFailed > 0 {
		return r.stats, fmt.Errorf("%w: %d of %d checks failed", ErrPropertyViolation,
			r.stats.ChecksFailed, r.stats.ChecksFailed+r.stats.ChecksPassed)
	}

	r.log.Info(ctx, "probe completed successfully",
		logger.Int("checks", r.stats.ChecksPassed),
		logger.Int("requests", r.stats.Requests),
		logger.Duration("duration", r.stats.Duration))
	return r.stats, nil
}

func (r *runner) run(ctx context.Context) error {
	// Step 1: Check service health
	if err := r.checkHealth(ctx); err != nil {
		return err
	}

	// Step 2: Dataset shape
	var sum Summary
	if _, err := r.client.GetJSON(ctx, "/api/summary", nil, &sum); err != nil {
		return fmt.Errorf("fetch summary: %w", err)
	}
	var opts []types.SiteOption
	resp, err := r.client.GetJSON(ctx, "/api/sites", nil, &opts)
	if err != nil {
		return fmt.Errorf("fetch sites: %w", err)
	}
	r.record(checkSites, types.AllSites, resp.RequestID, verifySites(opts, sum))

	// Step 3: Baseline of every launch
	var all types.ScatterChart
	full := types.Range{Min: sum.PayloadMin, Max: sum.PayloadMax}
	if _, err := r.client.GetJSON(ctx, "/api/payload-scatter", scatterQuery(types.AllSites, full), &all); err != nil {
		return fmt.Errorf("fetch baseline: %w", err)
	}
	if len(all.Points) != sum.Records {
		return fmt.Errorf("%w: baseline has %d points, dataset has %d records",
			ErrPropertyViolation, len(all.Points), sum.Records)
	}
	baseline := all.Points

	r.log.Info(ctx, "dataset loaded from service",
		logger.Int("records", sum.Records),
		logger.Int("sites", len(sum.Sites)),
		logger.Float64("payloadMin", sum.PayloadMin),
		logger.Float64("payloadMax", sum.PayloadMax))

	// Step 4: Pie aggregates, SVGs and error handling per site
	sites := append([]string{types.AllSites}, sum.Sites...)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for _, site := range sites {
		g.Go(func() error {
			return r.checkSite(gctx, site, sum, baseline)
		})
	}

	// Step 5: Random ranges
	jobs := GenerateJobs(sites, sum.Slider, r.cfg.Ranges)
	r.log.Info(ctx, "checking payload ranges", logger.Int("jobs", len(jobs)))
	for _, job := range jobs {
		g.Go(func() error {
			return r.checkRange(gctx, job, baseline)
		})
	}

	return g.Wait()
}

func (r *runner) checkHealth(ctx context.Context) error {
	resp, err := r.client.Get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.Status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.Status)
	}
	r.record(checkHealth, "", resp.RequestID, nil)
	return nil
}

// checkSite verifies the pie aggregate, both chart images, the inverted range
// and malformed numbers for site. Transport errors abort the run.
func (r *runner) checkSite(ctx context.Context, site string, sum Summary, baseline []types.ScatterPoint) error {
	var pie types.PieChart
	resp, err := r.client.GetJSON(ctx, "/api/success-pie", siteQuery(site), &pie)
	if err != nil {
		return err
	}
	if site == types.AllSites {
		r.record(checkPieAll, site, resp.RequestID, verifyPieAll(pie, baseline, sum))
	} else {
		r.record(checkPieSite, site, resp.RequestID, verifyPieSite(pie, site, baseline))
	}

	inverted := types.Range{Min: sum.Slider.Max + 1, Max: sum.Slider.Min}
	var sc types.ScatterChart
	resp, err = r.client.GetJSON(ctx, "/api/payload-scatter", scatterQuery(site, inverted), &sc)
	if err != nil {
		return err
	}
	r.record(checkScatterEmpty, site, resp.RequestID, verifyEmpty(sc))

	q := siteQuery(site)
	q.Set("min", "heavy")
	resp, err = r.client.Get(ctx, "/api/payload-scatter", q)
	if err != nil {
		return err
	}
	r.record(checkBadRequest, site, resp.RequestID, verifyBadRequest(resp))

	for _, path := range []struct {
		name string
		q    url.Values
	}{
		{"/charts/success-pie.svg", siteQuery(site)},
		{"/charts/payload-scatter.svg", scatterQuery(site, types.Range{Min: sum.Slider.Initial.Min, Max: sum.Slider.Initial.Max})},
	} {
		resp, err = r.client.Get(ctx, path.name, path.q)
		if err != nil {
			return err
		}
		r.record(checkSVG, site, resp.RequestID, verifySVG(resp))
	}
	return nil
}

func (r *runner) checkRange(ctx context.Context, job Job, baseline []types.ScatterPoint) error {
	var sc types.ScatterChart
	resp, err := r.client.GetJSON(ctx, "/api/payload-scatter", scatterQuery(job.Site, job.Range), &sc)
	if err != nil {
		return err
	}
	r.record(checkScatterRange, job.Site, resp.RequestID, verifyScatter(sc, job, baseline))
	return nil
}

// record counts a check result, keeping details of failures.
func (r *runner) record(check, site, requestID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		r.stats.ChecksPassed++
		if r.cfg.Verbose {
			r.log.Debug(context.Background(), "check passed",
				logger.String("check", check), logger.String("site", site), logger.String("requestID", requestID))
		}
		return
	}

	r.stats.ChecksFailed++
	r.stats.Failures = append(r.stats.Failures, Failure{
		Check:     check,
		Site:      site,
		RequestID: requestID,
		Detail:    err.Error(),
	})
	r.log.Warn(context.Background(), "check failed",
		logger.String("check", check),
		logger.String("site", site),
		logger.String("requestID", requestID),
		logger.Error(err))
}
