// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/okian/launchdash/internal/adapters/cache"
	"github.com/okian/launchdash/internal/adapters/chart"
	"github.com/okian/launchdash/internal/adapters/repository"
	"github.com/okian/launchdash/internal/domain/launches"
	"github.com/okian/launchdash/internal/domain/model"
	"github.com/okian/launchdash/internal/domain/types"
	"github.com/okian/launchdash/pkg/logger"
	"github.com/okian/launchdash/pkg/metrics"
)

const defaultSliderStep = 1000

// Renderer draws the two dashboard charts.
type Renderer interface {
	RenderPie(w io.Writer, pie types.PieChart) error
	RenderScatter(w io.Writer, sc types.ScatterChart, categories []string) error
}

// Service implements the API dependencies for the launch dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    *repository.CSVStore
	ds       *model.Dataset
	renderer Renderer
	charts   cache.Cache

	// Configuration
	dataPath   string
	dataReader io.Reader
	cacheSize  int
	sliderMin  *float64
	sliderMax  *float64
	sliderStep float64

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDataPath sets the CSV file loaded by Start.
func WithDataPath(path string) Option {
	return func(s *Service) {
		s.dataPath = path
	}
}

// WithDataReader loads the dataset from r instead of a file.
func WithDataReader(r io.Reader) Option {
	return func(s *Service) {
		s.dataReader = r
	}
}

// WithRenderer replaces the default go-chart renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithCacheSize bounds the rendered chart cache. Negative disables caching
// and 0 keeps the cache default.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithSliderBounds overrides the payload slider bounds. A nil bound follows
// the dataset.
func WithSliderBounds(lo, hi *float64) Option {
	return func(s *Service) {
		s.sliderMin = lo
		s.sliderMax = hi
	}
}

// WithSliderStep sets the payload slider granularity.
func WithSliderStep(step float64) Option {
	return func(s *Service) {
		if step > 0 {
			s.sliderStep = step
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheSize:  cache.DefaultMaxSize,
		sliderStep: defaultSliderStep,
		logger:     nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset and prepares the render cache. A load failure is
// returned unchanged in kind so callers can match repository sentinels.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting launch dashboard service...",
		logger.String("dataPath", s.dataPath),
	)

	s.store = repository.NewCSVStore(
		repository.WithPath(s.dataPath),
		repository.WithReader(s.dataReader),
	)
	if err := s.store.Load(ctx); err != nil {
		metrics.RecordDatasetLoadError()
		s.logger.Error(ctx, "failed to load dataset", logger.Error(err))
		return fmt.Errorf("load dataset: %w", err)
	}
	ds, err := s.store.Dataset(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.ds = ds

	if s.renderer == nil {
		s.renderer = chart.NewRenderer()
	}
	if s.cacheSize < 0 {
		s.charts = cache.NewNoopCache()
	} else {
		s.charts = cache.NewInMemoryCache(cache.WithMaxSize(s.cacheSize))
	}

	metrics.UpdateDataset(ds.Len(), len(ds.Sites()), s.store.LoadDuration())
	metrics.UpdateRenderCacheSize(0)

	s.started = true
	s.startedAt = time.Now()
	lo, hi := ds.PayloadBounds()
	s.logger.Info(ctx, "launch dashboard service started",
		logger.Int("records", ds.Len()),
		logger.Int("sites", len(ds.Sites())),
		logger.Int("boosterCategories", len(ds.BoosterCategories())),
		logger.Float64("payloadMin", lo),
		logger.Float64("payloadMax", hi),
		logger.Duration("loadDuration", s.store.LoadDuration()),
	)

	return nil
}

// Stop releases the dataset. The service can be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping launch dashboard service...")

	s.ds = nil
	s.store = nil
	s.charts = nil
	s.started = false
	s.logger.Info(context.Background(), "launch dashboard service stopped")
}

// snapshot returns the components used by one request.
func (s *Service) snapshot() (*model.Dataset, cache.Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.ds, s.charts, nil
}

// Sites returns the dropdown options.
func (s *Service) Sites(_ context.Context) ([]types.SiteOption, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return launches.SiteOptions(ds), nil
}

// Summary describes the loaded dataset.
func (s *Service) Summary(_ context.Context) (types.DatasetSummary, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return types.DatasetSummary{}, err
	}
	return launches.Summarize(ds), nil
}

// SliderBounds returns the payload slider configuration. Configured bounds
// win over the data bounds and Max is rounded up to a whole number of steps
// above Min. The initial selection is the data range clamped into the slider
// and widened outward to step boundaries.
func (s *Service) SliderBounds(_ context.Context) (types.SliderBounds, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return types.SliderBounds{}, err
	}

	data := launches.Bounds(ds)
	b := types.SliderBounds{Min: data.Min, Max: data.Max, Step: s.sliderStep}
	if s.sliderMin != nil {
		b.Min = *s.sliderMin
	}
	if s.sliderMax != nil {
		b.Max = *s.sliderMax
	}
	if b.Max < b.Min {
		b.Max = b.Min
	}
	// A range input only holds values on the Min + k*Step grid, so Max is
	// raised to the next grid point to keep the data maximum reachable.
	b.Max = b.Min + steps(b.Max-b.Min, b.Step, math.Ceil)*b.Step
	b.Initial = types.Range{
		Min: b.Min + steps(clamp(data.Min, b.Min, b.Max)-b.Min, b.Step, math.Floor)*b.Step,
		Max: b.Min + steps(clamp(data.Max, b.Min, b.Max)-b.Min, b.Step, math.Ceil)*b.Step,
	}
	return b, nil
}

// stepEpsilon absorbs float error in span/step before rounding.
const stepEpsilon = 1e-9

// steps returns span/step rounded to a whole number of steps by round.
func steps(span, step float64, round func(float64) float64) float64 {
	n := span / step
	if r := math.Round(n); math.Abs(n-r) < stepEpsilon {
		return r
	}
	return round(n)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// SuccessPie returns the success aggregate for site.
func (s *Service) SuccessPie(ctx context.Context, site string) (types.PieChart, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return types.PieChart{}, err
	}
	s.checkSite(ctx, ds, site)

	pie := launches.SuccessPie(ds, site)
	metrics.RecordAggregate("pie", scope(site), len(pie.Slices))
	return pie, nil
}

// PayloadScatter returns the launches of site whose payload lies in rng.
func (s *Service) PayloadScatter(ctx context.Context, site string, rng types.Range) (types.ScatterChart, error) {
	ds, _, err := s.snapshot()
	if err != nil {
		return types.ScatterChart{}, err
	}
	s.checkSite(ctx, ds, site)

	sc := launches.PayloadScatter(ds, site, rng)
	metrics.RecordAggregate("scatter", scope(site), len(sc.Points))
	return sc, nil
}

// SuccessPieSVG renders the success pie for site.
func (s *Service) SuccessPieSVG(ctx context.Context, site string) ([]byte, error) {
	ds, charts, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	key := cache.Key{Chart: chart.NamePie, Site: site}
	return s.render(ctx, charts, key, func(w io.Writer) error {
		s.checkSite(ctx, ds, site)
		pie := launches.SuccessPie(ds, site)
		metrics.RecordAggregate("pie", scope(site), len(pie.Slices))
		return s.renderer.RenderPie(w, pie)
	})
}

// PayloadScatterSVG renders the payload scatter for site and rng.
func (s *Service) PayloadScatterSVG(ctx context.Context, site string, rng types.Range) ([]byte, error) {
	ds, charts, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	key := cache.Key{Chart: chart.NameScatter, Site: site, Min: rng.Min, Max: rng.Max}
	return s.render(ctx, charts, key, func(w io.Writer) error {
		s.checkSite(ctx, ds, site)
		sc := launches.PayloadScatter(ds, site, rng)
		metrics.RecordAggregate("scatter", scope(site), len(sc.Points))
		return s.renderer.RenderScatter(w, sc, ds.BoosterCategories())
	})
}

// render serves key from the cache or draws it and stores the result.
func (s *Service) render(ctx context.Context, charts cache.Cache, key cache.Key, draw func(io.Writer) error) ([]byte, error) {
	if b, ok := charts.Get(ctx, key); ok {
		metrics.RecordRenderCache(true)
		return b, nil
	}
	metrics.RecordRenderCache(false)

	start := time.Now()
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		metrics.RecordChartRenderError(key.Chart)
		s.logger.Error(ctx, "chart render failed",
			logger.String("key", key.String()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	metrics.RecordChartRender(key.Chart, float64(time.Since(start).Microseconds())/1000)

	b := buf.Bytes()
	charts.Put(ctx, key, b)
	metrics.UpdateRenderCacheSize(int(charts.Size()))
	return b, nil
}

func (s *Service) checkSite(ctx context.Context, ds *model.Dataset, site string) {
	if launches.KnownSite(ds, site) {
		return
	}
	metrics.RecordUnknownSite()
	s.logger.Debug(ctx, "unknown launch site requested", logger.String("site", site))
}

func scope(site string) string {
	if site == types.AllSites {
		return "all"
	}
	return "site"
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"dataPath":   s.dataPath,
		"cacheSize":  s.cacheSize,
		"sliderStep": s.sliderStep,
	}

	if s.started {
		lo, hi := s.ds.PayloadBounds()
		stats["records"] = s.ds.Len()
		stats["sites"] = len(s.ds.Sites())
		stats["boosterCategories"] = len(s.ds.BoosterCategories())
		stats["payloadMin"] = lo
		stats["payloadMax"] = hi
		stats["cachedCharts"] = s.charts.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["loadDurationMs"] = s.store.LoadDuration().Milliseconds()

		metrics.UpdateRenderCacheSize(int(s.charts.Size()))
	}

	return stats
}
