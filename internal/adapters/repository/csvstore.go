package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/launchdash/internal/domain/model"
)

// Column headers of the launch CSV.
const (
	ColumnSite            = "Launch Site"
	ColumnPayload         = "Payload Mass (kg)"
	ColumnBoosterCategory = "Booster Version Category"
	ColumnOutcome         = "class"
	ColumnFlightNumber    = "Flight Number"
	ColumnBoosterVersion  = "Booster Version"
)

var requiredColumns = []string{ColumnSite, ColumnPayload, ColumnBoosterCategory, ColumnOutcome}

// ctxCheckEvery bounds how many rows are parsed between context checks.
const ctxCheckEvery = 1024

const utf8BOM = "\ufeff"

// CSVStore is a Store backed by a CSV file read once by Load.
type CSVStore struct {
	path   string
	reader io.Reader

	mu           sync.RWMutex
	ds           *model.Dataset
	loadDuration time.Duration
}

var _ Store = (*CSVStore)(nil)

// NewCSVStore creates a store; call Load before reading.
func NewCSVStore(opts ...Option) *CSVStore {
	s := &CSVStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses the configured source. A store can only be loaded once; later
// calls are no-ops.
func (s *CSVStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ds != nil {
		return nil
	}

	start := time.Now()
	var (
		ds  *model.Dataset
		err error
	)
	switch {
	case s.reader != nil:
		ds, err = Parse(ctx, s.reader)
	case s.path != "":
		ds, err = ParseFile(ctx, s.path)
	default:
		err = ErrNoSource
	}
	if err != nil {
		return err
	}

	s.ds = ds
	s.loadDuration = time.Since(start)
	return nil
}

// Dataset implements Store.
func (s *CSVStore) Dataset(_ context.Context) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrNotLoaded
	}
	return s.ds, nil
}

// Count implements Store.
func (s *CSVStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return 0
	}
	return s.ds.Len()
}

// LoadDuration reports how long the last successful Load took.
func (s *CSVStore) LoadDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadDuration
}

// ParseFile reads a launch CSV from path.
func ParseFile(ctx context.Context, path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a launch CSV. Columns are located by header name; unknown
// columns are ignored. A header-only input is a valid empty dataset.
func Parse(ctx context.Context, r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var launches []model.Launch
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}

		line, _ := cr.FieldPos(0)
		l, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		launches = append(launches, l)
	}

	return model.NewDataset(launches), nil
}

type columnIndex struct {
	site, payload, booster, outcome int
	flight, version                 int // -1 when absent
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, strconv.Quote(c))
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	optional := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	return columnIndex{
		site:    pos[ColumnSite],
		payload: pos[ColumnPayload],
		booster: pos[ColumnBoosterCategory],
		outcome: pos[ColumnOutcome],
		flight:  optional(ColumnFlightNumber),
		version: optional(ColumnBoosterVersion),
	}, nil
}

func parseRow(rec []string, idx columnIndex) (model.Launch, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	site := field(idx.site)
	if site == "" {
		return model.Launch{}, fmt.Errorf("empty %q", ColumnSite)
	}

	payload, err := strconv.ParseFloat(field(idx.payload), 64)
	if err != nil || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return model.Launch{}, fmt.Errorf("invalid %q value %q", ColumnPayload, field(idx.payload))
	}
	if payload < 0 {
		return model.Launch{}, fmt.Errorf("negative %q value %v", ColumnPayload, payload)
	}

	outcome, err := parseOutcome(field(idx.outcome))
	if err != nil {
		return model.Launch{}, err
	}

	l := model.Launch{
		Site:            site,
		PayloadMassKG:   payload,
		BoosterCategory: field(idx.booster),
		BoosterVersion:  field(idx.version),
		Outcome:         outcome,
	}
	if raw := field(idx.flight); raw != "" {
		l.FlightNumber, err = strconv.Atoi(raw)
		if err != nil {
			return model.Launch{}, fmt.Errorf("invalid %q value %q", ColumnFlightNumber, raw)
		}
	}
	return l, nil
}

// parseOutcome accepts 0/1 written as integers or floats ("1", "1.0").
func parseOutcome(raw string) (model.Outcome, error) {
	v, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil:
	case v == 0:
		return model.Failure, nil
	case v == 1:
		return model.Success, nil
	}
	return 0, fmt.Errorf("invalid %q value %q: want 0 or 1", ColumnOutcome, raw)
}
