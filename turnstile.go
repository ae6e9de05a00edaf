// Package turnstile retrieves MTA turnstile snapshot files, normalizes
// their cumulative counters into per-interval traffic, and derives
// weekday-vs-weekend commuter estimates per station.
package turnstile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/subwaylabs/turnstile/aggregate"
	"github.com/subwaylabs/turnstile/catalog"
	"github.com/subwaylabs/turnstile/downloader"
	"github.com/subwaylabs/turnstile/model"
	"github.com/subwaylabs/turnstile/normalize"
	"github.com/subwaylabs/turnstile/parse"
	"github.com/subwaylabs/turnstile/storage"
)

const (
	DefaultCatalogURL   = "http://web.mta.info/developers/turnstile.html"
	DefaultCatalogTTL   = 1 * time.Hour
	DefaultFetchTimeout = 60 * time.Second
	DefaultFetchMaxSize = 64 << 20 // 64 MB
	DefaultFetchRetries = 2
	DefaultFetchWorkers = 4
)

var (
	// ErrInvalidDateRange means the caller passed a zero date or
	// start after end.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrCatalogUnavailable means the catalog page itself could not
	// be retrieved, so no snapshot files can be discovered.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Manager runs the turnstile ETL pipeline.
type Manager struct {
	CatalogURL   string
	CatalogTTL   time.Duration
	FetchTimeout time.Duration
	FetchMaxSize int
	FetchRetries int
	FetchWorkers int
	Downloader   downloader.Downloader
	Logger       *slog.Logger

	// Optional. When set, Run persists normalized readings and the
	// coordinate table before aggregating.
	Storage storage.Storage
}

// NewManager creates a Manager with default settings and an in-memory
// caching downloader.
func NewManager() *Manager {
	return &Manager{
		CatalogURL:   DefaultCatalogURL,
		CatalogTTL:   DefaultCatalogTTL,
		FetchTimeout: DefaultFetchTimeout,
		FetchMaxSize: DefaultFetchMaxSize,
		FetchRetries: DefaultFetchRetries,
		FetchWorkers: DefaultFetchWorkers,

		Downloader: downloader.NewMemory(),
		Logger:     slog.Default(),
	}
}

// FetchCatalog retrieves the developer page and parses it into dated
// snapshot links.
func (m *Manager) FetchCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	body, err := m.Downloader.Get(ctx, m.CatalogURL, nil, downloader.GetOptions{
		Timeout:  m.FetchTimeout,
		MaxSize:  m.FetchMaxSize,
		Retries:  m.FetchRetries,
		Cache:    true,
		CacheTTL: m.CatalogTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	return catalog.Parse(body, m.Logger)
}

// FetchSources retrieves every snapshot file dated strictly after start
// and up to and including end, concatenated in catalog order. A fetch or
// parse failure for an individual file is logged and that source skipped,
// so the result can be smaller than the catalog suggests — or empty, if
// every filtered link failed.
func (m *Manager) FetchSources(ctx context.Context, start, end time.Time) ([]model.RawReading, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, fmt.Errorf("%w: start %s, end %s",
			ErrInvalidDateRange,
			start.Format(time.RFC3339),
			end.Format(time.RFC3339))
	}

	entries, err := m.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	filtered := []model.CatalogEntry{}
	for _, entry := range entries {
		// The zero time marks an unparseable link date; it never
		// matches a range.
		if entry.Date.IsZero() {
			continue
		}
		if entry.Date.After(start) && !entry.Date.After(end) {
			filtered = append(filtered, entry)
		}
	}

	// Fetches are independent. A failed sibling must not abort the
	// rest, so the closures always return nil and failures surface as
	// gaps in the indexed result slice. The index also keeps the
	// concatenation in catalog filter order regardless of completion
	// order.
	results := make([][]model.RawReading, len(filtered))
	var g errgroup.Group
	g.SetLimit(m.FetchWorkers)
	for i, entry := range filtered {
		i, entry := i, entry
		g.Go(func() error {
			rows, err := m.fetchSource(ctx, entry.URL)
			if err != nil {
				m.Logger.Warn("skipping source",
					"url", entry.URL, "error", err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	raw := []model.RawReading{}
	for _, rows := range results {
		raw = append(raw, rows...)
	}

	return raw, nil
}

func (m *Manager) fetchSource(ctx context.Context, url string) ([]model.RawReading, error) {
	body, err := m.Downloader.Get(ctx, url, nil, downloader.GetOptions{
		Timeout: m.FetchTimeout,
		MaxSize: m.FetchMaxSize,
		Retries: m.FetchRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}

	rows, err := parse.ParseReadings(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	return rows, nil
}

// Normalize converts raw readings to the clean per-interval series using
// the given station coordinate lookup.
func (m *Manager) Normalize(
	raw []model.RawReading,
	stations map[string]model.StationCoord,
) []model.NormalizedReading {
	return normalize.Readings(raw, stations, m.Logger)
}

// AggregateTraffic computes per-station weekday-vs-weekend differentials
// for the given ISO week.
func (m *Manager) AggregateTraffic(
	readings []model.NormalizedReading,
	week int,
) []model.StationTrafficDiff {
	return aggregate.Traffic(readings, week)
}

// Run executes the full pipeline over one date range and aggregates the
// given ISO week. With a Storage configured, the normalized readings and
// coordinate table are persisted before aggregation.
func (m *Manager) Run(
	ctx context.Context,
	start, end time.Time,
	stations map[string]model.StationCoord,
	week int,
) ([]model.StationTrafficDiff, error) {
	raw, err := m.FetchSources(ctx, start, end)
	if err != nil {
		return nil, err
	}

	readings := m.Normalize(raw, stations)

	if m.Storage != nil {
		if err := m.Persist(stations, readings); err != nil {
			return nil, fmt.Errorf("persisting run: %w", err)
		}
	}

	return m.AggregateTraffic(readings, week), nil
}

// Persist writes the coordinate table and a batch of normalized readings
// to the configured Storage.
func (m *Manager) Persist(
	stations map[string]model.StationCoord,
	readings []model.NormalizedReading,
) error {
	if m.Storage == nil {
		return errors.New("no storage configured")
	}
	s := m.Storage

	coords := make([]model.StationCoord, 0, len(stations))
	for _, c := range stations {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		return coords[i].Station < coords[j].Station
	})

	if err := s.WriteStationCoords(coords); err != nil {
		return fmt.Errorf("writing station coords: %w", err)
	}

	if err := s.BeginReadings(); err != nil {
		return fmt.Errorf("beginning readings: %w", err)
	}
	for i := range readings {
		if err := s.WriteReading(&readings[i]); err != nil {
			return fmt.Errorf("writing reading: %w", err)
		}
	}
	if err := s.EndReadings(); err != nil {
		return fmt.Errorf("ending readings: %w", err)
	}

	return nil
}
