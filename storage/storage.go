package storage

import (
	"github.com/subwaylabs/turnstile/model"
)

// Storage persists the output of pipeline runs so normalized readings
// can be accumulated across runs and re-queried without refetching.
type Storage interface {
	// Writes coordinate rows. Existing rows with the same station
	// name are updated.
	WriteStationCoords(coords []model.StationCoord) error

	// Returns the coordinate table keyed by station name.
	StationCoords() (map[string]model.StationCoord, error)

	// Readings tend to arrive hundreds of thousands at a time, so
	// BeginReadings/EndReadings bracket all WriteReading calls,
	// allowing transactions/batching/whathaveyou. A reading with the
	// same (turnstile_id, observed_at) as a stored one replaces it.
	BeginReadings() error
	WriteReading(r *model.NormalizedReading) error
	EndReadings() error

	// Retrieves stored readings matching the filter, ordered by
	// (turnstile_id, observed_at).
	Readings(filter ReadingFilter) ([]*model.NormalizedReading, error)

	Close() error
}

type ReadingFilter struct {
	// If set, only include readings from the given ISO week.
	Week int

	// If set, only include readings from the given station.
	Station string
}
