package storage

import (
	"sort"

	"github.com/subwaylabs/turnstile/model"
)

// In memory implementation of Storage below

type readingKey struct {
	TurnstileID string
	Observed    int64
}

type MemoryStorage struct {
	coords   map[string]model.StationCoord
	readings map[readingKey]*model.NormalizedReading
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		coords:   map[string]model.StationCoord{},
		readings: map[readingKey]*model.NormalizedReading{},
	}
}

func (s *MemoryStorage) WriteStationCoords(coords []model.StationCoord) error {
	for _, c := range coords {
		s.coords[c.Station] = c
	}
	return nil
}

func (s *MemoryStorage) StationCoords() (map[string]model.StationCoord, error) {
	coords := make(map[string]model.StationCoord, len(s.coords))
	for station, c := range s.coords {
		coords[station] = c
	}
	return coords, nil
}

func (s *MemoryStorage) BeginReadings() error {
	return nil
}

func (s *MemoryStorage) WriteReading(r *model.NormalizedReading) error {
	copied := *r
	s.readings[readingKey{r.TurnstileID, r.Observed.UnixNano()}] = &copied
	return nil
}

func (s *MemoryStorage) EndReadings() error {
	return nil
}

func (s *MemoryStorage) Readings(filter ReadingFilter) ([]*model.NormalizedReading, error) {
	readings := []*model.NormalizedReading{}
	for _, r := range s.readings {
		if filter.Week != 0 && r.Week != filter.Week {
			continue
		}
		if filter.Station != "" && r.Station != filter.Station {
			continue
		}
		readings = append(readings, r)
	}

	sort.Slice(readings, func(i, j int) bool {
		if readings[i].TurnstileID != readings[j].TurnstileID {
			return readings[i].TurnstileID < readings[j].TurnstileID
		}
		return readings[i].Observed.Before(readings[j].Observed)
	})

	return readings, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
