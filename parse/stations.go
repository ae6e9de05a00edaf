package parse

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/subwaylabs/turnstile/model"
)

type stationCoordCSV struct {
	Station   string  `csv:"STATION"`
	Latitude  float64 `csv:"LATITUDE"`
	Longitude float64 `csv:"LONGITUDE"`
}

// ParseStationCoords loads the static station coordinate reference table.
// The returned map is keyed by station name as it appears in the turnstile
// files. The first row wins on duplicate station names.
func ParseStationCoords(data io.Reader) (map[string]model.StationCoord, error) {
	rows := []*stationCoordCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling station coordinates csv")
	}

	coords := make(map[string]model.StationCoord, len(rows))
	for _, row := range rows {
		station := strings.TrimSpace(row.Station)
		if station == "" {
			continue
		}
		if _, found := coords[station]; found {
			continue
		}
		coords[station] = model.StationCoord{
			Station:   station,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		}
	}

	return coords, nil
}
