// Package aggregate derives weekday-vs-weekend commuter estimates from
// normalized turnstile readings.
package aggregate

import (
	"sort"

	"github.com/subwaylabs/turnstile/model"
)

type stationKey struct {
	station  string
	lat, lon float64
}

// Traffic computes, for each station in the target ISO week, mean weekday
// daily traffic minus mean weekend daily traffic, for entries and exits.
// Stations lacking either a weekday or a weekend observation that week
// produce no output row. Output is ordered by station name, and the
// function is pure: identical inputs yield identical output.
func Traffic(readings []model.NormalizedReading, week int) []model.StationTrafficDiff {
	type dayKey struct {
		stationKey
		wday int
	}
	type totals struct {
		entries, exits int64
	}

	// Daily entry/exit totals per station.
	daily := map[dayKey]*totals{}
	for _, r := range readings {
		if r.Week != week {
			continue
		}
		k := dayKey{stationKey{r.Station, r.Latitude, r.Longitude}, r.WeekdayIndex}
		t, found := daily[k]
		if !found {
			t = &totals{}
			daily[k] = t
		}
		t.entries += r.Entries
		t.exits += r.Exits
	}

	// Mean daily totals per station and side. Saturday and Sunday are
	// indices 5 and 6 under Monday=0 indexing.
	type side struct {
		entries, exits float64
		days           float64
	}
	sides := map[stationKey]*[2]side{} // [0] weekday, [1] weekend
	for k, t := range daily {
		s, found := sides[k.stationKey]
		if !found {
			s = &[2]side{}
			sides[k.stationKey] = s
		}
		i := 0
		if k.wday > 4 {
			i = 1
		}
		s[i].entries += float64(t.entries)
		s[i].exits += float64(t.exits)
		s[i].days += 1
	}

	diffs := []model.StationTrafficDiff{}
	for k, s := range sides {
		if s[0].days == 0 || s[1].days == 0 {
			continue
		}
		diffs = append(diffs, model.StationTrafficDiff{
			Station:   k.station,
			Latitude:  k.lat,
			Longitude: k.lon,
			EntryDiff: s[0].entries/s[0].days - s[1].entries/s[1].days,
			ExitDiff:  s[0].exits/s[0].days - s[1].exits/s[1].days,
		})
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Station < diffs[j].Station
	})

	return diffs
}
