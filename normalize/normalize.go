// Package normalize turns raw cumulative turnstile counters into a clean
// per-interval time series.
package normalize

import (
	"log/slog"
	"sort"
	"time"

	"github.com/subwaylabs/turnstile/model"
)

const (
	// DATE and TIME merged, 24-hour clock.
	timestampLayout = "01/02/2006 15:04:05"

	// Interval deltas outside (0, anomalyCeiling) are discarded as
	// anomalous: counter resets and maintenance swaps show up as huge
	// or negative jumps. Both bounds are exclusive, so genuine
	// zero-traffic intervals are dropped too — a station closed for an
	// interval loses those rows. Don't widen without checking the
	// downstream aggregates.
	anomalyCeiling = 3000
)

// Monday-first day names; index matches NormalizedReading.WeekdayIndex.
var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

type row struct {
	raw      model.RawReading
	id       string
	observed time.Time
}

// Readings converts cumulative counters into per-interval entry/exit
// deltas and enriches each surviving row with calendar and coordinate
// fields.
//
// Rows are sorted by (TurnstileID, timestamp) and each is diffed against
// the immediately preceding row of the full sorted sequence; the first
// row of every device's run has no valid predecessor and is dropped.
// Also dropped: rows with unparseable timestamps, rows with anomalous
// deltas, and rows whose station is absent from the coordinate lookup
// (inner join semantics).
func Readings(
	raw []model.RawReading,
	stations map[string]model.StationCoord,
	logger *slog.Logger,
) []model.NormalizedReading {
	if logger == nil {
		logger = slog.Default()
	}

	rows := make([]row, 0, len(raw))
	badTimestamps := 0
	for _, r := range raw {
		observed, err := time.Parse(timestampLayout, r.Date+" "+r.Time)
		if err != nil {
			badTimestamps += 1
			continue
		}
		rows = append(rows, row{raw: r, id: r.TurnstileID(), observed: observed})
	}
	if badTimestamps > 0 {
		logger.Warn("dropped rows with unparseable timestamps",
			"count", badTimestamps)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].id != rows[j].id {
			return rows[i].id < rows[j].id
		}
		return rows[i].observed.Before(rows[j].observed)
	})

	out := []model.NormalizedReading{}
	for i := 1; i < len(rows); i++ {
		cur, prev := rows[i], rows[i-1]
		if cur.id != prev.id {
			// Device boundary: no prior counter to diff against.
			continue
		}

		entries := cur.raw.Entries - prev.raw.Entries
		exits := cur.raw.Exits - prev.raw.Exits
		if entries <= 0 || entries >= anomalyCeiling {
			continue
		}
		if exits <= 0 || exits >= anomalyCeiling {
			continue
		}

		coord, found := stations[cur.raw.Station]
		if !found {
			continue
		}

		wday := mondayIndex(cur.observed.Weekday())
		_, week := cur.observed.ISOWeek()

		out = append(out, model.NormalizedReading{
			ControlArea:  cur.raw.ControlArea,
			Unit:         cur.raw.Unit,
			SCP:          cur.raw.SCP,
			Station:      cur.raw.Station,
			LineName:     cur.raw.LineName,
			Division:     cur.raw.Division,
			Desc:         cur.raw.Desc,
			TurnstileID:  cur.id,
			Observed:     cur.observed,
			Entries:      entries,
			Exits:        exits,
			Weekday:      dayNames[wday],
			WeekdayIndex: wday,
			Week:         week,
			Hour:         cur.observed.Hour(),
			Latitude:     coord.Latitude,
			Longitude:    coord.Longitude,
		})
	}

	return out
}

// mondayIndex maps time.Weekday (Sunday=0) to the Monday=0 indexing used
// throughout the pipeline.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
