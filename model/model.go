package model

import (
	"time"
)

// CatalogEntry is one dated link to a turnstile snapshot file, as
// discovered on the MTA developer page. Date is the zero time when the
// anchor text couldn't be parsed; such entries never match a date range.
type CatalogEntry struct {
	Date time.Time
	URL  string
}

// RawReading is one row of a turnstile snapshot file. Entries and Exits
// are cumulative counters for the lifetime of the device, not interval
// traffic.
type RawReading struct {
	ControlArea string // "C/A" in the source files
	Unit        string
	SCP         string
	Station     string
	LineName    string
	Division    string
	Date        string // mm/dd/yyyy
	Time        string // HH:MM:SS
	Desc        string
	Entries     int64
	Exits       int64
}

// TurnstileID builds the composite key identifying one physical device.
// A (ControlArea, Unit, SCP) triple is only unique within a station.
func (r RawReading) TurnstileID() string {
	return r.ControlArea + "_" + r.Unit + "_" + r.SCP + "_" + r.Station
}

// NormalizedReading is one deaggregated observation: Entries and Exits
// hold the traffic since the device's previous reading.
type NormalizedReading struct {
	ControlArea string
	Unit        string
	SCP         string
	Station     string
	LineName    string
	Division    string
	Desc        string

	TurnstileID string
	Observed    time.Time
	Entries     int64
	Exits       int64

	Weekday      string // "Monday" .. "Sunday"
	WeekdayIndex int    // Monday=0 .. Sunday=6
	Week         int    // ISO week number
	Hour         int

	Latitude  float64
	Longitude float64
}

// StationCoord is one row of the station coordinate reference table.
type StationCoord struct {
	Station   string
	Latitude  float64
	Longitude float64
}

// StationTrafficDiff is the commuter estimate for one station in one ISO
// week: mean weekday daily traffic minus mean weekend daily traffic.
type StationTrafficDiff struct {
	Station   string
	Latitude  float64
	Longitude float64
	EntryDiff float64
	ExitDiff  float64
}
