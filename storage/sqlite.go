package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/subwaylabs/turnstile/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db            *sql.DB
	readingTx     *sql.Tx
	readingInsert *sql.Stmt
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/turnstile.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS station_coord (
    station TEXT NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
PRIMARY KEY (station)
);

CREATE TABLE IF NOT EXISTS reading (
    control_area TEXT NOT NULL,
    unit TEXT NOT NULL,
    scp TEXT NOT NULL,
    station TEXT NOT NULL,
    line_name TEXT NOT NULL,
    division TEXT NOT NULL,
    description TEXT NOT NULL,
    turnstile_id TEXT NOT NULL,
    observed_at TIMESTAMP NOT NULL,
    entries INTEGER NOT NULL,
    exits INTEGER NOT NULL,
    weekday TEXT NOT NULL,
    weekday_index INTEGER NOT NULL,
    week INTEGER NOT NULL,
    hour INTEGER NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
PRIMARY KEY (turnstile_id, observed_at)
);

CREATE INDEX IF NOT EXISTS reading_week ON reading (week);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) WriteStationCoords(coords []model.StationCoord) error {
	for _, c := range coords {
		_, err := s.db.Exec(`
INSERT OR REPLACE INTO station_coord (station, latitude, longitude)
VALUES (?, ?, ?)`,
			c.Station, c.Latitude, c.Longitude)
		if err != nil {
			return fmt.Errorf("writing station coord: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) StationCoords() (map[string]model.StationCoord, error) {
	rows, err := s.db.Query(`SELECT station, latitude, longitude FROM station_coord`)
	if err != nil {
		return nil, fmt.Errorf("querying station coords: %w", err)
	}
	defer rows.Close()

	coords := map[string]model.StationCoord{}
	for rows.Next() {
		var c model.StationCoord
		if err := rows.Scan(&c.Station, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scanning station coord: %w", err)
		}
		coords[c.Station] = c
	}

	return coords, rows.Err()
}

func (s *SQLiteStorage) BeginReadings() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO reading (
    control_area, unit, scp, station, line_name, division, description,
    turnstile_id, observed_at, entries, exits,
    weekday, weekday_index, week, hour, latitude, longitude
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}

	s.readingTx = tx
	s.readingInsert = stmt

	return nil
}

func (s *SQLiteStorage) WriteReading(r *model.NormalizedReading) error {
	if s.readingInsert == nil {
		return fmt.Errorf("WriteReading outside BeginReadings/EndReadings")
	}

	_, err := s.readingInsert.Exec(
		r.ControlArea, r.Unit, r.SCP, r.Station, r.LineName, r.Division, r.Desc,
		r.TurnstileID, r.Observed, r.Entries, r.Exits,
		r.Weekday, r.WeekdayIndex, r.Week, r.Hour, r.Latitude, r.Longitude,
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) EndReadings() error {
	if s.readingTx == nil {
		return fmt.Errorf("EndReadings without BeginReadings")
	}

	s.readingInsert.Close()
	err := s.readingTx.Commit()
	s.readingTx = nil
	s.readingInsert = nil
	if err != nil {
		return fmt.Errorf("committing readings: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Readings(filter ReadingFilter) ([]*model.NormalizedReading, error) {
	query := `
SELECT
    control_area, unit, scp, station, line_name, division, description,
    turnstile_id, observed_at, entries, exits,
    weekday, weekday_index, week, hour, latitude, longitude
FROM reading`

	conditions := []string{}
	params := []interface{}{}
	if filter.Week != 0 {
		conditions = append(conditions, "week = ?")
		params = append(params, filter.Week)
	}
	if filter.Station != "" {
		conditions = append(conditions, "station = ?")
		params = append(params, filter.Station)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY turnstile_id, observed_at"

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := []*model.NormalizedReading{}
	for rows.Next() {
		var r model.NormalizedReading
		err := rows.Scan(
			&r.ControlArea, &r.Unit, &r.SCP, &r.Station, &r.LineName, &r.Division, &r.Desc,
			&r.TurnstileID, &r.Observed, &r.Entries, &r.Exits,
			&r.Weekday, &r.WeekdayIndex, &r.Week, &r.Hour, &r.Latitude, &r.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, &r)
	}

	return readings, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
