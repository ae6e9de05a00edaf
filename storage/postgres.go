package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/subwaylabs/turnstile/model"
)

type PSQLStorage struct {
	db *sql.DB

	readingTx     *sql.Tx
	readingInsert *sql.Stmt
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS station_coord;
DROP TABLE IF EXISTS reading;
`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS station_coord (
    station TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
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
    observed_at TIMESTAMPTZ NOT NULL,
    entries BIGINT NOT NULL,
    exits BIGINT NOT NULL,
    weekday TEXT NOT NULL,
    weekday_index INT NOT NULL,
    week INT NOT NULL,
    hour INT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (turnstile_id, observed_at)
);

CREATE INDEX IF NOT EXISTS reading_week ON reading (week);`)
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) WriteStationCoords(coords []model.StationCoord) error {
	for _, c := range coords {
		_, err := s.db.Exec(`
INSERT INTO station_coord (station, latitude, longitude)
VALUES ($1, $2, $3)
ON CONFLICT (station) DO UPDATE SET
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude`,
			c.Station, c.Latitude, c.Longitude)
		if err != nil {
			return fmt.Errorf("writing station coord: %w", err)
		}
	}
	return nil
}

func (s *PSQLStorage) StationCoords() (map[string]model.StationCoord, error) {
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

func (s *PSQLStorage) BeginReadings() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO reading (
    control_area, unit, scp, station, line_name, division, description,
    turnstile_id, observed_at, entries, exits,
    weekday, weekday_index, week, hour, latitude, longitude
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (turnstile_id, observed_at) DO UPDATE SET
    entries = EXCLUDED.entries,
    exits = EXCLUDED.exits`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}

	s.readingTx = tx
	s.readingInsert = stmt

	return nil
}

func (s *PSQLStorage) WriteReading(r *model.NormalizedReading) error {
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

func (s *PSQLStorage) EndReadings() error {
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

func (s *PSQLStorage) Readings(filter ReadingFilter) ([]*model.NormalizedReading, error) {
	query := `
SELECT
    control_area, unit, scp, station, line_name, division, description,
    turnstile_id, observed_at, entries, exits,
    weekday, weekday_index, week, hour, latitude, longitude
FROM reading`

	conditions := []string{}
	params := []interface{}{}
	if filter.Week != 0 {
		conditions = append(conditions, fmt.Sprintf("week = $%d", len(params)+1))
		params = append(params, filter.Week)
	}
	if filter.Station != "" {
		conditions = append(conditions, fmt.Sprintf("station = $%d", len(params)+1))
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

func (s *PSQLStorage) Close() error {
	return s.db.Close()
}
