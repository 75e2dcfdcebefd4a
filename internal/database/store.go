// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package database persists interval readings in SQLite so analytics
// can run without refetching from the provider.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matthewgall/wattwise/internal/analytics"
	"github.com/matthewgall/wattwise/internal/logging"
)

// Store wraps the SQLite connection.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
}

// FetchRecord is one audit row describing a completed provider fetch.
type FetchRecord struct {
	ID            int64
	MeteringPoint string
	From          time.Time
	To            time.Time
	Aggregation   string
	Readings      int
	FetchedAt     time.Time
}

// PointStats summarizes what is stored for one metering point.
type PointStats struct {
	MeteringPoint string
	Readings      int
	FirstTS       time.Time
	LatestTS      time.Time
}

// New opens (creating if needed) the database at dbPath and
// initializes the schema.
func New(dbPath string, logger *logging.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{conn: conn, logger: logger}
	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logger.LogStorageOperation("open", dbPath)
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// initSchema creates the necessary tables
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metering_point TEXT NOT NULL,
		ts TEXT NOT NULL,
		date TEXT NOT NULL,
		consumption REAL NOT NULL,
		quality TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(metering_point, ts)
	);
	CREATE INDEX IF NOT EXISTS idx_readings_date ON readings(metering_point, date);
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metering_point TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		aggregation TEXT NOT NULL,
		readings INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetches_mp ON fetches(metering_point);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// InsertReadings stores readings for a metering point, ignoring rows
// already present. Timestamps are stored in UTC; the date column is
// the calendar day in loc, fixed at insert time, so daily grouping in
// SQL matches the rollup timezone.
func (s *Store) InsertReadings(meteringPoint string, readings []analytics.Reading, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT OR IGNORE INTO readings (metering_point, ts, date, consumption, quality, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	inserted := 0

	for _, reading := range readings {
		result, err := stmt.Exec(
			meteringPoint,
			reading.Timestamp.UTC().Format(time.RFC3339),
			reading.Timestamp.In(loc).Format("2006-01-02"),
			reading.Consumption,
			reading.Quality,
			createdAt,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting reading: %w", err)
		}

		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing readings: %w", err)
	}

	s.logger.Debug("Stored readings",
		"metering_point_count", len(readings),
		"inserted", inserted,
	)
	return inserted, nil
}

// ReadingsForRange returns stored readings with from inclusive and to
// exclusive, ordered by timestamp.
func (s *Store) ReadingsForRange(meteringPoint string, from, to time.Time) ([]analytics.Reading, error) {
	query := `
	SELECT ts, consumption, quality
	FROM readings
	WHERE metering_point = ? AND ts >= ? AND ts < ?
	ORDER BY ts
	`

	rows, err := s.conn.Query(query,
		meteringPoint,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var readings []analytics.Reading
	for rows.Next() {
		var (
			tsStr   string
			reading analytics.Reading
			quality sql.NullString
		)

		if err := rows.Scan(&tsStr, &reading.Consumption, &quality); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}

		reading.Timestamp, err = time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		if quality.Valid {
			reading.Quality = quality.String
		}

		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

// RowsByDate returns per-day consumption totals as flat rows, both
// dates inclusive. Dates come back as midnight in loc, ready for the
// flat-row aggregation path.
func (s *Store) RowsByDate(meteringPoint string, from, to time.Time, loc *time.Location) ([]analytics.MeterRow, error) {
	if loc == nil {
		loc = time.UTC
	}

	query := `
	SELECT date, SUM(consumption)
	FROM readings
	WHERE metering_point = ? AND date >= ? AND date <= ?
	GROUP BY date
	ORDER BY date
	`

	rows, err := s.conn.Query(query,
		meteringPoint,
		from.In(loc).Format("2006-01-02"),
		to.In(loc).Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("querying daily rows: %w", err)
	}
	defer rows.Close()

	var result []analytics.MeterRow
	for rows.Next() {
		var (
			dateStr string
			row     analytics.MeterRow
		)

		if err := rows.Scan(&dateStr, &row.MeterReading); err != nil {
			return nil, fmt.Errorf("scanning daily row: %w", err)
		}

		row.ReadingDate, err = time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

// RecordFetch appends an audit row for a completed provider fetch.
func (s *Store) RecordFetch(meteringPoint string, from, to time.Time, aggregation string, readings int) error {
	query := `
	INSERT INTO fetches (metering_point, from_date, to_date, aggregation, readings, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.conn.Exec(query,
		meteringPoint,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		aggregation,
		readings,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording fetch: %w", err)
	}

	return nil
}

// ListFetches returns the most recent fetch audit rows, newest first.
func (s *Store) ListFetches(limit int) ([]FetchRecord, error) {
	query := `
	SELECT id, metering_point, from_date, to_date, aggregation, readings, fetched_at
	FROM fetches
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying fetches: %w", err)
	}
	defer rows.Close()

	var records []FetchRecord
	for rows.Next() {
		var (
			record               FetchRecord
			fromStr, toStr, atTs string
		)

		if err := rows.Scan(&record.ID, &record.MeteringPoint, &fromStr, &toStr, &record.Aggregation, &record.Readings, &atTs); err != nil {
			return nil, fmt.Errorf("scanning fetch: %w", err)
		}

		record.From, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return nil, fmt.Errorf("parsing from_date: %w", err)
		}
		record.To, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return nil, fmt.Errorf("parsing to_date: %w", err)
		}
		record.FetchedAt, err = time.Parse(time.RFC3339, atTs)
		if err != nil {
			return nil, fmt.Errorf("parsing fetched_at: %w", err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// Stats returns per-metering-point reading counts and the span of
// stored timestamps.
func (s *Store) Stats() ([]PointStats, error) {
	query := `
	SELECT metering_point, COUNT(*), MIN(ts), MAX(ts)
	FROM readings
	GROUP BY metering_point
	ORDER BY metering_point
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var stats []PointStats
	for rows.Next() {
		var (
			ps              PointStats
			firstTS, lastTS string
		)

		if err := rows.Scan(&ps.MeteringPoint, &ps.Readings, &firstTS, &lastTS); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}

		ps.FirstTS, err = time.Parse(time.RFC3339, firstTS)
		if err != nil {
			return nil, fmt.Errorf("parsing first timestamp: %w", err)
		}
		ps.LatestTS, err = time.Parse(time.RFC3339, lastTS)
		if err != nil {
			return nil, fmt.Errorf("parsing latest timestamp: %w", err)
		}

		stats = append(stats, ps)
	}

	return stats, rows.Err()
}
