package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/i474232898/air-quality-collector/internal/airquality"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
	defaultConnLifetime = time.Hour
	defaultPingTimeout  = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS air_quality_measurements (
	id            BIGSERIAL PRIMARY KEY,
	location_id   TEXT             NOT NULL,
	location_name TEXT             NOT NULL,
	latitude      DOUBLE PRECISION NOT NULL,
	longitude     DOUBLE PRECISION NOT NULL,
	measured_at   TIMESTAMPTZ      NOT NULL,
	pm2_5         DOUBLE PRECISION,
	pm10          DOUBLE PRECISION,
	o3            DOUBLE PRECISION,
	no2           DOUBLE PRECISION,
	aqi           INTEGER          NOT NULL,
	temperature_c DOUBLE PRECISION NOT NULL,
	humidity_pct  DOUBLE PRECISION NOT NULL,
	pressure_hpa  DOUBLE PRECISION NOT NULL,
	wind_speed_ms DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_measurements_location_time
	ON air_quality_measurements (location_id, measured_at);
`

// PostgresStore persists measurements in PostgreSQL through the pgx stdlib
// driver. It implements the airquality.Store interface.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a pooled connection, validates it, and bootstraps
// the measurements table.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: empty DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Insert writes one measurement row.
func (s *PostgresStore) Insert(ctx context.Context, rec airquality.Record) error {
	const query = `
		INSERT INTO air_quality_measurements (
			location_id, location_name, latitude, longitude, measured_at,
			pm2_5, pm10, o3, no2, aqi,
			temperature_c, humidity_pct, pressure_hpa, wind_speed_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.LocationID, rec.LocationName, rec.Latitude, rec.Longitude, rec.Timestamp,
		rec.PM25, rec.PM10, rec.O3, rec.NO2, rec.AQI,
		rec.TemperatureC, rec.HumidityPct, rec.PressureHpa, rec.WindSpeedMS,
	)
	return err
}

// Latest returns the most recent measurement for a location.
func (s *PostgresStore) Latest(ctx context.Context, locationID string) (airquality.Record, error) {
	const query = selectColumns + `
		WHERE location_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, locationID))
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.Record{}, ErrNotFound
	}
	return rec, err
}

// Range returns measurements for a location between from and to (inclusive),
// ordered by time ascending.
func (s *PostgresStore) Range(ctx context.Context, locationID string, from, to time.Time) ([]airquality.Record, error) {
	const query = selectColumns + `
		WHERE location_id = $1 AND measured_at >= $2 AND measured_at <= $3
		ORDER BY measured_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, locationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []airquality.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

const selectColumns = `
	SELECT location_id, location_name, latitude, longitude, measured_at,
		pm2_5, pm10, o3, no2, aqi,
		temperature_c, humidity_pct, pressure_hpa, wind_speed_ms
	FROM air_quality_measurements
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (airquality.Record, error) {
	var rec airquality.Record
	err := row.Scan(
		&rec.LocationID, &rec.LocationName, &rec.Latitude, &rec.Longitude, &rec.Timestamp,
		&rec.PM25, &rec.PM10, &rec.O3, &rec.NO2, &rec.AQI,
		&rec.TemperatureC, &rec.HumidityPct, &rec.PressureHpa, &rec.WindSpeedMS,
	)
	if err != nil {
		return airquality.Record{}, err
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}
