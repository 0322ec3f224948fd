// Package postgres implements the storage interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/nccpresi/attendance-backend/internal/config"
)

// Pool wraps the sql connection pool shared by the repositories.
type Pool struct {
	db *sql.DB
}

// NewPool opens a connection pool and verifies connectivity.
func NewPool(cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return &Pool{db: db}, nil
}

func (p *Pool) Close() error {
	return p.db.Close()
}

// Migrate creates the schema. Statements are idempotent so the server can
// run this on every start.
func (p *Pool) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cadets (
			enrollment_id TEXT PRIMARY KEY,
			rank TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			dept TEXT NOT NULL DEFAULT '',
			pu_roll_number TEXT NOT NULL DEFAULT '',
			sd_sw TEXT NOT NULL DEFAULT '',
			mobile_number TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			date_of_birth TEXT NOT NULL DEFAULT '',
			blood_group TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			event_type TEXT NOT NULL DEFAULT '',
			event_date TEXT NOT NULL,
			event_time TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'Active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_logs (
			id BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL REFERENCES events(event_id),
			enrollment_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Present',
			logged_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS attendance_logs_event_cadet
			ON attendance_logs (event_id, enrollment_id)`,
		`CREATE INDEX IF NOT EXISTS events_date_status
			ON events (event_date, status)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
