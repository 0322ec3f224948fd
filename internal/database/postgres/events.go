package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// EventRepository implements database.EventStore on PostgreSQL.
type EventRepository struct {
	pool *Pool
}

func NewEventRepository(pool *Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event database.Event) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO events (event_id, title, event_type, event_date, event_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.EventID, event.Title, event.EventType, event.Date, event.Time,
		event.Status, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not create event %s: %w", event.EventID, err)
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, eventID string) (*database.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT e.event_id, e.title, e.event_type, e.event_date, e.event_time,
			e.status, e.created_at, COUNT(l.id)
		FROM events e
		LEFT JOIN attendance_logs l ON l.event_id = e.event_id
		WHERE e.event_id = $1
		GROUP BY e.event_id`,
		eventID,
	)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load event %s: %w", eventID, err)
	}
	return event, nil
}

func (r *EventRepository) CurrentActive(ctx context.Context, date string) (*database.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT e.event_id, e.title, e.event_type, e.event_date, e.event_time,
			e.status, e.created_at, COUNT(l.id)
		FROM events e
		LEFT JOIN attendance_logs l ON l.event_id = e.event_id
		WHERE e.status = $1 AND e.event_date = $2
		GROUP BY e.event_id
		ORDER BY e.created_at DESC
		LIMIT 1`,
		database.EventStatusActive, date,
	)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load active event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) EndCurrent(ctx context.Context, date string) (*database.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		UPDATE events SET status = $1
		WHERE event_id = (
			SELECT event_id FROM events
			WHERE status = $2 AND event_date = $3
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING event_id, title, event_type, event_date, event_time, status, created_at`,
		database.EventStatusEnded, database.EventStatusActive, date,
	)

	var e database.Event
	err := row.Scan(&e.EventID, &e.Title, &e.EventType, &e.Date, &e.Time,
		&e.Status, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not end active event: %w", err)
	}
	return &e, nil
}

// List returns events newest first. A non-positive limit means no limit.
func (r *EventRepository) List(ctx context.Context, limit int) ([]database.Event, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT e.event_id, e.title, e.event_type, e.event_date, e.event_time,
			e.status, e.created_at, COUNT(l.id)
		FROM events e
		LEFT JOIN attendance_logs l ON l.event_id = e.event_id
		GROUP BY e.event_id
		ORDER BY e.created_at DESC
		LIMIT $1`,
		limitArg,
	)
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}
	defer rows.Close()

	var events []database.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*database.Event, error) {
	var e database.Event
	err := row.Scan(&e.EventID, &e.Title, &e.EventType, &e.Date, &e.Time,
		&e.Status, &e.CreatedAt, &e.AttendanceCount)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
