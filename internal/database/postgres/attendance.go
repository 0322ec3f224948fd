package postgres

import (
	"context"
	"fmt"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// AttendanceRepository implements database.AttendanceStore on PostgreSQL.
type AttendanceRepository struct {
	pool *Pool
}

func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Log inserts the attendance row. The unique (event_id, enrollment_id)
// index makes duplicates a no-op; a referential failure (unknown event)
// surfaces as an error.
func (r *AttendanceRepository) Log(ctx context.Context, entry database.AttendanceLog) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (event_id, enrollment_id, status, logged_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, enrollment_id) DO NOTHING`,
		entry.EventID, entry.EnrollmentID, entry.Status, entry.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("could not log attendance for %s at %s: %w",
			entry.EnrollmentID, entry.EventID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read insert result: %w", err)
	}
	return rows > 0, nil
}

func (r *AttendanceRepository) ForEvent(ctx context.Context, eventID string) ([]database.AttendanceLog, error) {
	return r.query(ctx, `
		SELECT id, event_id, enrollment_id, status, logged_at
		FROM attendance_logs
		WHERE event_id = $1
		ORDER BY logged_at`,
		eventID,
	)
}

func (r *AttendanceRepository) NonPresentForEvent(ctx context.Context, eventID string) ([]database.AttendanceLog, error) {
	return r.query(ctx, `
		SELECT id, event_id, enrollment_id, status, logged_at
		FROM attendance_logs
		WHERE event_id = $1 AND status <> $2
		ORDER BY logged_at`,
		eventID, database.StatusPresent,
	)
}

func (r *AttendanceRepository) All(ctx context.Context) ([]database.AttendanceLog, error) {
	return r.query(ctx, `
		SELECT id, event_id, enrollment_id, status, logged_at
		FROM attendance_logs
		ORDER BY logged_at`,
	)
}

func (r *AttendanceRepository) query(ctx context.Context, query string, args ...any) ([]database.AttendanceLog, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []database.AttendanceLog
	for rows.Next() {
		var l database.AttendanceLog
		if err := rows.Scan(&l.ID, &l.EventID, &l.EnrollmentID, &l.Status, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("could not scan attendance log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
