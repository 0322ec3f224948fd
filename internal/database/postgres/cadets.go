package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nccpresi/attendance-backend/internal/database"
)

// CadetRepository implements database.CadetStore on PostgreSQL.
type CadetRepository struct {
	pool *Pool
}

func NewCadetRepository(pool *Pool) *CadetRepository {
	return &CadetRepository{pool: pool}
}

const cadetColumns = `enrollment_id, rank, name, year, dept, pu_roll_number,
	sd_sw, mobile_number, email, date_of_birth, blood_group`

func (r *CadetRepository) Upsert(ctx context.Context, cadet database.Cadet) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO cadets (`+cadetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (enrollment_id) DO NOTHING`,
		cadet.EnrollmentID, cadet.Rank, cadet.Name, cadet.Year, cadet.Department,
		cadet.PURollNumber, cadet.SDSW, cadet.MobileNumber, cadet.Email,
		cadet.DateOfBirth, cadet.BloodGroup,
	)
	if err != nil {
		return false, fmt.Errorf("could not insert cadet %s: %w", cadet.EnrollmentID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read insert result: %w", err)
	}
	return rows > 0, nil
}

func (r *CadetRepository) Get(ctx context.Context, enrollmentID string) (*database.Cadet, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT `+cadetColumns+`
		FROM cadets
		WHERE enrollment_id = $1`,
		enrollmentID,
	)

	cadet, err := scanCadet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load cadet %s: %w", enrollmentID, err)
	}
	return cadet, nil
}

func (r *CadetRepository) List(ctx context.Context) ([]database.Cadet, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+cadetColumns+`
		FROM cadets
		ORDER BY enrollment_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("could not list cadets: %w", err)
	}
	defer rows.Close()

	var cadets []database.Cadet
	for rows.Next() {
		cadet, err := scanCadet(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan cadet: %w", err)
		}
		cadets = append(cadets, *cadet)
	}
	return cadets, rows.Err()
}

func (r *CadetRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cadets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count cadets: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCadet(row rowScanner) (*database.Cadet, error) {
	var c database.Cadet
	err := row.Scan(&c.EnrollmentID, &c.Rank, &c.Name, &c.Year, &c.Department,
		&c.PURollNumber, &c.SDSW, &c.MobileNumber, &c.Email,
		&c.DateOfBirth, &c.BloodGroup)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
