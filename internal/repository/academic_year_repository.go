package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
)

// AcademicYearRepository handles persistence for admission cycles. The
// single-active-year invariant cannot be expressed as a table constraint, so
// every mutation that touches the active flag runs inside one transaction.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository instantiates an academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

const academicYearColumns = "academic_year_id, year_range, active, created_at"

// Create inserts a new academic year. When active is requested, every other
// row's flag is cleared first so at most one row is active after commit.
func (r *AcademicYearRepository) Create(ctx context.Context, yearRange string, active bool) (*models.AcademicYear, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if active {
		if _, err = tx.ExecContext(ctx, `UPDATE academic_year SET active = FALSE`); err != nil {
			return nil, fmt.Errorf("deactivate years: %w", err)
		}
	}

	var year models.AcademicYear
	err = tx.GetContext(ctx, &year,
		`INSERT INTO academic_year (year_range, active) VALUES ($1, $2) RETURNING `+academicYearColumns,
		yearRange, active)
	if err != nil {
		return nil, fmt.Errorf("insert year: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create year tx: %w", err)
	}
	return &year, nil
}

// Update modifies a year's range and active flag. Activating a year also
// cascades its course offerings to Active and every other year's to Inactive.
// Returns sql.ErrNoRows when the id does not exist.
func (r *AcademicYearRepository) Update(ctx context.Context, id int64, yearRange string, active bool) (*models.AcademicYear, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if active {
		if _, err = tx.ExecContext(ctx, `UPDATE academic_year SET active = FALSE`); err != nil {
			return nil, fmt.Errorf("deactivate years: %w", err)
		}
	}

	var year models.AcademicYear
	err = tx.GetContext(ctx, &year,
		`UPDATE academic_year SET year_range = $2, active = $3 WHERE academic_year_id = $1 RETURNING `+academicYearColumns,
		id, yearRange, active)
	if err != nil {
		return nil, err
	}

	if active {
		if _, err = tx.ExecContext(ctx,
			`UPDATE course_status SET status = $2 WHERE academic_year_id = $1`,
			id, models.CourseStatusActive); err != nil {
			return nil, fmt.Errorf("activate year offerings: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE course_status SET status = $2 WHERE academic_year_id != $1`,
			id, models.CourseStatusInactive); err != nil {
			return nil, fmt.Errorf("deactivate other offerings: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update year tx: %w", err)
	}
	return &year, nil
}

// Delete removes a year and its course offerings. When the deleted year was
// active, the most recently created remaining year (highest id) is promoted
// to active so the system never idles without a current cycle while other
// years exist. Returns sql.ErrNoRows when the id does not exist.
func (r *AcademicYearRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_status WHERE academic_year_id = $1`, id); err != nil {
		return fmt.Errorf("delete year offerings: %w", err)
	}

	var wasActive bool
	if err = tx.GetContext(ctx, &wasActive, `SELECT active FROM academic_year WHERE academic_year_id = $1`, id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM academic_year WHERE academic_year_id = $1`, id); err != nil {
		return fmt.Errorf("delete year: %w", err)
	}

	if wasActive {
		var latestID int64
		err = tx.GetContext(ctx, &latestID, `SELECT academic_year_id FROM academic_year ORDER BY academic_year_id DESC LIMIT 1`)
		switch err {
		case nil:
			if _, err = tx.ExecContext(ctx, `UPDATE academic_year SET active = TRUE WHERE academic_year_id = $1`, latestID); err != nil {
				return fmt.Errorf("promote replacement year: %w", err)
			}
		case sql.ErrNoRows:
			// no years remain; zero active rows is the expected state
			err = nil
		default:
			return fmt.Errorf("find replacement year: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete year tx: %w", err)
	}
	return nil
}

// FindActive returns the currently active year.
func (r *AcademicYearRepository) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year,
		`SELECT `+academicYearColumns+` FROM academic_year WHERE active = TRUE LIMIT 1`); err != nil {
		return nil, err
	}
	return &year, nil
}

// List returns years ordered by range descending with a total count.
func (r *AcademicYearRepository) List(ctx context.Context, limit, offset int) ([]models.AcademicYear, int, error) {
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years,
		`SELECT `+academicYearColumns+` FROM academic_year ORDER BY year_range DESC LIMIT $1 OFFSET $2`,
		limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list years: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM academic_year`); err != nil {
		return nil, 0, fmt.Errorf("count years: %w", err)
	}

	return years, total, nil
}
