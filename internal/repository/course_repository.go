package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/pkg/database"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

// CourseRepository handles persistence for courses and their per-year
// offerings. Cross-row rules (one offering per active year, status cascades)
// run inside transactions here; the unique constraint backstops the race.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, name string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course,
		`INSERT INTO courses (course_name) VALUES ($1) RETURNING course_id, course_name`, name); err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	return &course, nil
}

// CreateStatus opens an offering for the course in the active academic year
// and marks the course's other-year offerings INACTIVE. Fails with
// ErrNoActiveYear when no year is active and with Conflict when an offering
// already exists for (course, active year) - including the case where a
// concurrent insert wins the race and the unique constraint fires.
func (r *CourseRepository) CreateStatus(ctx context.Context, courseID int64, slots int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create offering tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var activeYearID int64
	if err = tx.GetContext(ctx, &activeYearID,
		`SELECT academic_year_id FROM academic_year WHERE active = TRUE LIMIT 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNoActiveYear, "no active academic year")
		}
		return err
	}

	var existingID int64
	err = tx.GetContext(ctx, &existingID,
		`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2 LIMIT 1`,
		courseID, activeYearID)
	switch {
	case err == nil:
		err = appErrors.Clone(appErrors.ErrConflict, "course status already exists for the active academic year")
		return err
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check existing offering: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO course_status (course_id, academic_year_id, slots, status) VALUES ($1, $2, $3, $4)`,
		courseID, activeYearID, slots, models.CourseStatusActive); err != nil {
		if database.IsUniqueViolation(err, database.ConstraintCourseStatusPerYear) {
			err = appErrors.Clone(appErrors.ErrConflict, "course status already exists for the active academic year")
		}
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE course_status SET status = $3 WHERE course_id = $1 AND academic_year_id != $2`,
		courseID, activeYearID, models.CourseStatusInactiveLegacy); err != nil {
		return fmt.Errorf("retire prior offerings: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create offering tx: %w", err)
	}
	return nil
}

// Update renames the course and adjusts the active-year offering's slots as
// one atomic unit; when either row is missing the rename is rolled back too.
func (r *CourseRepository) Update(ctx context.Context, courseID int64, name string, slots int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update course tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE courses SET course_name = $2 WHERE course_id = $1`, courseID, name)
	if err != nil {
		return fmt.Errorf("rename course: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = appErrors.Clone(appErrors.ErrNotFound, "course not found")
		return err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE course_status SET slots = $2
		WHERE course_id = $1
		  AND academic_year_id = (SELECT academic_year_id FROM academic_year WHERE active = TRUE LIMIT 1)`,
		courseID, slots)
	if err != nil {
		return fmt.Errorf("update offering slots: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = appErrors.Clone(appErrors.ErrNotFound, "no course status found for the active academic year")
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update course tx: %w", err)
	}
	return nil
}

// Delete removes the course with all its offerings. The offering delete is a
// no-op when none exist; a missing course row yields NotFound.
func (r *CourseRepository) Delete(ctx context.Context, courseID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM course_status WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete offerings: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE course_id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = appErrors.Clone(appErrors.ErrNotFound, "course not found")
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete course tx: %w", err)
	}
	return nil
}

// List returns courses joined with their active-year offering (nil fields for
// courses without one), ordered by name, with a total count.
func (r *CourseRepository) List(ctx context.Context, limit, offset int) ([]models.CourseListing, int, error) {
	const base = `
		FROM courses c
		LEFT JOIN course_status cs ON c.course_id = cs.course_id
		LEFT JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id
		WHERE ay.active = TRUE OR cs.academic_year_id IS NULL`

	var listings []models.CourseListing
	if err := r.db.SelectContext(ctx, &listings,
		`SELECT c.course_id, c.course_name, cs.course_status_id, cs.slots `+base+`
		ORDER BY c.course_name ASC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) `+base); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return listings, total, nil
}

// ListActive returns courses with a confirmed offering in the active year.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	var courses []models.ActiveCourse
	if err := r.db.SelectContext(ctx, &courses, `
		SELECT c.course_id, c.course_name, cs.course_status_id, cs.slots
		FROM courses c
		JOIN course_status cs ON c.course_id = cs.course_id
		JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id
		WHERE ay.active = TRUE
		ORDER BY c.course_name ASC`); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// ListWithoutActiveStatus returns courses lacking an offering in the active
// year, used by the "open offering" picker.
func (r *CourseRepository) ListWithoutActiveStatus(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, `
		WITH active_academic_year AS (
			SELECT academic_year_id FROM academic_year WHERE active = TRUE LIMIT 1
		)
		SELECT c.course_id, c.course_name
		FROM courses c
		LEFT JOIN course_status cs
			ON c.course_id = cs.course_id
			AND cs.academic_year_id = (SELECT academic_year_id FROM active_academic_year)
		WHERE cs.course_status_id IS NULL`); err != nil {
		return nil, fmt.Errorf("list unopened courses: %w", err)
	}
	return courses, nil
}
