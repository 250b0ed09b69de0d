package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/pkg/database"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

// ApplicationRepository handles persistence for applications and batch
// promotions into admission records.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository instantiates an application repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create submits an application for the active academic year's offering of
// the course. Fails with ErrNoActiveYear when no year is active, NotFound
// when the course has no offering this year, and Conflict when the applicant
// already has an application (unique constraint on applicant_id).
func (r *ApplicationRepository) Create(ctx context.Context, applicantID, courseID int64, docOneExt, docTwoExt string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create application tx: %w", err)
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

	var courseStatusID int64
	if err = tx.GetContext(ctx, &courseStatusID,
		`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2 LIMIT 1`,
		courseID, activeYearID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "no course status found for this course in the current academic year")
		}
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO applications (applicant_id, course_status_id, application_status, application_date, document_one_ext, document_two_ext)
		VALUES ($1, $2, $3, CURRENT_DATE, $4, $5)`,
		applicantID, courseStatusID, models.ApplicationPending, docOneExt, docTwoExt); err != nil {
		if database.IsUniqueViolation(err, database.ConstraintApplicationPerApplicant) {
			err = appErrors.Clone(appErrors.ErrConflict, "an application already exists for this applicant")
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create application tx: %w", err)
	}
	return nil
}

// Summary returns the minimal existence-check projection for an applicant, or
// sql.ErrNoRows when none exists.
func (r *ApplicationRepository) Summary(ctx context.Context, applicantID int64) (*models.ApplicationSummary, error) {
	var summary models.ApplicationSummary
	if err := r.db.GetContext(ctx, &summary, `
		SELECT a.application_id, a.application_status, a.application_date, c.course_name
		FROM applications a
		INNER JOIN course_status cs ON a.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		WHERE a.applicant_id = $1
		LIMIT 1`, applicantID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FindByApplicant returns the applicant's own application view.
func (r *ApplicationRepository) FindByApplicant(ctx context.Context, applicantID int64) (*models.ApplicantApplication, error) {
	var app models.ApplicantApplication
	if err := r.db.GetContext(ctx, &app, `
		SELECT a.application_id, a.application_status, a.application_date,
		       a.schedule_start, a.schedule_end, a.remarks,
		       c.course_name, ay.year_range AS academic_year
		FROM applications a
		INNER JOIN course_status cs ON a.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		INNER JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id
		WHERE a.applicant_id = $1
		ORDER BY a.application_date DESC
		LIMIT 1`, applicantID); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByCourseStatus returns applications for one offering ordered by
// application date descending, optionally filtered to a single status.
func (r *ApplicationRepository) ListByCourseStatus(ctx context.Context, courseStatusID int64, status *models.ApplicationStatus, limit, offset int) ([]models.ApplicationRow, int, error) {
	base := `FROM applications a
		INNER JOIN applicants ap ON a.applicant_id = ap.applicant_id
		WHERE a.course_status_id = $1`
	args := []interface{}{courseStatusID}
	if status != nil {
		base += fmt.Sprintf(" AND a.application_status = $%d", len(args)+1)
		args = append(args, *status)
	}

	query := fmt.Sprintf(`
		SELECT a.application_id, a.applicant_id, ap.full_name, a.application_status,
		       a.application_date, a.remarks, a.schedule_start, a.schedule_end,
		       a.document_one_ext, a.document_two_ext
		%s
		ORDER BY a.application_date DESC LIMIT $%d OFFSET $%d`, base, len(args)+1, len(args)+2)

	var rows []models.ApplicationRow
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return rows, total, nil
}

// UpdateSchedule sets the interview window and forces the status to
// Scheduled. Idempotent; repeated calls keep the latest window. Returns
// false when the application does not exist.
func (r *ApplicationRepository) UpdateSchedule(ctx context.Context, applicationID int64, start, end time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET schedule_start = $1, schedule_end = $2, application_status = $3
		WHERE application_id = $4`,
		start, end, models.ApplicationScheduled, applicationID)
	if err != nil {
		return false, fmt.Errorf("update schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update schedule result: %w", err)
	}
	return affected > 0, nil
}

// UpdateRemarks sets remarks without touching status. Returns false when the
// application does not exist.
func (r *ApplicationRepository) UpdateRemarks(ctx context.Context, applicationID int64, remarks string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET remarks = $2 WHERE application_id = $1`, applicationID, remarks)
	if err != nil {
		return false, fmt.Errorf("update remarks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update remarks result: %w", err)
	}
	return affected > 0, nil
}

// Promote creates one admission record for the offering and outcome, then
// moves every listed application to that outcome and links it to the record.
// All-or-nothing: a failure at any step leaves no record and no status change.
func (r *ApplicationRepository) Promote(ctx context.Context, applicationIDs []int64, outcome models.AdmissionOutcome, courseStatusID int64) (*models.AdmissionRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin promote tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var record models.AdmissionRecord
	err = tx.GetContext(ctx, &record, `
		INSERT INTO admission_records (course_status_id, type)
		VALUES ($1, $2)
		RETURNING admission_record_id, course_status_id, type, created_at`,
		courseStatusID, outcome)
	if err != nil {
		return nil, fmt.Errorf("insert admission record: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE applications
		SET application_status = $1, admission_record_id = $2
		WHERE application_id = ANY($3)`,
		outcome.Status(), record.ID, pq.Array(applicationIDs)); err != nil {
		return nil, fmt.Errorf("promote applications: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit promote tx: %w", err)
	}
	return &record, nil
}

// ListForExport returns every application of an admission record with course,
// year and outcome denormalised, ordered by application date descending.
func (r *ApplicationRepository) ListForExport(ctx context.Context, admissionRecordID int64) ([]models.AdmissionExportRow, error) {
	var rows []models.AdmissionExportRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT a.application_id, ap.full_name, a.application_date, ap.email, ap.address,
		       ap.contact_number, ap.sex, ap.birthdate,
		       c.course_name, ay.year_range AS academic_year, ar.type
		FROM applications a
		INNER JOIN admission_records ar ON a.admission_record_id = ar.admission_record_id
		INNER JOIN course_status cs ON ar.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		INNER JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id
		INNER JOIN applicants ap ON a.applicant_id = ap.applicant_id
		WHERE ar.admission_record_id = $1
		ORDER BY a.application_date DESC`, admissionRecordID); err != nil {
		return nil, fmt.Errorf("list export rows: %w", err)
	}
	return rows, nil
}
