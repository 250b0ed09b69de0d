package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
)

// AdmissionRepository serves read-only projections over admission records.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository instantiates an admission repository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// List returns admission records with course and year denormalised, newest
// first, with a total count.
func (r *AdmissionRepository) List(ctx context.Context, limit, offset int) ([]models.AdmissionListRow, int, error) {
	const base = `
		FROM admission_records ar
		INNER JOIN course_status cs ON ar.course_status_id = cs.course_status_id
		INNER JOIN courses c ON cs.course_id = c.course_id
		INNER JOIN academic_year ay ON cs.academic_year_id = ay.academic_year_id`

	var rows []models.AdmissionListRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT ar.admission_record_id, ar.type, ar.created_at,
		       c.course_name, ay.year_range AS academic_year
		`+base+`
		ORDER BY ar.created_at DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list admissions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) `+base); err != nil {
		return nil, 0, fmt.Errorf("count admissions: %w", err)
	}

	return rows, total, nil
}

// ListApplications returns the applicant rows inside one admission record,
// ordered by application date descending, with a total count.
func (r *AdmissionRepository) ListApplications(ctx context.Context, admissionRecordID int64, limit, offset int) ([]models.AdmissionApplicationRow, int, error) {
	var rows []models.AdmissionApplicationRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT a.application_id, ap.full_name, a.application_date, ap.email,
		       ap.address, ap.contact_number, ap.sex, ap.birthdate
		FROM applications a
		INNER JOIN admission_records ar ON a.admission_record_id = ar.admission_record_id
		INNER JOIN applicants ap ON a.applicant_id = ap.applicant_id
		WHERE ar.admission_record_id = $1
		ORDER BY a.application_date DESC
		LIMIT $2 OFFSET $3`, admissionRecordID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list admission applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*)
		FROM applications a
		WHERE a.admission_record_id = $1`, admissionRecordID); err != nil {
		return nil, 0, fmt.Errorf("count admission applications: %w", err)
	}

	return rows, total, nil
}
