package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
)

// ApplicantRepository handles persistence for applicant accounts.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository instantiates an applicant repository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

const applicantColumns = "applicant_id, full_name, address, contact_number, email, sex, birthdate"

// Create inserts a new applicant and fills in the generated id. The password
// field must already be hashed by the caller.
func (r *ApplicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if err := r.db.GetContext(ctx, &applicant.ID, `
		INSERT INTO applicants (full_name, address, contact_number, email, sex, password, birthdate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING applicant_id`,
		applicant.FullName, applicant.Address, applicant.ContactNumber,
		applicant.Email, applicant.Sex, applicant.PasswordHash, applicant.Birthdate); err != nil {
		return err
	}
	return nil
}

// EmailExists checks whether an applicant with the email is registered.
func (r *ApplicantRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM applicants WHERE email = $1)`, email); err != nil {
		return false, fmt.Errorf("check applicant email: %w", err)
	}
	return exists, nil
}

// FindByEmail loads an applicant with their credential hash for login.
func (r *ApplicantRepository) FindByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant,
		`SELECT `+applicantColumns+`, password FROM applicants WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// FindByID loads an applicant profile (no credential hash).
func (r *ApplicantRepository) FindByID(ctx context.Context, id int64) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant,
		`SELECT `+applicantColumns+` FROM applicants WHERE applicant_id = $1`, id); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// List returns applicants ordered by name with a total count.
func (r *ApplicantRepository) List(ctx context.Context, limit, offset int) ([]models.Applicant, int, error) {
	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants,
		`SELECT `+applicantColumns+` FROM applicants ORDER BY full_name ASC LIMIT $1 OFFSET $2`,
		limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list applicants: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applicants`); err != nil {
		return nil, 0, fmt.Errorf("count applicants: %w", err)
	}

	return applicants, total, nil
}
