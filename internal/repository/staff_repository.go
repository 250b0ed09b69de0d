package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rmonteclaro/admission-api/internal/models"
)

// StaffRepository handles persistence for staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository instantiates a staff repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a new staff account and fills in the generated id.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if err := r.db.GetContext(ctx, &staff.ID, `
		INSERT INTO staffs (full_name, sex, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING staff_id`,
		staff.FullName, staff.Sex, staff.Email, staff.PasswordHash); err != nil {
		return err
	}
	return nil
}

// Update modifies a staff account. An empty password hash leaves the stored
// credential untouched. Returns false when the id does not exist.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) (bool, error) {
	var (
		res interface {
			RowsAffected() (int64, error)
		}
		err error
	)
	if staff.PasswordHash != "" {
		res, err = r.db.ExecContext(ctx, `
			UPDATE staffs SET full_name = $1, sex = $2, email = $3, password = $4
			WHERE staff_id = $5`,
			staff.FullName, staff.Sex, staff.Email, staff.PasswordHash, staff.ID)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE staffs SET full_name = $1, sex = $2, email = $3
			WHERE staff_id = $4`,
			staff.FullName, staff.Sex, staff.Email, staff.ID)
	}
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update staff result: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a staff account. Returns false when the id does not exist.
func (r *StaffRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staffs WHERE staff_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete staff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete staff result: %w", err)
	}
	return affected > 0, nil
}

// FindByEmail loads a staff account with its credential hash for login.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff,
		`SELECT staff_id, full_name, sex, email, password FROM staffs WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns staff accounts ordered by name descending with a total count.
func (r *StaffRepository) List(ctx context.Context, limit, offset int) ([]models.Staff, int, error) {
	var staffs []models.Staff
	if err := r.db.SelectContext(ctx, &staffs,
		`SELECT staff_id, full_name, email, sex FROM staffs ORDER BY full_name DESC LIMIT $1 OFFSET $2`,
		limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list staffs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM staffs`); err != nil {
		return nil, 0, fmt.Errorf("count staffs: %w", err)
	}

	return staffs, total, nil
}
