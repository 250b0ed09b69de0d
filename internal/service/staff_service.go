package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/pkg/database"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type staffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.Staff, int, error)
}

// CreateStaffRequest carries a new staff account payload.
type CreateStaffRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Sex      string `json:"sex" validate:"required,oneof=Male Female"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateStaffRequest modifies a staff account. A blank password keeps the
// existing credential.
type UpdateStaffRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Sex      string `json:"sex" validate:"required,oneof=Male Female"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// StaffService manages staff accounts; only the super admin reaches it.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates a new staff service instance.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// Create adds a staff account with a bcrypt-hashed credential.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	staff := &models.Staff{
		FullName:     req.FullName,
		Sex:          req.Sex,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		if database.IsUniqueViolation(err, database.ConstraintStaffEmail) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff")
	}

	s.logger.Info("staff created", zap.Int64("staff_id", staff.ID))
	return staff, nil
}

// Update modifies a staff account, rehashing the password only when one is
// supplied.
func (s *StaffService) Update(ctx context.Context, id int64, req UpdateStaffRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	staff := &models.Staff{
		ID:       id,
		FullName: req.FullName,
		Sex:      req.Sex,
		Email:    req.Email,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		staff.PasswordHash = string(hash)
	}

	ok, err := s.repo.Update(ctx, staff)
	if err != nil {
		if database.IsUniqueViolation(err, database.ConstraintStaffEmail) {
			return appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "staff not found")
	}
	return nil
}

// Delete removes a staff account.
func (s *StaffService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete staff")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "staff not found")
	}
	s.logger.Info("staff deleted", zap.Int64("staff_id", id))
	return nil
}

// List returns staff accounts with pagination metadata.
func (s *StaffService) List(ctx context.Context, page models.PageRequest) ([]models.Staff, *models.Pagination, error) {
	limit, offset := page.Normalize()
	staffs, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staffs")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return staffs, pagination, nil
}
