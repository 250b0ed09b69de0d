package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/pkg/database"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type applicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Applicant, error)
	List(ctx context.Context, limit, offset int) ([]models.Applicant, int, error)
}

// RegisterApplicantRequest carries self-registration payload.
type RegisterApplicantRequest struct {
	FullName      string    `json:"full_name" validate:"required,min=2,max=150"`
	Address       string    `json:"address" validate:"required,max=250"`
	ContactNumber *string   `json:"contact_number" validate:"omitempty,max=20"`
	Email         string    `json:"email" validate:"required,email"`
	Sex           string    `json:"sex" validate:"required,oneof=Male Female"`
	Password      string    `json:"password" validate:"required,min=8,max=72"`
	Birthdate     time.Time `json:"birthdate" validate:"required"`
}

// ApplicantService handles applicant registration and profiles.
type ApplicantService struct {
	repo      applicantRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicantService creates a new applicant service instance.
func NewApplicantService(repo applicantRepository, validate *validator.Validate, logger *zap.Logger) *ApplicantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{repo: repo, validator: validate, logger: logger}
}

// Register creates a new applicant account with a bcrypt-hashed credential.
func (s *ApplicantService) Register(ctx context.Context, req RegisterApplicantRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	applicant := &models.Applicant{
		FullName:      req.FullName,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Sex:           req.Sex,
		PasswordHash:  string(hash),
		Birthdate:     req.Birthdate,
	}

	if err := s.repo.Create(ctx, applicant); err != nil {
		if database.IsUniqueViolation(err, database.ConstraintApplicantEmail) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create applicant")
	}

	s.logger.Info("applicant registered", zap.Int64("applicant_id", applicant.ID))
	return applicant, nil
}

// Get returns one applicant profile.
func (s *ApplicantService) Get(ctx context.Context, id int64) (*models.Applicant, error) {
	applicant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}
	return applicant, nil
}

// List returns applicants ordered by name with pagination metadata.
func (s *ApplicantService) List(ctx context.Context, page models.PageRequest) ([]models.Applicant, *models.Pagination, error) {
	limit, offset := page.Normalize()
	applicants, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return applicants, pagination, nil
}
