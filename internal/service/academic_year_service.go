package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type academicYearRepository interface {
	Create(ctx context.Context, yearRange string, active bool) (*models.AcademicYear, error)
	Update(ctx context.Context, id int64, yearRange string, active bool) (*models.AcademicYear, error)
	Delete(ctx context.Context, id int64) error
	FindActive(ctx context.Context) (*models.AcademicYear, error)
	List(ctx context.Context, limit, offset int) ([]models.AcademicYear, int, error)
}

// yearRangePattern matches the canonical "YYYY-YYYY" cycle label.
var yearRangePattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// CreateAcademicYearRequest describes payload for opening an admission cycle.
type CreateAcademicYearRequest struct {
	YearRange string `json:"year_range" validate:"required"`
	Active    bool   `json:"active"`
}

// UpdateAcademicYearRequest modifies a cycle's label or active flag.
type UpdateAcademicYearRequest struct {
	YearRange string `json:"year_range" validate:"required"`
	Active    bool   `json:"active"`
}

// AcademicYearService orchestrates admission cycle workflows.
type AcademicYearService struct {
	repo      academicYearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService creates a new academic year service instance.
func NewAcademicYearService(repo academicYearRepository, validate *validator.Validate, logger *zap.Logger) *AcademicYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{repo: repo, validator: validate, logger: logger}
}

// Create opens a new academic year; activating it deactivates every other one.
func (s *AcademicYearService) Create(ctx context.Context, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if !yearRangePattern.MatchString(req.YearRange) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year_range must look like 2024-2025")
	}

	year, err := s.repo.Create(ctx, req.YearRange, req.Active)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}

	s.logger.Info("academic year created",
		zap.Int64("academic_year_id", year.ID),
		zap.String("year_range", year.YearRange),
		zap.Bool("active", year.Active))
	return year, nil
}

// Update modifies a cycle; activating it also cascades to course offerings.
func (s *AcademicYearService) Update(ctx context.Context, id int64, req UpdateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if !yearRangePattern.MatchString(req.YearRange) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year_range must look like 2024-2025")
	}

	year, err := s.repo.Update(ctx, id, req.YearRange, req.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}
	return year, nil
}

// Delete removes a cycle and its offerings; deleting the active cycle promotes
// the most recently created remaining one.
func (s *AcademicYearService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic year")
	}
	s.logger.Info("academic year deleted", zap.Int64("academic_year_id", id))
	return nil
}

// GetActive returns the currently active cycle.
func (s *AcademicYearService) GetActive(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoActiveYear, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}
	return year, nil
}

// List returns cycles newest range first with pagination metadata.
func (s *AcademicYearService) List(ctx context.Context, page models.PageRequest) ([]models.AcademicYear, *models.Pagination, error) {
	limit, offset := page.Normalize()
	years, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return years, pagination, nil
}
