package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, name string) (*models.Course, error)
	CreateStatus(ctx context.Context, courseID int64, slots int) error
	Update(ctx context.Context, courseID int64, name string, slots int) error
	Delete(ctx context.Context, courseID int64) error
	List(ctx context.Context, limit, offset int) ([]models.CourseListing, int, error)
	ListActive(ctx context.Context) ([]models.ActiveCourse, error)
	ListWithoutActiveStatus(ctx context.Context) ([]models.Course, error)
}

// CreateCourseRequest describes payload for registering a course.
type CreateCourseRequest struct {
	CourseName string `json:"course_name" validate:"required,min=2,max=150"`
}

// CreateCourseStatusRequest opens an offering in the active academic year.
// Zero slots is a legal offering (closed for direct application).
type CreateCourseStatusRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
	Slots    int   `json:"slots" validate:"gte=0"`
}

// UpdateCourseRequest renames a course and resizes its active offering.
type UpdateCourseRequest struct {
	CourseName string `json:"course_name" validate:"required,min=2,max=150"`
	Slots      int    `json:"slots" validate:"gte=0"`
}

// CourseService orchestrates course and offering workflows.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service instance.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new course in the catalog.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.Create(ctx, req.CourseName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("course_name", course.Name))
	return course, nil
}

// CreateStatus opens an offering for the course in the active academic year.
func (s *CourseService) CreateStatus(ctx context.Context, req CreateCourseStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course status payload")
	}

	if err := s.repo.CreateStatus(ctx, req.CourseID, req.Slots); err != nil {
		if e := appErrors.FromError(err); e.Code != appErrors.ErrInternal.Code {
			return e
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open course offering")
	}
	s.logger.Info("course offering opened", zap.Int64("course_id", req.CourseID), zap.Int("slots", req.Slots))
	return nil
}

// Update renames the course and resizes its active-year offering atomically.
func (s *CourseService) Update(ctx context.Context, courseID int64, req UpdateCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if err := s.repo.Update(ctx, courseID, req.CourseName, req.Slots); err != nil {
		if e := appErrors.FromError(err); e.Code != appErrors.ErrInternal.Code {
			return e
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return nil
}

// Delete removes a course together with all its offerings.
func (s *CourseService) Delete(ctx context.Context, courseID int64) error {
	if err := s.repo.Delete(ctx, courseID); err != nil {
		if e := appErrors.FromError(err); e.Code != appErrors.ErrInternal.Code {
			return e
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.Int64("course_id", courseID))
	return nil
}

// List returns the catalog joined with active-year offerings.
func (s *CourseService) List(ctx context.Context, page models.PageRequest) ([]models.CourseListing, *models.Pagination, error) {
	limit, offset := page.Normalize()
	listings, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return listings, pagination, nil
}

// ListActive returns courses open for application this cycle.
func (s *CourseService) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active courses")
	}
	return courses, nil
}

// ListWithoutActiveStatus returns courses with no offering this cycle.
func (s *CourseService) ListWithoutActiveStatus(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListWithoutActiveStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unopened courses")
	}
	return courses, nil
}
