package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, applicantID, courseID int64, docOneExt, docTwoExt string) error
	Summary(ctx context.Context, applicantID int64) (*models.ApplicationSummary, error)
	FindByApplicant(ctx context.Context, applicantID int64) (*models.ApplicantApplication, error)
	ListByCourseStatus(ctx context.Context, courseStatusID int64, status *models.ApplicationStatus, limit, offset int) ([]models.ApplicationRow, int, error)
	UpdateSchedule(ctx context.Context, applicationID int64, start, end time.Time) (bool, error)
	UpdateRemarks(ctx context.Context, applicationID int64, remarks string) (bool, error)
	Promote(ctx context.Context, applicationIDs []int64, outcome models.AdmissionOutcome, courseStatusID int64) (*models.AdmissionRecord, error)
}

// SubmitApplicationRequest carries a new submission. Document extensions come
// from the upload pipeline, not from the client.
type SubmitApplicationRequest struct {
	CourseID       int64  `json:"course_id" validate:"required,gt=0"`
	DocumentOneExt string `json:"-" validate:"required"`
	DocumentTwoExt string `json:"-" validate:"required"`
}

// ScheduleRequest sets the interview window for one application.
type ScheduleRequest struct {
	ScheduleStart time.Time `json:"schedule_start" validate:"required"`
	ScheduleEnd   time.Time `json:"schedule_end" validate:"required"`
}

// RemarksRequest attaches staff remarks to one application.
type RemarksRequest struct {
	Remarks string `json:"remarks" validate:"required,max=500"`
}

// PromoteRequest records one batch outcome for a set of applications.
type PromoteRequest struct {
	ApplicationIDs []int64                 `json:"application_ids" validate:"required,min=1,dive,gt=0"`
	Type           models.AdmissionOutcome `json:"type" validate:"required"`
	CourseStatusID int64                   `json:"course_status_id" validate:"required,gt=0"`
}

// ApplicationListFilter scopes the staff list view to one offering.
type ApplicationListFilter struct {
	CourseStatusID int64
	Status         *models.ApplicationStatus
	Page           models.PageRequest
}

// ApplicationService orchestrates the application lifecycle from submission
// through scheduling to batch outcome recording.
type ApplicationService struct {
	repo      applicationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService creates a new application service instance.
func NewApplicationService(repo applicationRepository, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, validator: validate, logger: logger}
}

// Submit files an application for the applicant. One application per
// applicant: a friendly pre-check catches the common duplicate, the unique
// constraint catches the race.
func (s *ApplicationService) Submit(ctx context.Context, applicantID int64, req SubmitApplicationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	if _, err := s.repo.Summary(ctx, applicantID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "an application already exists for this applicant")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}

	if err := s.repo.Create(ctx, applicantID, req.CourseID, req.DocumentOneExt, req.DocumentTwoExt); err != nil {
		if e := appErrors.FromError(err); e.Code != appErrors.ErrInternal.Code {
			return e
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit application")
	}

	s.logger.Info("application submitted",
		zap.Int64("applicant_id", applicantID),
		zap.Int64("course_id", req.CourseID))
	return nil
}

// Summary returns the applicant's minimal application view, or NotFound when
// none has been submitted.
func (s *ApplicationService) Summary(ctx context.Context, applicantID int64) (*models.ApplicationSummary, error) {
	summary, err := s.repo.Summary(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no application found for this applicant")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application summary")
	}
	return summary, nil
}

// Exists reports whether the applicant has already submitted an application.
func (s *ApplicationService) Exists(ctx context.Context, applicantID int64) (bool, error) {
	_, err := s.repo.Summary(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check application existence")
	}
	return true, nil
}

// GetOwn returns the applicant's full view of their submission.
func (s *ApplicationService) GetOwn(ctx context.Context, applicantID int64) (*models.ApplicantApplication, error) {
	app, err := s.repo.FindByApplicant(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no application found for this applicant")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// List returns applications for one offering, optionally filtered by status.
func (s *ApplicationService) List(ctx context.Context, filter ApplicationListFilter) ([]models.ApplicationRow, *models.Pagination, error) {
	if filter.CourseStatusID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "course_status_id is required")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status filter")
	}

	limit, offset := filter.Page.Normalize()
	rows, total, err := s.repo.ListByCourseStatus(ctx, filter.CourseStatusID, filter.Status, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return rows, pagination, nil
}

// Schedule sets the interview window and moves the application to Scheduled.
// Re-scheduling simply replaces the previous window.
func (s *ApplicationService) Schedule(ctx context.Context, applicationID int64, req ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if !req.ScheduleStart.Before(req.ScheduleEnd) {
		return appErrors.Clone(appErrors.ErrValidation, "schedule_start must be before schedule_end")
	}

	ok, err := s.repo.UpdateSchedule(ctx, applicationID, req.ScheduleStart, req.ScheduleEnd)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule application")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	return nil
}

// Remarks attaches staff remarks to an application.
func (s *ApplicationService) Remarks(ctx context.Context, applicationID int64, req RemarksRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid remarks payload")
	}

	ok, err := s.repo.UpdateRemarks(ctx, applicationID, req.Remarks)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update remarks")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	return nil
}

// Promote records one batch outcome: a single admission record is created and
// every listed application moves to the matching terminal status.
func (s *ApplicationService) Promote(ctx context.Context, req PromoteRequest) (*models.AdmissionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promote payload")
	}
	if len(req.ApplicationIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "application_ids must not be empty")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Passed, NotPassed or NoShow")
	}

	record, err := s.repo.Promote(ctx, req.ApplicationIDs, req.Type, req.CourseStatusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record admission outcome")
	}

	s.logger.Info("admission outcome recorded",
		zap.Int64("admission_record_id", record.ID),
		zap.String("type", string(record.Type)),
		zap.Int("applications", len(req.ApplicationIDs)))
	return record, nil
}
