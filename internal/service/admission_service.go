package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type admissionRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.AdmissionListRow, int, error)
	ListApplications(ctx context.Context, admissionRecordID int64, limit, offset int) ([]models.AdmissionApplicationRow, int, error)
}

// AdmissionService serves read views over recorded admission batches.
type AdmissionService struct {
	repo   admissionRepository
	logger *zap.Logger
}

// NewAdmissionService creates a new admission service instance.
func NewAdmissionService(repo admissionRepository, logger *zap.Logger) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{repo: repo, logger: logger}
}

// List returns admission records newest first.
func (s *AdmissionService) List(ctx context.Context, page models.PageRequest) ([]models.AdmissionListRow, *models.Pagination, error) {
	limit, offset := page.Normalize()
	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admission records")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return rows, pagination, nil
}

// ListApplications returns the applications grouped under one admission record.
func (s *AdmissionService) ListApplications(ctx context.Context, admissionRecordID int64, page models.PageRequest) ([]models.AdmissionApplicationRow, *models.Pagination, error) {
	if admissionRecordID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "admission_record_id is required")
	}

	limit, offset := page.Normalize()
	rows, total, err := s.repo.ListApplications(ctx, admissionRecordID, limit, offset)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admission applications")
	}

	pagination := &models.Pagination{
		Page:       offset/limit + 1,
		PageSize:   limit,
		TotalCount: total,
	}
	return rows, pagination, nil
}
