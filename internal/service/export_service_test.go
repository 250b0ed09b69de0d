package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/jobs"
	"github.com/rmonteclaro/admission-api/pkg/storage"
)

type mockExportRows struct {
	rows []models.AdmissionExportRow
	err  error
}

func (m *mockExportRows) ListForExport(ctx context.Context, admissionRecordID int64) ([]models.AdmissionExportRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func newExportFixture(t *testing.T, rows []models.AdmissionExportRow) *ExportService {
	t.Helper()
	store, err := storage.NewExportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(&mockExportRows{rows: rows}, store, signer, ExportQueueConfig{Workers: 1}, zap.NewNop())
}

func sampleExportRows() []models.AdmissionExportRow {
	contact := "09171234567"
	return []models.AdmissionExportRow{
		{
			ApplicationID: 4,
			FullName:      "Jane Cruz",
			Date:          time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Email:         "jane@example.com",
			Address:       "Quezon City",
			ContactNumber: &contact,
			Sex:           "Female",
			Birthdate:     time.Date(2006, 1, 15, 0, 0, 0, 0, time.UTC),
			CourseName:    "BS Biology",
			AcademicYear:  "2024-2025",
			Type:          models.OutcomePassed,
		},
	}
}

func TestExportRequestRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t, sampleExportRows())

	_, err := svc.Request(context.Background(), 21, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportHandleRendersAndSigns(t *testing.T) {
	svc := newExportFixture(t, sampleExportRows())

	job := &ExportJob{ID: "job-1", AdmissionRecordID: 21, Format: ExportFormatCSV, Status: ExportStatusPending}
	svc.mu.Lock()
	svc.jobsTbl[job.ID] = job
	svc.mu.Unlock()

	err := svc.handle(context.Background(), jobs.Job{
		ID:      job.ID,
		Type:    "admission-list-export",
		Payload: exportPayload{admissionRecordID: 21, format: ExportFormatCSV},
	})
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusCompleted, status.Status)
	assert.NotEmpty(t, status.DownloadToken)

	file, contentType, err := svc.Resolve(context.Background(), status.DownloadToken)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "text/csv", contentType)
}

func TestExportHandleFailsOnEmptyRecord(t *testing.T) {
	svc := newExportFixture(t, nil)

	job := &ExportJob{ID: "job-2", AdmissionRecordID: 22, Format: ExportFormatPDF, Status: ExportStatusPending}
	svc.mu.Lock()
	svc.jobsTbl[job.ID] = job
	svc.mu.Unlock()

	err := svc.handle(context.Background(), jobs.Job{
		ID:      job.ID,
		Payload: exportPayload{admissionRecordID: 22, format: ExportFormatPDF},
	})
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusFailed, status.Status)
	assert.NotEmpty(t, status.Error)
}

func TestExportHandleMarksRetryingOnTransientFailure(t *testing.T) {
	repo := &mockExportRows{err: errors.New("connection reset")}
	store, err := storage.NewExportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(repo, store, signer, ExportQueueConfig{Workers: 1}, zap.NewNop())

	job := &ExportJob{ID: "job-3", AdmissionRecordID: 23, Format: ExportFormatCSV, Status: ExportStatusPending}
	svc.mu.Lock()
	svc.jobsTbl[job.ID] = job
	svc.mu.Unlock()

	payload := exportPayload{admissionRecordID: 23, format: ExportFormatCSV}
	require.Error(t, svc.handle(context.Background(), jobs.Job{ID: job.ID, Payload: payload}))

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusRetrying, status.Status)
	assert.NotEmpty(t, status.Error)

	// a later attempt that succeeds completes the job and clears the error
	repo.err = nil
	repo.rows = sampleExportRows()
	require.NoError(t, svc.handle(context.Background(), jobs.Job{ID: job.ID, Payload: payload, Attempt: 1}))

	status, err = svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ExportStatusCompleted, status.Status)
	assert.Empty(t, status.Error)
	assert.NotEmpty(t, status.DownloadToken)
}

func TestExportStatusUnknownJob(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBuildExportDataset(t *testing.T) {
	dataset := buildExportDataset(sampleExportRows())
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "Jane Cruz", dataset.Rows[0]["Full Name"])
	assert.Equal(t, "Passed", dataset.Rows[0]["Result"])
	assert.Equal(t, "2024-2025", dataset.Rows[0]["Academic Year"])
}
