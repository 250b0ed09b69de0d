package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/export"
	"github.com/rmonteclaro/admission-api/pkg/jobs"
)

type exportRowsRepository interface {
	ListForExport(ctx context.Context, admissionRecordID int64) ([]models.AdmissionExportRow, error)
}

type exportFileStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type exportSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (jobID, relPath string, expiresAt time.Time, err error)
}

// Export formats accepted by the download endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportJobStatus values. Retrying covers transient render failures still
// being re-attempted by the queue; failed is terminal.
const (
	ExportStatusPending   = "pending"
	ExportStatusRetrying  = "retrying"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ExportJob tracks one admission-list render from request to download.
type ExportJob struct {
	ID                string     `json:"id"`
	AdmissionRecordID int64      `json:"admission_record_id"`
	Format            string     `json:"format"`
	Status            string     `json:"status"`
	FileName          string     `json:"file_name,omitempty"`
	DownloadToken     string     `json:"download_token,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	Error             string     `json:"error,omitempty"`
	RequestedAt       time.Time  `json:"requested_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

type exportPayload struct {
	admissionRecordID int64
	format            string
}

// ExportService renders admission lists to CSV or PDF off the request path
// and hands back signed download tokens. Job state is in-memory; a restart
// forgets unfinished jobs, which matches the ephemeral nature of exports.
type ExportService struct {
	repo   exportRowsRepository
	store  exportFileStore
	signer exportSigner
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	queue  *jobs.Queue
	logger *zap.Logger

	mu      sync.RWMutex
	jobsTbl map[string]*ExportJob

	metrics *MetricsService
}

// ExportQueueConfig tunes the backing worker pool.
type ExportQueueConfig struct {
	Workers    int
	MaxRetries int
}

// NewExportService creates the export service and its worker queue. Call
// Start before enqueueing and Stop on shutdown.
func NewExportService(repo exportRowsRepository, store exportFileStore, signer exportSigner, cfg ExportQueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		repo:    repo,
		store:   store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		jobsTbl: make(map[string]*ExportJob),
	}
	s.queue = jobs.NewQueue("admission-exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		OnGiveUp: func(job jobs.Job, cause error) {
			s.fail(job.ID, cause)
		},
		Logger: logger,
	})
	return s
}

// SetMetrics attaches export outcome counters. Optional.
func (s *ExportService) SetMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request enqueues an admission-list export and returns the pending job.
func (s *ExportService) Request(ctx context.Context, admissionRecordID int64, format string) (*ExportJob, error) {
	if admissionRecordID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admission_record_id is required")
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &ExportJob{
		ID:                uuid.NewString(),
		AdmissionRecordID: admissionRecordID,
		Format:            format,
		Status:            ExportStatusPending,
		RequestedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobsTbl[job.ID] = job
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    "admission-list-export",
		Payload: exportPayload{admissionRecordID: admissionRecordID, format: format},
	})
	if err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	s.logger.Info("export requested",
		zap.String("job_id", job.ID),
		zap.Int64("admission_record_id", admissionRecordID),
		zap.String("format", format))
	return s.snapshot(job.ID), nil
}

// Status returns the current state of one export job.
func (s *ExportService) Status(_ context.Context, jobID string) (*ExportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Resolve validates a signed download token and opens the rendered file.
func (s *ExportService) Resolve(_ context.Context, token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}

	contentType := "text/csv"
	if len(relPath) > 4 && relPath[len(relPath)-4:] == ".pdf" {
		contentType = "application/pdf"
	}
	return file, contentType, nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		s.fail(job.ID, fmt.Errorf("unexpected payload type %T", job.Payload))
		return nil
	}

	rows, err := s.repo.ListForExport(ctx, payload.admissionRecordID)
	if err != nil {
		s.retrying(job.ID, err)
		return err
	}
	if len(rows) == 0 {
		s.fail(job.ID, fmt.Errorf("admission record %d has no applications", payload.admissionRecordID))
		return nil
	}

	dataset := buildExportDataset(rows)

	var rendered []byte
	switch payload.format {
	case ExportFormatPDF:
		title := fmt.Sprintf("Admission List - %s (%s)", rows[0].CourseName, rows[0].AcademicYear)
		rendered, err = s.pdf.Render(dataset, title)
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.retrying(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s.%s", job.ID, payload.format)
	if _, err := s.store.Save(filename, rendered); err != nil {
		s.retrying(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, filename)
	if err != nil {
		s.retrying(job.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if tracked, ok := s.jobsTbl[job.ID]; ok {
		tracked.Status = ExportStatusCompleted
		tracked.FileName = filename
		tracked.DownloadToken = token
		tracked.ExpiresAt = &expiresAt
		tracked.CompletedAt = &now
		tracked.Error = ""
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordExportJob(ExportStatusCompleted)
	}
	s.logger.Info("export completed", zap.String("job_id", job.ID), zap.String("file", filename))
	return nil
}

// retrying records a transient failure while the queue still owns the job.
func (s *ExportService) retrying(jobID string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobsTbl[jobID]; ok {
		job.Status = ExportStatusRetrying
		job.Error = cause.Error()
	}
}

func (s *ExportService) fail(jobID string, cause error) {
	s.mu.Lock()
	if job, ok := s.jobsTbl[jobID]; ok {
		job.Status = ExportStatusFailed
		job.Error = cause.Error()
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordExportJob(ExportStatusFailed)
	}
}

func (s *ExportService) snapshot(jobID string) *ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsTbl[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

var exportHeaders = []string{
	"Application ID", "Full Name", "Email", "Sex", "Birthdate",
	"Contact Number", "Address", "Application Date", "Course", "Academic Year", "Result",
}

func buildExportDataset(rows []models.AdmissionExportRow) export.Dataset {
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		contact := ""
		if row.ContactNumber != nil {
			contact = *row.ContactNumber
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Application ID":   fmt.Sprintf("%d", row.ApplicationID),
			"Full Name":        row.FullName,
			"Email":            row.Email,
			"Sex":              row.Sex,
			"Birthdate":        row.Birthdate.Format("2006-01-02"),
			"Contact Number":   contact,
			"Address":          row.Address,
			"Application Date": row.Date.Format("2006-01-02"),
			"Course":           row.CourseName,
			"Academic Year":    row.AcademicYear,
			"Result":           string(row.Type),
		})
	}
	return dataset
}
