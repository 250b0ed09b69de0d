package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmonteclaro/admission-api/internal/service"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/response"
)

// AdmissionHandler exposes admission record read views and exports.
type AdmissionHandler struct {
	service *service.AdmissionService
	exports *service.ExportService
}

// NewAdmissionHandler constructs an admission handler.
func NewAdmissionHandler(svc *service.AdmissionService, exports *service.ExportService) *AdmissionHandler {
	return &AdmissionHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List admission records newest first
// @Tags Admissions
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	rows, pagination, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// ListApplications godoc
// @Summary List applications under one admission record
// @Tags Admissions
// @Produce json
// @Param id path int true "Admission record ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/applications [get]
func (h *AdmissionHandler) ListApplications(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, pagination, err := h.service.ListApplications(c.Request.Context(), id, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// RequestExport godoc
// @Summary Queue an admission list export (csv or pdf)
// @Tags Admissions
// @Produce json
// @Param id path int true "Admission record ID"
// @Param format query string false "csv or pdf" default(csv)
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Router /admissions/{id}/export [post]
func (h *AdmissionHandler) RequestExport(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	job, err := h.exports.Request(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Poll an export job
// @Tags Admissions
// @Produce json
// @Param jobId path string true "Export job ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admissions/exports/{jobId} [get]
func (h *AdmissionHandler) ExportStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "jobId is required"))
		return
	}
	job, err := h.exports.Status(c.Request.Context(), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadExport godoc
// @Summary Download a rendered export via signed token
// @Tags Admissions
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /admissions/exports/download [get]
func (h *AdmissionHandler) DownloadExport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, contentType, err := h.exports.Resolve(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
