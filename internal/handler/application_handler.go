package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmonteclaro/admission-api/internal/models"
	"github.com/rmonteclaro/admission-api/internal/service"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/response"
	"github.com/rmonteclaro/admission-api/pkg/storage"
)

// ApplicationHandler exposes application lifecycle endpoints.
type ApplicationHandler struct {
	service   *service.ApplicationService
	documents *storage.DocumentStore
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(svc *service.ApplicationService, documents *storage.DocumentStore) *ApplicationHandler {
	return &ApplicationHandler{service: svc, documents: documents}
}

// Submit godoc
// @Summary Submit an application with two supporting documents
// @Tags Applications
// @Accept mpfd
// @Produce json
// @Param course_id formData int true "Course ID"
// @Param documentOne formData file true "First supporting document"
// @Param documentTwo formData file true "Second supporting document"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseID, err := strconv.ParseInt(c.PostForm("course_id"), 10, 64)
	if err != nil || courseID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id is required"))
		return
	}

	docOneExt, err := h.saveDocument(c, storage.FieldDocumentOne, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	docTwoExt, err := h.saveDocument(c, storage.FieldDocumentTwo, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	err = h.service.Submit(c.Request.Context(), claims.UserID, service.SubmitApplicationRequest{
		CourseID:       courseID,
		DocumentOneExt: docOneExt,
		DocumentTwoExt: docTwoExt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"course_id": courseID})
}

func (h *ApplicationHandler) saveDocument(c *gin.Context, field string, applicantID int64) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read "+field)
	}
	ext, err := h.documents.Save(field, applicantID, data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error())
	}
	return ext, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Summary godoc
// @Summary Current applicant's application summary
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications/me/summary [get]
func (h *ApplicationHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Check godoc
// @Summary Whether the current applicant has submitted an application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications/me/check [get]
func (h *ApplicationHandler) Check(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	exists, err := h.service.Exists(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"exists": exists}, nil)
}

// GetOwn godoc
// @Summary Current applicant's full application view
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications/me [get]
func (h *ApplicationHandler) GetOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	app, err := h.service.GetOwn(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List applications for one course offering
// @Tags Applications
// @Produce json
// @Param course_status_id query int true "Course status ID"
// @Param status query string false "Filter by application status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	courseStatusID, err := strconv.ParseInt(c.Query("course_status_id"), 10, 64)
	if err != nil || courseStatusID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_status_id is required"))
		return
	}

	filter := service.ApplicationListFilter{CourseStatusID: courseStatusID, Page: pageFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		filter.Status = &status
	}

	rows, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Schedule godoc
// @Summary Set the interview window for an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body service.ScheduleRequest true "Schedule payload"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/schedule [put]
func (h *ApplicationHandler) Schedule(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Schedule(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"application_id": id}, nil)
}

// Remarks godoc
// @Summary Attach staff remarks to an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body service.RemarksRequest true "Remarks payload"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/remarks [put]
func (h *ApplicationHandler) Remarks(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RemarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Remarks(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"application_id": id}, nil)
}

// Promote godoc
// @Summary Record one batch admission outcome for a set of applications
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body service.PromoteRequest true "Promotion payload"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Router /applications/promote [post]
func (h *ApplicationHandler) Promote(c *gin.Context) {
	var req service.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Promote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}
