package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmonteclaro/admission-api/internal/service"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/response"
)

// ApplicantHandler exposes applicant registration and profile endpoints.
type ApplicantHandler struct {
	service *service.ApplicantService
}

// NewApplicantHandler constructs an applicant handler.
func NewApplicantHandler(svc *service.ApplicantService) *ApplicantHandler {
	return &ApplicantHandler{service: svc}
}

// Register godoc
// @Summary Register an applicant account
// @Tags Applicants
// @Accept json
// @Produce json
// @Param payload body service.RegisterApplicantRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /applicants [post]
func (h *ApplicantHandler) Register(c *gin.Context) {
	var req service.RegisterApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	applicant, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, applicant)
}

// Me godoc
// @Summary Current applicant profile
// @Tags Applicants
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applicants/me [get]
func (h *ApplicantHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	applicant, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicant, nil)
}

// List godoc
// @Summary List applicants
// @Tags Applicants
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applicants [get]
func (h *ApplicantHandler) List(c *gin.Context) {
	applicants, pagination, err := h.service.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, pagination)
}

// Get godoc
// @Summary Get one applicant profile
// @Tags Applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /applicants/{id} [get]
func (h *ApplicantHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	applicant, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicant, nil)
}
