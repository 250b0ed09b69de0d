package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
	"github.com/rmonteclaro/admission-api/pkg/response"
	"github.com/rmonteclaro/admission-api/pkg/storage"
)

// DocumentHandler streams stored applicant documents. Staff can read any
// applicant's documents; applicants only their own.
type DocumentHandler struct {
	documents *storage.DocumentStore
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(documents *storage.DocumentStore) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Download godoc
// @Summary Download one applicant document
// @Tags Documents
// @Produce octet-stream
// @Param field path string true "Document field (documentOne or documentTwo)"
// @Param applicantId path int true "Applicant ID"
// @Param ext query string true "Stored file extension"
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /documents/{field}/{applicantId} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	field := c.Param("field")
	if field != storage.FieldDocumentOne && field != storage.FieldDocumentTwo {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown document field"))
		return
	}

	applicantID, err := idParam(c, "applicantId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims.Role == models.RoleApplicant && claims.UserID != applicantID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	ext := c.Query("ext")
	if ext == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ext is required"))
		return
	}

	file, contentType, err := h.documents.Open(field, applicantID, ext)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
		return
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.Status(200)
	_, _ = io.Copy(c.Writer, file)
}
