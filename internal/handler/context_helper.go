package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmonteclaro/admission-api/internal/middleware"
	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func pageFromQuery(c *gin.Context) models.PageRequest {
	page := models.PageRequest{}
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		page.PageSize = v
	}
	return page
}
