package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rmonteclaro/admission-api/internal/models"
)

func runRBAC(t *testing.T, claims *models.JWTClaims, roles ...models.UserRole) (int, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/protected", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	passed := false
	RequireRoles(roles...)(c)
	if !c.IsAborted() {
		passed = true
	}
	return rec.Code, passed
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	_, passed := runRBAC(t, &models.JWTClaims{UserID: 4, Role: models.RoleStaff}, models.RoleStaff)
	assert.True(t, passed)
}

func TestRequireRolesBlocksMismatch(t *testing.T) {
	code, passed := runRBAC(t, &models.JWTClaims{UserID: 9, Role: models.RoleApplicant}, models.RoleStaff)
	assert.False(t, passed)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRequireRolesSuperAdminPassesStaffChecks(t *testing.T) {
	_, passed := runRBAC(t, &models.JWTClaims{UserID: models.SuperAdminID, Role: models.RoleSuperAdmin}, models.RoleStaff)
	assert.True(t, passed)
}

func TestRequireRolesStaffCannotReachSuperAdminRoutes(t *testing.T) {
	code, passed := runRBAC(t, &models.JWTClaims{UserID: 4, Role: models.RoleStaff}, models.RoleSuperAdmin)
	assert.False(t, passed)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	code, passed := runRBAC(t, nil, models.RoleStaff)
	assert.False(t, passed)
	assert.Equal(t, http.StatusUnauthorized, code)
}
