package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/escolar-dev/escolar-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	r.POST("/guarded", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func performRBAC(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/guarded", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin}, models.RoleAdmin, models.RoleTeacher)
	assert.Equal(t, http.StatusOK, performRBAC(r).Code)
}

func TestRequireRolesForbidsUnlistedRole(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "user-1", Role: models.RoleStudent}, models.RoleAdmin, models.RoleTeacher)
	assert.Equal(t, http.StatusForbidden, performRBAC(r).Code)
}

func TestRequireRolesForbidsUnknownRoleClaim(t *testing.T) {
	// A role outside the enum never matches, even if a gate listed it by
	// accident.
	r := rbacRouter(&models.JWTClaims{UserID: "user-1", Role: models.UserRole("PRINCIPAL")}, models.UserRole("PRINCIPAL"))
	assert.Equal(t, http.StatusForbidden, performRBAC(r).Code)
}

func TestRequireRolesRejectsMissingSession(t *testing.T) {
	r := rbacRouter(nil, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, performRBAC(r).Code)
}
