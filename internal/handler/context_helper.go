package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/escolar-dev/escolar-api/internal/middleware"
	"github.com/escolar-dev/escolar-api/internal/models"
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

// roleFromContext resolves the caller's role from the attached claims.
// Missing or malformed sessions resolve to RoleUnknown.
func roleFromContext(c *gin.Context) models.UserRole {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.RoleUnknown
	}
	return models.ParseRole(string(claims.Role))
}
