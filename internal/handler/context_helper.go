package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/middleware"
	"github.com/dormi-app/dormi-api/internal/models"
)

// claimsFromContext extracts the JWT claims stored by the auth
// middleware. Returns nil on unauthenticated routes.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
