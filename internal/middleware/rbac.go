package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/courtmaster/courtledger-api/internal/models"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
	"github.com/courtmaster/courtledger-api/pkg/response"
)

// RequireCoach blocks requests whose token does not carry the coach role.
// Services enforce the same rule themselves; this middleware only exists
// to fail fast before request bodies are parsed.
func RequireCoach() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || !claims.IsCoach() {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
