package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "caixa/internal/errors"
	"caixa/internal/services"
)

// Context keys set by the auth middleware.
const (
	SessionKey      = "session"
	SessionTokenKey = "sessionToken"
)

// Auth returns a Gin middleware that resolves the bearer token to a live
// session and attaches it to the context. Requests without a valid,
// unrevoked session token are rejected before reaching any handler.
func Auth(auth services.AuthServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			abortUnauthorized(c)
			return
		}

		token := strings.TrimPrefix(header, prefix)
		session, err := auth.Validate(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(SessionKey, session)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrUnauthorized.Code,
			"message": apperrors.ErrUnauthorized.Message,
		},
	})
}
