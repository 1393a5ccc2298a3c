package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "caixa/internal/errors"
	"caixa/internal/middleware"
	"caixa/internal/services"
)

// AuthHandler handles session establishment and teardown.
type AuthHandler struct {
	authService services.AuthServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255"`
}

// Login checks the identifier against the allow-list and, on success,
// returns a bearer token for the new session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	session, err := h.authService.Authenticate(c.Request.Context(), req.Identifier)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   session.Token,
		"session": session,
	})
}

// Logout revokes the current session's token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, exists := c.Get(middleware.SessionTokenKey)
	if exists {
		if raw, ok := token.(string); ok {
			h.authService.SignOut(raw)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
