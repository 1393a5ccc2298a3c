package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "caixa/internal/errors"
	"caixa/internal/models"
	"caixa/internal/services"
)

// ProfileHandler handles category-schema requests.
type ProfileHandler struct {
	profileService services.ProfileServicer
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService services.ProfileServicer) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// CategoryRequest represents the payload for adding or removing a category.
type CategoryRequest struct {
	Kind models.Kind `json:"kind" binding:"required,entry_kind"`
	Name string      `json:"name" binding:"required"`
}

// GetProfile returns the user's category schema, creating it with defaults
// on first access.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.GetOrCreate(c.Request.Context(), session.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// AddCategory adds a category name to one kind's list.
func (h *ProfileHandler) AddCategory(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	profile, err := h.profileService.AddCategory(c.Request.Context(), session.Email, req.Kind, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// RemoveCategory removes a category name from one kind's list. Entry
// records for the removed category stay in storage and in aggregates.
func (h *ProfileHandler) RemoveCategory(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	profile, err := h.profileService.RemoveCategory(c.Request.Context(), session.Email, req.Kind, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
