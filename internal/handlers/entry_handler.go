package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "caixa/internal/errors"
	"caixa/internal/models"
	"caixa/internal/pagination"
	"caixa/internal/services"
)

// EntryHandler handles monthly amount records.
type EntryHandler struct {
	entryService services.EntryServicer
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService services.EntryServicer) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// UpsertEntryRequest represents a single amount edit. Amount is not tagged
// required: zero is a valid value that clears a field.
type UpsertEntryRequest struct {
	Period   string          `json:"period" binding:"required,period_key"`
	Category string          `json:"category" binding:"required"`
	Kind     models.Kind     `json:"kind" binding:"required,entry_kind"`
	Amount   decimal.Decimal `json:"amount"`
}

// UpsertBatchRequest represents a set of edits submitted together.
type UpsertBatchRequest struct {
	Items []UpsertEntryRequest `json:"items" binding:"required,min=1,max=200,dive"`
}

// ListEntriesRequest holds the optional list filters.
type ListEntriesRequest struct {
	Period string `form:"period" binding:"omitempty,period_key"`
	Year   string `form:"year" binding:"omitempty,year"`
	pagination.PageRequest
}

// Upsert writes one amount, replacing any prior value for the same
// (user, period, category) triple.
func (h *EntryHandler) Upsert(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	entry, err := h.entryService.Upsert(c.Request.Context(), session.Email, req.Period, req.Category, req.Kind, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpsertBatch writes several edits in one request.
func (h *EntryHandler) UpsertBatch(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	items := make([]services.EntryInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.EntryInput{
			Period:   item.Period,
			Category: item.Category,
			Kind:     item.Kind,
			Amount:   item.Amount,
		})
	}

	entries, err := h.entryService.UpsertBatch(c.Request.Context(), session.Email, items)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// List returns the user's entries, optionally scoped to a period or year,
// paginated in memory.
func (h *EntryHandler) List(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	var entries []*models.Entry
	switch {
	case req.Period != "":
		entries, err = h.entryService.ListByPeriod(c.Request.Context(), session.Email, req.Period)
	case req.Year != "":
		entries, err = h.entryService.ListByYear(c.Request.Context(), session.Email, req.Year)
	default:
		entries, err = h.entryService.ListByUser(c.Request.Context(), session.Email)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(entries, req.PageRequest))
}
