package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "caixa/internal/errors"
	"caixa/internal/models"
	"caixa/internal/services"
)

// DashboardHandler serves the derived month and year views.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// MonthlyRequest holds the monthly dashboard query parameters.
type MonthlyRequest struct {
	Period string `form:"period" binding:"required,period_key"`
}

// AnnualRequest holds the annual dashboard query parameters.
type AnnualRequest struct {
	Year string `form:"year" binding:"required,year"`
}

// BreakdownRequest holds the category breakdown query parameters.
type BreakdownRequest struct {
	Year string      `form:"year" binding:"required,year"`
	Kind models.Kind `form:"kind" binding:"required,entry_kind"`
}

// Monthly returns the per-kind totals, net cash, and savings rate for one
// period. A period with no entries yields an all-zero summary.
func (h *DashboardHandler) Monthly(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MonthlyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	summary, err := h.dashboardService.Monthly(c.Request.Context(), session.Email, req.Period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Annual returns the chronologically ordered per-period totals and the
// cumulative investment series for one year.
func (h *DashboardHandler) Annual(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AnnualRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	summary, err := h.dashboardService.Annual(c.Request.Context(), session.Email, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Breakdown ranks one kind's categories by yearly total, descending.
func (h *DashboardHandler) Breakdown(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BreakdownRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	breakdown, err := h.dashboardService.Breakdown(c.Request.Context(), session.Email, req.Year, req.Kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

// Expenses returns the category-by-period expense pivot for one year.
func (h *DashboardHandler) Expenses(c *gin.Context) {
	session, err := sessionFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AnnualRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	matrix, err := h.dashboardService.Expenses(c.Request.Context(), session.Email, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matrix": matrix})
}
