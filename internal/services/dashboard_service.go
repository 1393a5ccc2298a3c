package services

import (
	"context"

	apperrors "caixa/internal/errors"
	"caixa/internal/models"
	"caixa/internal/report"
)

// dashboardService turns raw entries into the month and year views. It
// composes the entry and profile services; all arithmetic lives in the
// report package.
type dashboardService struct {
	entries  EntryServicer
	profiles ProfileServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(entries EntryServicer, profiles ProfileServicer) DashboardServicer {
	return &dashboardService{entries: entries, profiles: profiles}
}

// Monthly returns the per-kind totals and derived ratios for one period.
func (s *dashboardService) Monthly(ctx context.Context, email, period string) (*report.MonthlySummary, error) {
	entries, err := s.entries.ListByPeriod(ctx, email, period)
	if err != nil {
		return nil, err
	}
	summary := report.Monthly(period, entries)
	return &summary, nil
}

// Annual returns the chronologically ordered per-period totals and the
// cumulative investment series for one year.
func (s *dashboardService) Annual(ctx context.Context, email, year string) (*report.AnnualSummary, error) {
	entries, err := s.entries.ListByYear(ctx, email, year)
	if err != nil {
		return nil, err
	}
	summary := report.Annual(year, entries)
	return &summary, nil
}

// Breakdown ranks one kind's categories by yearly total, ties broken by the
// profile's category order.
func (s *dashboardService) Breakdown(ctx context.Context, email, year string, kind models.Kind) ([]report.CategoryTotal, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidKind
	}
	entries, err := s.entries.ListByYear(ctx, email, year)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, email)
	if err != nil {
		return nil, err
	}
	return report.Breakdown(entries, kind, profile.CategoryOrder()), nil
}

// Expenses returns the category-by-period expense pivot for one year.
func (s *dashboardService) Expenses(ctx context.Context, email, year string) (*report.ExpenseMatrix, error) {
	entries, err := s.entries.ListByYear(ctx, email, year)
	if err != nil {
		return nil, err
	}
	matrix := report.Expenses(entries)
	return &matrix, nil
}
