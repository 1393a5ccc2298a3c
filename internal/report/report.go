// Package report computes the dashboard aggregates. Everything here is a
// pure function of the entry set handed in: nothing is persisted or cached,
// so every read recomputes from the queried records.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"caixa/internal/models"
)

// MonthlySummary is the dashboard view of a single period.
// NetCash is income - expense - investment; investment is treated as money
// set aside, not spend, consistently across the monthly and annual views.
type MonthlySummary struct {
	Period     string          `json:"period"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Investment decimal.Decimal `json:"investment"`
	NetCash    decimal.Decimal `json:"net_cash"`
	// SavingsRate is investment / income as a fraction, 0 when income is 0.
	SavingsRate float64 `json:"savings_rate"`
}

// Monthly sums the given entries by kind. An empty entry set is not an
// error: it yields an all-zero summary.
func Monthly(period string, entries []*models.Entry) MonthlySummary {
	s := MonthlySummary{
		Period:     period,
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		Investment: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Kind {
		case models.KindIncome:
			s.Income = s.Income.Add(e.Amount)
		case models.KindExpense:
			s.Expense = s.Expense.Add(e.Amount)
		case models.KindInvestment:
			s.Investment = s.Investment.Add(e.Amount)
		}
	}
	s.NetCash = s.Income.Sub(s.Expense).Sub(s.Investment)
	if s.Income.IsPositive() {
		s.SavingsRate, _ = s.Investment.Div(s.Income).Float64()
	}
	return s
}

// PeriodTotals is one period's row in the annual view. CumulativeInvestment
// is the running investment total across all chronologically earlier periods
// including this one, a proxy for accumulated net worth.
type PeriodTotals struct {
	Period               string          `json:"period"`
	Income               decimal.Decimal `json:"income"`
	Expense              decimal.Decimal `json:"expense"`
	Investment           decimal.Decimal `json:"investment"`
	NetCash              decimal.Decimal `json:"net_cash"`
	CumulativeInvestment decimal.Decimal `json:"cumulative_investment"`
}

// AnnualSummary is the year dashboard: per-period totals in chronological
// order plus whole-year totals.
type AnnualSummary struct {
	Year            string          `json:"year"`
	Periods         []PeriodTotals  `json:"periods"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
}

// Annual groups entries by period, sums by kind within each group, and
// orders groups by period key. Lexicographic order is chronological order
// for YYYY-MM keys. The cumulative investment carries forward through
// periods with no investment entries.
func Annual(year string, entries []*models.Entry) AnnualSummary {
	byPeriod := make(map[string][]*models.Entry)
	for _, e := range entries {
		byPeriod[e.Period] = append(byPeriod[e.Period], e)
	}

	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	summary := AnnualSummary{
		Year:            year,
		Periods:         make([]PeriodTotals, 0, len(periods)),
		TotalIncome:     decimal.Zero,
		TotalExpense:    decimal.Zero,
		TotalInvestment: decimal.Zero,
	}

	running := decimal.Zero
	for _, p := range periods {
		month := Monthly(p, byPeriod[p])
		running = running.Add(month.Investment)
		summary.Periods = append(summary.Periods, PeriodTotals{
			Period:               p,
			Income:               month.Income,
			Expense:              month.Expense,
			Investment:           month.Investment,
			NetCash:              month.NetCash,
			CumulativeInvestment: running,
		})
		summary.TotalIncome = summary.TotalIncome.Add(month.Income)
		summary.TotalExpense = summary.TotalExpense.Add(month.Expense)
		summary.TotalInvestment = summary.TotalInvestment.Add(month.Investment)
	}
	return summary
}

// CategoryTotal is one category's summed amount within a breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Breakdown ranks categories of one kind by summed amount, descending.
// Ties keep the order of categoryOrder (the profile's category lists);
// categories no longer in the schema rank after scheduled ones, in first-seen
// order, so orphaned records still show up.
func Breakdown(entries []*models.Entry, kind models.Kind, categoryOrder []string) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var firstSeen []string
	for _, e := range entries {
		if e.Kind != kind {
			continue
		}
		if _, ok := totals[e.Category]; !ok {
			firstSeen = append(firstSeen, e.Category)
			totals[e.Category] = decimal.Zero
		}
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}

	ranked := make([]CategoryTotal, 0, len(totals))
	used := make(map[string]bool, len(totals))
	for _, name := range categoryOrder {
		if total, ok := totals[name]; ok && !used[name] {
			ranked = append(ranked, CategoryTotal{Category: name, Total: total})
			used[name] = true
		}
	}
	for _, name := range firstSeen {
		if !used[name] {
			ranked = append(ranked, CategoryTotal{Category: name, Total: totals[name]})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})
	return ranked
}

// ExpenseMatrix is the per-category, per-period expense pivot backing the
// annual heat-map: one row per expense category, amounts aligned with
// Periods, zero-filled where a category has no entry in a period.
type ExpenseMatrix struct {
	Periods []string `json:"periods"`
	Rows    []ExpenseRow `json:"rows"`
}

// ExpenseRow is one category's amounts across the matrix periods.
type ExpenseRow struct {
	Category string            `json:"category"`
	Amounts  []decimal.Decimal `json:"amounts"`
}

// Expenses builds the expense pivot from the given entries.
func Expenses(entries []*models.Entry) ExpenseMatrix {
	cells := make(map[string]map[string]decimal.Decimal)
	periodSet := make(map[string]bool)
	var categories []string
	for _, e := range entries {
		if e.Kind != models.KindExpense {
			continue
		}
		periodSet[e.Period] = true
		row, ok := cells[e.Category]
		if !ok {
			row = make(map[string]decimal.Decimal)
			cells[e.Category] = row
			categories = append(categories, e.Category)
		}
		row[e.Period] = row[e.Period].Add(e.Amount)
	}

	matrix := ExpenseMatrix{}
	for p := range periodSet {
		matrix.Periods = append(matrix.Periods, p)
	}
	sort.Strings(matrix.Periods)
	sort.Strings(categories)

	for _, cat := range categories {
		row := ExpenseRow{Category: cat, Amounts: make([]decimal.Decimal, len(matrix.Periods))}
		for i, p := range matrix.Periods {
			amount, ok := cells[cat][p]
			if !ok {
				amount = decimal.Zero
			}
			row.Amounts[i] = amount
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}
