package models

import (
	"github.com/shopspring/decimal"

	"caixa/internal/docstore"
)

// Profile field names inside a user document. Older documents may be
// missing the investment list or the savings goal; GetOrCreate backfills
// those additively on first read.
const (
	FieldIncomeCategories     = "income_categories"
	FieldExpenseCategories    = "expense_categories"
	FieldInvestmentCategories = "investment_categories"
	FieldSavingsGoal          = "savings_goal"
)

// Profile is a user's category schema: the allowed category names per
// entry kind, plus an optional monthly savings goal.
type Profile struct {
	Email                string          `json:"email"`
	IncomeCategories     []string        `json:"income_categories"`
	ExpenseCategories    []string        `json:"expense_categories"`
	InvestmentCategories []string        `json:"investment_categories"`
	SavingsGoal          decimal.Decimal `json:"savings_goal"`
}

// DefaultProfile returns the seed schema written for a user on first access.
func DefaultProfile(email string) *Profile {
	return &Profile{
		Email:                email,
		IncomeCategories:     []string{"Salary", "Freelance", "Dividends"},
		ExpenseCategories:    []string{"Rent", "Groceries", "Leisure", "Credit Card", "Transport", "Subscriptions"},
		InvestmentCategories: []string{"Fixed Income", "Stocks", "Real Estate Funds", "Emergency Fund"},
		SavingsGoal:          decimal.Zero,
	}
}

// Categories returns the category list for the given kind.
func (p *Profile) Categories(kind Kind) []string {
	switch kind {
	case KindIncome:
		return p.IncomeCategories
	case KindExpense:
		return p.ExpenseCategories
	case KindInvestment:
		return p.InvestmentCategories
	}
	return nil
}

// CategoryField maps a kind to its document field name.
func CategoryField(kind Kind) string {
	switch kind {
	case KindIncome:
		return FieldIncomeCategories
	case KindExpense:
		return FieldExpenseCategories
	case KindInvestment:
		return FieldInvestmentCategories
	}
	return ""
}

// CategoryOrder returns all category names across kinds, in profile order.
// The dashboard breakdown uses this as the tie-break order.
func (p *Profile) CategoryOrder() []string {
	order := make([]string, 0, len(p.IncomeCategories)+len(p.ExpenseCategories)+len(p.InvestmentCategories))
	for _, kind := range Kinds {
		order = append(order, p.Categories(kind)...)
	}
	return order
}

// Document converts the profile to its stored document shape.
func (p *Profile) Document() docstore.Document {
	return docstore.Document{
		FieldIncomeCategories:     p.IncomeCategories,
		FieldExpenseCategories:    p.ExpenseCategories,
		FieldInvestmentCategories: p.InvestmentCategories,
		FieldSavingsGoal:          p.SavingsGoal.String(),
	}
}

// ProfileFromDocument decodes a stored user document. Fields absent from the
// document are filled from the defaults and reported in missing, so the
// caller can persist exactly the backfilled fields.
func ProfileFromDocument(email string, doc docstore.Document) (profile *Profile, missing []string) {
	defaults := DefaultProfile(email)
	profile = &Profile{Email: email}

	lists := []struct {
		field string
		dst   *[]string
		def   []string
	}{
		{FieldIncomeCategories, &profile.IncomeCategories, defaults.IncomeCategories},
		{FieldExpenseCategories, &profile.ExpenseCategories, defaults.ExpenseCategories},
		{FieldInvestmentCategories, &profile.InvestmentCategories, defaults.InvestmentCategories},
	}
	for _, l := range lists {
		if _, ok := doc[l.field]; !ok {
			*l.dst = l.def
			missing = append(missing, l.field)
			continue
		}
		*l.dst = docStringSlice(doc, l.field)
	}

	if _, ok := doc[FieldSavingsGoal]; !ok {
		profile.SavingsGoal = defaults.SavingsGoal
		missing = append(missing, FieldSavingsGoal)
	} else if goal, err := docDecimal(doc, FieldSavingsGoal); err == nil {
		profile.SavingsGoal = goal
	}

	return profile, missing
}

func docStringSlice(doc docstore.Document, field string) []string {
	out := []string{}
	switch arr := doc[field].(type) {
	case []string:
		return append(out, arr...)
	case []any:
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
