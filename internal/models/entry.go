package models

import (
	"time"

	"github.com/shopspring/decimal"

	"caixa/internal/docstore"
	apperrors "caixa/internal/errors"
)

// Collection names in the backing document store.
const (
	AllowlistCollection = "allowlist"
	UsersCollection     = "users"
	EntriesCollection   = "entries"
)

// Kind classifies a monthly entry.
type Kind string

const (
	KindIncome     Kind = "income"
	KindExpense    Kind = "expense"
	KindInvestment Kind = "investment"
)

// Kinds lists all entry kinds in display order.
var Kinds = []Kind{KindIncome, KindExpense, KindInvestment}

// Valid reports whether k is a known entry kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindInvestment:
		return true
	}
	return false
}

// Entry field names inside an entry document.
const (
	FieldEmail     = "email"
	FieldPeriod    = "period"
	FieldCategory  = "category"
	FieldKind      = "kind"
	FieldAmount    = "amount"
	FieldUpdatedAt = "updated_at"
)

// Entry is one monthly amount for a (user, period, category) triple.
// At most one entry exists per triple; a new write replaces the old
// amount entirely. Category keeps its original casing for display.
type Entry struct {
	Email     string          `json:"email"`
	Period    string          `json:"period"`
	Category  string          `json:"category"`
	Kind      Kind            `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ID returns the entry's deterministic composite document id.
func (e *Entry) ID() string {
	return EntryID(e.Email, e.Period, e.Category)
}

// Document converts the entry to its stored document shape. The amount is
// stored as a decimal string to avoid float rounding in the JSON payload.
func (e *Entry) Document() docstore.Document {
	return docstore.Document{
		FieldEmail:     e.Email,
		FieldPeriod:    e.Period,
		FieldCategory:  e.Category,
		FieldKind:      string(e.Kind),
		FieldAmount:    e.Amount.String(),
		FieldUpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// EntryFromDocument decodes a stored entry document.
func EntryFromDocument(doc docstore.Document) (*Entry, error) {
	entry := &Entry{
		Email:    docString(doc, FieldEmail),
		Period:   docString(doc, FieldPeriod),
		Category: docString(doc, FieldCategory),
		Kind:     Kind(docString(doc, FieldKind)),
	}

	amount, err := docDecimal(doc, FieldAmount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	entry.Amount = amount

	if raw := docString(doc, FieldUpdatedAt); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		entry.UpdatedAt = ts
	}
	return entry, nil
}

func docString(doc docstore.Document, field string) string {
	s, _ := doc[field].(string)
	return s
}

// docDecimal reads an amount that may be stored as a decimal string or,
// in documents written by older clients, a raw JSON number.
func docDecimal(doc docstore.Document, field string) (decimal.Decimal, error) {
	switch v := doc[field].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInternalServer, "unsupported amount encoding")
	}
}
