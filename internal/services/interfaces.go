package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"caixa/internal/models"
	"caixa/internal/report"
)

// Session is the explicit handle for one logged-in user. It is passed to
// handlers through the auth middleware; no global "current user" exists.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthServicer establishes and tears down sessions. Authorization is
// allow-list membership only; there is no credential check. The interface
// leaves room to add one without touching callers.
type AuthServicer interface {
	// Authenticate normalizes the identifier, checks allow-list membership,
	// and on success mints a bearer-token session.
	Authenticate(ctx context.Context, identifier string) (*Session, error)
	// Validate resolves a bearer token to its live session.
	Validate(token string) (*Session, error)
	// SignOut revokes the session for the given token. Unknown tokens are a no-op.
	SignOut(token string)
}

// ProfileServicer owns the per-user category schema.
type ProfileServicer interface {
	// GetOrCreate reads the profile, creating it with defaults if absent and
	// additively backfilling any missing schema fields. Idempotent: a second
	// call performs no writes.
	GetOrCreate(ctx context.Context, email string) (*models.Profile, error)
	// AddCategory unions a category name into the kind's list.
	// Adding an existing name is a no-op.
	AddCategory(ctx context.Context, email string, kind models.Kind, name string) (*models.Profile, error)
	// RemoveCategory removes a category name from the kind's list. Removing a
	// missing name is a no-op. Entry records for the category are never touched.
	RemoveCategory(ctx context.Context, email string, kind models.Kind, name string) (*models.Profile, error)
}

// EntryInput is one upsert item in a batch.
type EntryInput struct {
	Period   string          `json:"period"`
	Category string          `json:"category"`
	Kind     models.Kind     `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
}

// EntryServicer owns the monthly amount records.
type EntryServicer interface {
	// Upsert writes a full replacement record under the composite id with a
	// fresh server timestamp. Last write wins.
	Upsert(ctx context.Context, email, period, category string, kind models.Kind, amount decimal.Decimal) (*models.Entry, error)
	// UpsertBatch validates every item, deduplicates same-key items
	// last-one-wins, and writes the rest concurrently.
	UpsertBatch(ctx context.Context, email string, items []EntryInput) ([]*models.Entry, error)
	// ListByUser fetches the user's entire history, capped at the configured
	// fetch limit.
	ListByUser(ctx context.Context, email string) ([]*models.Entry, error)
	// ListByPeriod and ListByYear are in-memory filters over ListByUser,
	// never separate storage queries.
	ListByPeriod(ctx context.Context, email, period string) ([]*models.Entry, error)
	ListByYear(ctx context.Context, email, year string) ([]*models.Entry, error)
}

// DashboardServicer derives the presentation aggregates from the raw entry
// set. Aggregates are recomputed on every call, never persisted.
type DashboardServicer interface {
	Monthly(ctx context.Context, email, period string) (*report.MonthlySummary, error)
	Annual(ctx context.Context, email, year string) (*report.AnnualSummary, error)
	Breakdown(ctx context.Context, email, year string, kind models.Kind) ([]report.CategoryTotal, error)
	Expenses(ctx context.Context, email, year string) (*report.ExpenseMatrix, error)
}
