package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"caixa/internal/docstore"
	"caixa/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

// NextEmail returns a unique user identifier.
func NextEmail() string {
	return fmt.Sprintf("user%d@test.com", counter.Add(1))
}

// Allow puts an identifier on the allow-list.
func Allow(t *testing.T, store docstore.Store, email string) {
	t.Helper()

	norm := models.NormalizeIdentifier(email)
	doc := docstore.Document{
		"email":    norm,
		"added_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.Set(context.Background(), models.AllowlistCollection, norm, doc); err != nil {
		t.Fatalf("failed to seed allow-list entry: %v", err)
	}
}

// SeedEntry writes one entry record directly into the store, bypassing the
// entry service.
func SeedEntry(t *testing.T, store docstore.Store, email, period, category string, kind models.Kind, amount string) *models.Entry {
	t.Helper()

	value, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid fixture amount %q: %v", amount, err)
	}
	entry := &models.Entry{
		Email:     models.NormalizeIdentifier(email),
		Period:    period,
		Category:  category,
		Kind:      kind,
		Amount:    value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Set(context.Background(), models.EntriesCollection, entry.ID(), entry.Document()); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
	return entry
}

// SeedProfileDoc writes a raw user document, used to simulate profiles
// written by older schema versions.
func SeedProfileDoc(t *testing.T, store docstore.Store, email string, doc docstore.Document) {
	t.Helper()

	norm := models.NormalizeIdentifier(email)
	if err := store.Set(context.Background(), models.UsersCollection, norm, doc); err != nil {
		t.Fatalf("failed to seed profile document: %v", err)
	}
}
