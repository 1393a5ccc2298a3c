package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"caixa/internal/models"
	"caixa/internal/testutil"
)

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

func TestUpsert(t *testing.T) {
	t.Run("creates_record", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)

		entry, err := svc.Upsert(context.Background(), "a@x.com", "2026-01", "Salary", models.KindIncome, amount(t, "5000"))
		testutil.AssertNoError(t, err)

		if entry.ID() != "a@x.com_2026-01_salary" {
			t.Errorf("unexpected composite id %q", entry.ID())
		}
		testutil.AssertDecimal(t, "5000", entry.Amount)
	})

	t.Run("second_write_replaces_first", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		first, err := svc.Upsert(ctx, "a@x.com", "2026-01", "Salary", models.KindIncome, amount(t, "5000"))
		testutil.AssertNoError(t, err)
		second, err := svc.Upsert(ctx, "a@x.com", "2026-01", "Salary", models.KindIncome, amount(t, "5500"))
		testutil.AssertNoError(t, err)

		if second.UpdatedAt.Before(first.UpdatedAt) {
			t.Error("expected second timestamp not before first")
		}

		all, err := svc.ListByUser(ctx, "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 1 {
			t.Fatalf("expected a single record, got %d", len(all))
		}
		testutil.AssertDecimal(t, "5500", all[0].Amount)
	})

	t.Run("zero_amount_clears_field", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)

		entry, err := svc.Upsert(context.Background(), "a@x.com", "2026-01", "Leisure", models.KindExpense, decimal.Zero)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "0", entry.Amount)
	})

	t.Run("normalizes_identifier", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		_, err := svc.Upsert(ctx, "  A@X.com ", "2026-01", "Salary", models.KindIncome, amount(t, "100"))
		testutil.AssertNoError(t, err)

		all, err := svc.ListByUser(ctx, "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 1 {
			t.Fatalf("expected normalized record visible, got %d records", len(all))
		}
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		cases := []struct {
			name     string
			period   string
			category string
			kind     models.Kind
			amount   string
			code     string
		}{
			{"month_13", "2026-13", "Salary", models.KindIncome, "100", "INVALID_PERIOD"},
			{"missing_zero_pad", "2026-1", "Salary", models.KindIncome, "100", "INVALID_PERIOD"},
			{"blank_category", "2026-01", "   ", models.KindIncome, "100", "INVALID_CATEGORY"},
			{"unknown_kind", "2026-01", "Salary", models.Kind("loan"), "100", "INVALID_KIND"},
			{"negative_amount", "2026-01", "Salary", models.KindIncome, "-1", "NEGATIVE_AMOUNT"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Upsert(ctx, "a@x.com", tc.period, tc.category, tc.kind, amount(t, tc.amount))
				testutil.AssertAppError(t, err, tc.code)
			})
		}
	})
}

func TestUpsertBatch(t *testing.T) {
	t.Run("writes_all_items", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		items := []EntryInput{
			{Period: "2026-01", Category: "Salary", Kind: models.KindIncome, Amount: amount(t, "5000")},
			{Period: "2026-01", Category: "Rent", Kind: models.KindExpense, Amount: amount(t, "1500")},
			{Period: "2026-01", Category: "Stocks", Kind: models.KindInvestment, Amount: amount(t, "1000")},
		}
		entries, err := svc.UpsertBatch(ctx, "a@x.com", items)
		testutil.AssertNoError(t, err)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		all, err := svc.ListByUser(ctx, "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 3 {
			t.Errorf("expected 3 stored records, got %d", len(all))
		}
	})

	t.Run("same_key_last_wins", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		items := []EntryInput{
			{Period: "2026-01", Category: "Salary", Kind: models.KindIncome, Amount: amount(t, "5000")},
			{Period: "2026-01", Category: "Salary", Kind: models.KindIncome, Amount: amount(t, "6000")},
		}
		entries, err := svc.UpsertBatch(ctx, "a@x.com", items)
		testutil.AssertNoError(t, err)
		if len(entries) != 1 {
			t.Fatalf("expected duplicates collapsed, got %d entries", len(entries))
		}
		testutil.AssertDecimal(t, "6000", entries[0].Amount)

		all, err := svc.ListByUser(ctx, "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 1 {
			t.Fatalf("expected a single stored record, got %d", len(all))
		}
		testutil.AssertDecimal(t, "6000", all[0].Amount)
	})

	t.Run("bad_item_rejects_whole_batch", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		ctx := context.Background()

		items := []EntryInput{
			{Period: "2026-01", Category: "Salary", Kind: models.KindIncome, Amount: amount(t, "5000")},
			{Period: "2026-01", Category: "Rent", Kind: models.KindExpense, Amount: amount(t, "-1")},
		}
		_, err := svc.UpsertBatch(ctx, "a@x.com", items)
		testutil.AssertAppError(t, err, "NEGATIVE_AMOUNT")

		all, err := svc.ListByUser(ctx, "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 0 {
			t.Errorf("expected no records written, got %d", len(all))
		}
	})

	t.Run("empty_batch_is_noop", func(t *testing.T) {
		svc := NewEntryService(testutil.SetupTestStore(t), 0)
		entries, err := svc.UpsertBatch(context.Background(), "a@x.com", nil)
		testutil.AssertNoError(t, err)
		if len(entries) != 0 {
			t.Errorf("expected empty result, got %d", len(entries))
		}
	})
}

func TestListEntries(t *testing.T) {
	seed := func(t *testing.T) (EntryServicer, string) {
		store := testutil.SetupTestStore(t)
		email := testutil.NextEmail()
		testutil.SeedEntry(t, store, email, "2026-01", "Salary", models.KindIncome, "5000")
		testutil.SeedEntry(t, store, email, "2026-02", "Salary", models.KindIncome, "5000")
		testutil.SeedEntry(t, store, email, "2025-12", "Rent", models.KindExpense, "1400")
		return NewEntryService(store, 0), email
	}

	t.Run("by_user_returns_everything", func(t *testing.T) {
		svc, email := seed(t)
		all, err := svc.ListByUser(context.Background(), email)
		testutil.AssertNoError(t, err)
		if len(all) != 3 {
			t.Errorf("expected 3 records, got %d", len(all))
		}
	})

	t.Run("by_period", func(t *testing.T) {
		svc, email := seed(t)
		entries, err := svc.ListByPeriod(context.Background(), email, "2026-01")
		testutil.AssertNoError(t, err)
		if len(entries) != 1 || entries[0].Period != "2026-01" {
			t.Errorf("expected the single 2026-01 record, got %v", entries)
		}
	})

	t.Run("by_year", func(t *testing.T) {
		svc, email := seed(t)
		entries, err := svc.ListByYear(context.Background(), email, "2026")
		testutil.AssertNoError(t, err)
		if len(entries) != 2 {
			t.Errorf("expected 2 records for 2026, got %d", len(entries))
		}
	})

	t.Run("invalid_period_filter", func(t *testing.T) {
		svc, email := seed(t)
		_, err := svc.ListByPeriod(context.Background(), email, "2026/01")
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})

	t.Run("other_users_invisible", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		testutil.SeedEntry(t, store, "a@x.com", "2026-01", "Salary", models.KindIncome, "5000")
		testutil.SeedEntry(t, store, "b@x.com", "2026-01", "Salary", models.KindIncome, "9000")

		svc := NewEntryService(store, 0)
		all, err := svc.ListByUser(context.Background(), "a@x.com")
		testutil.AssertNoError(t, err)
		if len(all) != 1 {
			t.Fatalf("expected 1 record, got %d", len(all))
		}
		testutil.AssertDecimal(t, "5000", all[0].Amount)
	})

	t.Run("fetch_limit_exceeded", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		email := testutil.NextEmail()
		testutil.SeedEntry(t, store, email, "2026-01", "Salary", models.KindIncome, "1")
		testutil.SeedEntry(t, store, email, "2026-02", "Salary", models.KindIncome, "2")
		testutil.SeedEntry(t, store, email, "2026-03", "Salary", models.KindIncome, "3")

		svc := NewEntryService(store, 2)
		_, err := svc.ListByUser(context.Background(), email)
		testutil.AssertAppError(t, err, "FETCH_LIMIT_EXCEEDED")
	})

	t.Run("orphaned_records_survive_category_removal", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		email := testutil.NextEmail()
		entrySvc := NewEntryService(store, 0)
		profileSvc := NewProfileService(store)
		ctx := context.Background()

		_, err := entrySvc.Upsert(ctx, email, "2026-01", "Leisure", models.KindExpense, amount(t, "300"))
		testutil.AssertNoError(t, err)

		_, err = profileSvc.RemoveCategory(ctx, email, models.KindExpense, "Leisure")
		testutil.AssertNoError(t, err)

		all, err := entrySvc.ListByUser(ctx, email)
		testutil.AssertNoError(t, err)
		if len(all) != 1 {
			t.Fatalf("expected the historical record kept, got %d records", len(all))
		}
		if all[0].Category != "Leisure" {
			t.Errorf("expected Leisure record, got %q", all[0].Category)
		}
	})
}
