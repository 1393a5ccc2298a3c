package models

import "testing"

func TestValidPeriod(t *testing.T) {
	valid := []string{"2026-01", "2026-12", "1999-06"}
	for _, p := range valid {
		if !ValidPeriod(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}

	invalid := []string{"", "2026", "2026-13", "2026-00", "2026-1", "26-01", "2026-01-05", "jan-2026"}
	for _, p := range invalid {
		if ValidPeriod(p) {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}

func TestValidYear(t *testing.T) {
	if !ValidYear("2026") {
		t.Error("expected 2026 to be valid")
	}
	for _, y := range []string{"", "26", "20261", "year"} {
		if ValidYear(y) {
			t.Errorf("expected %q to be invalid", y)
		}
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	if got := NormalizeIdentifier("  A@X.com "); got != "a@x.com" {
		t.Errorf("expected a@x.com, got %q", got)
	}
}

func TestCategoryKey(t *testing.T) {
	cases := map[string]string{
		"Credit Card":     "credit_card",
		"  Rent  ":        "rent",
		"Caixinha  Extra": "caixinha_extra",
		"Uber/Transport":  "uber/transport",
	}
	for in, want := range cases {
		if got := CategoryKey(in); got != want {
			t.Errorf("CategoryKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntryID_Deterministic(t *testing.T) {
	a := EntryID(" A@X.com ", "2026-01", "Credit Card")
	b := EntryID("a@x.com", "2026-01", "credit card")
	if a != b {
		t.Errorf("expected identical ids, got %q and %q", a, b)
	}
	if a != "a@x.com_2026-01_credit_card" {
		t.Errorf("unexpected composite id %q", a)
	}
}

func TestPeriodYear(t *testing.T) {
	if got := PeriodYear("2026-07"); got != "2026" {
		t.Errorf("expected 2026, got %q", got)
	}
}
