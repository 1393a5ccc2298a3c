package models

import (
	"regexp"
	"strings"
)

// periodPattern matches a calendar month key, e.g. "2026-01".
// The YYYY-MM format sorts lexicographically in chronological order,
// which the annual aggregation relies on.
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a well-formed YYYY-MM period key.
func ValidPeriod(s string) bool {
	return periodPattern.MatchString(s)
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ValidYear reports whether s is a 4-digit year.
func ValidYear(s string) bool {
	return yearPattern.MatchString(s)
}

// PeriodYear returns the 4-digit year prefix of a period key.
func PeriodYear(period string) string {
	if len(period) < 4 {
		return period
	}
	return period[:4]
}

// NormalizeIdentifier canonicalizes a user identifier: trimmed and lower-cased.
// All lookups and document ids use the normalized form.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CategoryKey canonicalizes a category name for use inside a document id:
// trimmed, internal whitespace collapsed to underscores, lower-cased.
// Display casing is preserved separately on the record itself.
func CategoryKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// EntryID builds the deterministic composite document id for one
// (user, period, category) triple. Writing under this id makes
// upserts idempotent: a second write replaces the first.
func EntryID(email, period, category string) string {
	return NormalizeIdentifier(email) + "_" + period + "_" + CategoryKey(category)
}
