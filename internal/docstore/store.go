// Package docstore defines the document-store boundary the core is written
// against: keyed documents grouped into collections, with full-replace sets,
// top-level field merges, ordered-set array updates, and equality/range
// queries. The GORM implementation in this package is the only storage
// backend; services never see SQL.
package docstore

import "context"

// Document is a schemaless JSON object persisted under a collection and id.
type Document map[string]any

// ArrayOp selects the set semantics applied by UpdateArrayField.
type ArrayOp string

const (
	// ArrayUnion appends values not already present, preserving order.
	ArrayUnion ArrayOp = "union"
	// ArrayDifference removes any occurrences of the given values.
	ArrayDifference ArrayOp = "difference"
)

// Filter is an equality predicate on a top-level document field.
type Filter struct {
	Field string
	Value string
}

// RangeFilter is an inclusive range predicate on a top-level string field.
type RangeFilter struct {
	Field string
	Low   string
	High  string
}

// Store is the minimal document-store contract consumed by the services.
// Implementations must distinguish a missing document (ErrNotFound) from
// an unreachable backend (ErrStorageUnavailable): an empty result is data,
// a storage fault is fatal for the session.
type Store interface {
	// Get returns the document stored under collection/id,
	// or errors.ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set writes a full replacement of the document under collection/id,
	// creating it if absent.
	Set(ctx context.Context, collection, id string, doc Document) error

	// Merge writes only the given top-level fields into the document under
	// collection/id, preserving all other fields. The document is created
	// if absent.
	Merge(ctx context.Context, collection, id string, fields Document) error

	// UpdateArrayField applies an ordered-set union or difference to a
	// top-level array field, atomically with respect to other writers.
	UpdateArrayField(ctx context.Context, collection, id, field string, op ArrayOp, values []string) error

	// Query returns documents in collection matching all equality filters
	// and the optional range filter. limit > 0 caps the result size; the
	// returned slice may hold at most limit+1 documents so callers can
	// detect truncation.
	Query(ctx context.Context, collection string, eq []Filter, rng *RangeFilter, limit int) ([]Document, error)
}
