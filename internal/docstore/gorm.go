package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "caixa/internal/errors"
	"caixa/internal/logger"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxAttempts = 3
	initialRetryDelay  = 100 * time.Millisecond
	maxRetryDelay      = 2 * time.Second
)

// record is the GORM row backing one document. The payload is stored as a
// JSON string so the same schema works on Postgres and SQLite.
type record struct {
	Collection string `gorm:"primaryKey;size:64"`
	DocID      string `gorm:"primaryKey;column:doc_id;size:512"`
	Data       string `gorm:"not null"`
	UpdatedAt  time.Time
}

func (record) TableName() string { return "documents" }

// Options tunes the per-call timeout and bounded retry of a GormStore.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
}

// GormStore implements Store on top of a GORM connection. Every call is
// bounded by a timeout and retried with exponential backoff before the
// failure surfaces as STORAGE_UNAVAILABLE.
type GormStore struct {
	db          *gorm.DB
	timeout     time.Duration
	maxAttempts int
}

// NewGormStore creates a Store backed by the given GORM connection.
func NewGormStore(db *gorm.DB, opts Options) *GormStore {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &GormStore{db: db, timeout: opts.Timeout, maxAttempts: opts.MaxAttempts}
}

// Migrate creates the documents table. Production deployments run the SQL
// migrations instead; this is used by tests and the sqlite dev setup.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&record{})
}

// Get implements Store.
func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := s.do(ctx, func(ctx context.Context) error {
		var rec record
		if err := s.db.WithContext(ctx).
			Where("collection = ? AND doc_id = ?", collection, id).
			First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		return json.Unmarshal([]byte(rec.Data), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Set implements Store.
func (s *GormStore) Set(ctx context.Context, collection, id string, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.do(ctx, func(ctx context.Context) error {
		return s.upsert(s.db.WithContext(ctx), collection, id, payload)
	})
}

// Merge implements Store. The read-modify-write runs inside a transaction so
// concurrent merges to the same document cannot drop each other's fields.
func (s *GormStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing := Document{}
			var rec record
			err := tx.Where("collection = ? AND doc_id = ?", collection, id).First(&rec).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Merge into an absent document creates it.
			case err != nil:
				return err
			default:
				if err := json.Unmarshal([]byte(rec.Data), &existing); err != nil {
					return err
				}
			}
			for k, v := range fields {
				existing[k] = v
			}
			payload, err := json.Marshal(existing)
			if err != nil {
				return err
			}
			return s.upsert(tx, collection, id, payload)
		})
	})
}

// UpdateArrayField implements Store. The target document must exist.
func (s *GormStore) UpdateArrayField(ctx context.Context, collection, id, field string, op ArrayOp, values []string) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var rec record
			if err := tx.Where("collection = ? AND doc_id = ?", collection, id).First(&rec).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrNotFound
				}
				return err
			}
			doc := Document{}
			if err := json.Unmarshal([]byte(rec.Data), &doc); err != nil {
				return err
			}
			doc[field] = applyArrayOp(stringSlice(doc[field]), op, values)
			payload, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			return s.upsert(tx, collection, id, payload)
		})
	})
}

// Query implements Store.
func (s *GormStore) Query(ctx context.Context, collection string, eq []Filter, rng *RangeFilter, limit int) ([]Document, error) {
	var docs []Document
	err := s.do(ctx, func(ctx context.Context) error {
		q := s.db.WithContext(ctx).Model(&record{}).Where("collection = ?", collection)
		for _, f := range eq {
			q = q.Where(s.fieldExpr(f.Field)+" = ?", f.Value)
		}
		if rng != nil {
			expr := s.fieldExpr(rng.Field)
			q = q.Where(expr+" >= ? AND "+expr+" <= ?", rng.Low, rng.High)
		}
		if limit > 0 {
			// One past the cap so callers can detect truncation.
			q = q.Limit(limit + 1)
		}

		var recs []record
		if err := q.Order("doc_id").Find(&recs).Error; err != nil {
			return err
		}
		docs = make([]Document, 0, len(recs))
		for _, rec := range recs {
			doc := Document{}
			if err := json.Unmarshal([]byte(rec.Data), &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *GormStore) upsert(tx *gorm.DB, collection, id string, payload []byte) error {
	rec := record{Collection: collection, DocID: id, Data: string(payload), UpdatedAt: time.Now().UTC()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

// fieldExpr returns the dialect-specific SQL expression extracting a
// top-level JSON field as text. Field names come from package constants,
// never from request input.
func (s *GormStore) fieldExpr(field string) string {
	if s.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("data::jsonb ->> '%s'", field)
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

// do runs op with a per-attempt timeout and exponential backoff. A NotFound
// result is returned as-is immediately; any other failure is retried and
// finally surfaced as STORAGE_UNAVAILABLE.
func (s *GormStore) do(ctx context.Context, op func(ctx context.Context) error) error {
	delay := initialRetryDelay
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := op(opCtx)
		cancel()
		if err == nil {
			return nil
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound.Code {
			return err
		}

		lastErr = err
		if attempt == s.maxAttempts {
			break
		}

		logger.Get().Warnw("storage call failed, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"delay", delay.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.ErrStorageUnavailable, ctx.Err())
		case <-time.After(delay):
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}
	return apperrors.Wrap(apperrors.ErrStorageUnavailable, lastErr)
}

// stringSlice coerces a decoded JSON array into []string, dropping
// non-string members.
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// applyArrayOp applies ordered-set union or difference semantics.
func applyArrayOp(current []string, op ArrayOp, values []string) []string {
	switch op {
	case ArrayUnion:
		seen := make(map[string]bool, len(current))
		out := append([]string(nil), current...)
		for _, c := range current {
			seen[c] = true
		}
		for _, v := range values {
			if !seen[v] {
				out = append(out, v)
				seen[v] = true
			}
		}
		return out
	case ArrayDifference:
		drop := make(map[string]bool, len(values))
		for _, v := range values {
			drop[v] = true
		}
		out := make([]string, 0, len(current))
		for _, c := range current {
			if !drop[c] {
				out = append(out, c)
			}
		}
		return out
	default:
		return current
	}
}
