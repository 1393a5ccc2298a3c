package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"caixa/internal/docstore"
	apperrors "caixa/internal/errors"
	"caixa/internal/models"
)

// batchWorkers bounds the concurrent writes of a batch upsert.
const batchWorkers = 4

// entryService handles the monthly amount records.
type entryService struct {
	store      docstore.Store
	fetchLimit int
}

// NewEntryService creates a new EntryServicer. fetchLimit caps how many
// records a single fetch-all may return; <= 0 means unbounded.
func NewEntryService(store docstore.Store, fetchLimit int) EntryServicer {
	return &entryService{store: store, fetchLimit: fetchLimit}
}

// Upsert validates the input, then writes a full replacement record under
// the deterministic composite id. Amount validation happens here regardless
// of any client-side constraints: negatives never reach storage.
func (s *entryService) Upsert(ctx context.Context, email, period, category string, kind models.Kind, amount decimal.Decimal) (*models.Entry, error) {
	entry, err := buildEntry(email, period, category, kind, amount)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, models.EntriesCollection, entry.ID(), entry.Document()); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpsertBatch writes several edits concurrently. All items are validated
// before any write so a bad item rejects the whole batch. Items resolving to
// the same composite id are deduplicated last-one-wins up front, which keeps
// same-key writes from racing inside the fan-out.
func (s *entryService) UpsertBatch(ctx context.Context, email string, items []EntryInput) ([]*models.Entry, error) {
	if len(items) == 0 {
		return []*models.Entry{}, nil
	}

	deduped := make([]*models.Entry, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		entry, err := buildEntry(email, item.Period, item.Category, item.Kind, item.Amount)
		if err != nil {
			return nil, err
		}
		if i, ok := index[entry.ID()]; ok {
			deduped[i] = entry
			continue
		}
		index[entry.ID()] = len(deduped)
		deduped = append(deduped, entry)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for _, entry := range deduped {
		entry := entry
		g.Go(func() error {
			return s.store.Set(ctx, models.EntriesCollection, entry.ID(), entry.Document())
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deduped, nil
}

// ListByUser fetches the user's entire history with a single user-scoped
// equality query. Period filtering happens in memory, which keeps the
// backing store free of composite-index requirements; the cost is bounded
// by the configured fetch limit.
func (s *entryService) ListByUser(ctx context.Context, email string) ([]*models.Entry, error) {
	norm := models.NormalizeIdentifier(email)
	if norm == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "user identifier is required")
	}

	docs, err := s.store.Query(ctx, models.EntriesCollection,
		[]docstore.Filter{{Field: models.FieldEmail, Value: norm}}, nil, s.fetchLimit)
	if err != nil {
		return nil, err
	}
	if s.fetchLimit > 0 && len(docs) > s.fetchLimit {
		return nil, apperrors.WithMessage(apperrors.ErrFetchLimit,
			fmt.Sprintf("entry history exceeds the fetch limit of %d records", s.fetchLimit))
	}

	entries := make([]*models.Entry, 0, len(docs))
	for _, doc := range docs {
		entry, err := models.EntryFromDocument(doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListByPeriod filters ListByUser down to one period.
func (s *entryService) ListByPeriod(ctx context.Context, email, period string) ([]*models.Entry, error) {
	if !models.ValidPeriod(period) {
		return nil, apperrors.ErrInvalidPeriod
	}
	all, err := s.ListByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.Entry, 0, len(all))
	for _, e := range all {
		if e.Period == period {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ListByYear filters ListByUser down to periods with the given year prefix.
func (s *entryService) ListByYear(ctx context.Context, email, year string) ([]*models.Entry, error) {
	if !models.ValidYear(year) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "year must be a 4-digit number")
	}
	all, err := s.ListByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.Entry, 0, len(all))
	for _, e := range all {
		if models.PeriodYear(e.Period) == year {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// buildEntry validates the upsert input and assembles the record with a
// fresh server timestamp.
func buildEntry(email, period, category string, kind models.Kind, amount decimal.Decimal) (*models.Entry, error) {
	norm := models.NormalizeIdentifier(email)
	if norm == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "user identifier is required")
	}
	if !models.ValidPeriod(period) {
		return nil, apperrors.ErrInvalidPeriod
	}
	if strings.TrimSpace(category) == "" {
		return nil, apperrors.ErrInvalidCategory
	}
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidKind
	}
	if amount.IsNegative() {
		return nil, apperrors.ErrNegativeAmount
	}
	return &models.Entry{
		Email:     norm,
		Period:    period,
		Category:  strings.TrimSpace(category),
		Kind:      kind,
		Amount:    amount,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
