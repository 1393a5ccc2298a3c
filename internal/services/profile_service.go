package services

import (
	"context"
	"errors"
	"strings"

	"caixa/internal/docstore"
	apperrors "caixa/internal/errors"
	"caixa/internal/models"
)

// profileService handles category-schema business logic.
type profileService struct {
	store docstore.Store
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(store docstore.Store) ProfileServicer {
	return &profileService{store: store}
}

// GetOrCreate reads the stored profile for email, creating it with the
// default seed schema when absent. A profile written by an older schema
// version gets exactly its missing fields merged in and persisted; the merge
// is additive and idempotent, so a second call produces no further writes.
// Storage faults propagate as STORAGE_UNAVAILABLE: the caller must halt
// rather than proceed with defaults standing in for real data.
func (s *profileService) GetOrCreate(ctx context.Context, email string) (*models.Profile, error) {
	norm := models.NormalizeIdentifier(email)
	if norm == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "user identifier is required")
	}

	doc, err := s.store.Get(ctx, models.UsersCollection, norm)
	if err != nil {
		if isNotFound(err) {
			profile := models.DefaultProfile(norm)
			if err := s.store.Set(ctx, models.UsersCollection, norm, profile.Document()); err != nil {
				return nil, err
			}
			return profile, nil
		}
		return nil, err
	}

	profile, missing := models.ProfileFromDocument(norm, doc)
	if len(missing) > 0 {
		full := profile.Document()
		backfill := docstore.Document{}
		for _, field := range missing {
			backfill[field] = full[field]
		}
		if err := s.store.Merge(ctx, models.UsersCollection, norm, backfill); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// AddCategory unions name into the kind's category list.
func (s *profileService) AddCategory(ctx context.Context, email string, kind models.Kind, name string) (*models.Profile, error) {
	return s.mutateCategories(ctx, email, kind, name, docstore.ArrayUnion)
}

// RemoveCategory removes name from the kind's category list. Existing entry
// records for the category are left in place: historical data integrity
// outranks schema tidiness, so they become orphans rather than casualties.
func (s *profileService) RemoveCategory(ctx context.Context, email string, kind models.Kind, name string) (*models.Profile, error) {
	return s.mutateCategories(ctx, email, kind, name, docstore.ArrayDifference)
}

func (s *profileService) mutateCategories(ctx context.Context, email string, kind models.Kind, name string, op docstore.ArrayOp) (*models.Profile, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidKind
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrInvalidCategory
	}

	// Ensure the profile exists (and is migrated) before the array update.
	if _, err := s.GetOrCreate(ctx, email); err != nil {
		return nil, err
	}

	norm := models.NormalizeIdentifier(email)
	if err := s.store.UpdateArrayField(ctx, models.UsersCollection, norm, models.CategoryField(kind), op, []string{name}); err != nil {
		return nil, err
	}
	return s.GetOrCreate(ctx, norm)
}

// isNotFound reports whether err is the NotFound sentinel (valid empty
// result) as opposed to a storage fault.
func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound.Code
}
