package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/elewand/elewand-server/internal/domain"
)

// ErrShelfNameTaken is returned when a user already has a shelf with the same name.
var ErrShelfNameTaken = ErrAlreadyExists.WithMessage("shelf name already in use")

func shelfNameKey(ownerID, name string) string {
	return ownerID + ":" + strings.ToLower(strings.TrimSpace(name))
}

// CreateShelf stores a new custom shelf.
func (s *Store) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	if err := s.Shelves.Create(ctx, shelf.ID, shelf); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrShelfNameTaken
		}
		return fmt.Errorf("create shelf: %w", err)
	}
	return nil
}

// GetShelf returns a shelf owned by ownerID.
func (s *Store) GetShelf(ctx context.Context, ownerID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.Shelves.Get(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return shelf, nil
}

// GetShelfByName finds a user's shelf by name, ignoring case.
func (s *Store) GetShelfByName(ctx context.Context, ownerID, name string) (*domain.Shelf, error) {
	return s.Shelves.GetByIndex(ctx, "owner_name", shelfNameKey(ownerID, name))
}

// UpdateShelf applies fn to the owner's shelf. Renaming onto a taken name fails with ErrShelfNameTaken.
func (s *Store) UpdateShelf(ctx context.Context, ownerID, shelfID string, fn func(*domain.Shelf) error) (*domain.Shelf, error) {
	shelf, err := s.Shelves.Mutate(ctx, shelfID, func(sh *domain.Shelf) error {
		if sh.OwnerID != ownerID {
			return ErrNotFound
		}
		if err := fn(sh); err != nil {
			return err
		}
		sh.Touch()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrShelfNameTaken
		}
		return nil, err
	}
	return shelf, nil
}

// DeleteShelf removes a shelf record. It does not touch the books on it.
func (s *Store) DeleteShelf(ctx context.Context, shelfID string) error {
	return s.Shelves.Delete(ctx, shelfID)
}

// ListShelvesByOwner returns the user's custom shelves ordered by sortOrder, then creation time.
func (s *Store) ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	shelves, err := s.Shelves.ListByIndex(ctx, "owner", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	slices.SortStableFunc(shelves, func(a, b *domain.Shelf) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			a.CreatedAt.Compare(b.CreatedAt),
		)
	})
	return shelves, nil
}
