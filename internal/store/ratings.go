package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/elewand/elewand-server/internal/domain"
)

func ratingKey(userID, bookID string) string {
	return userID + ":" + bookID
}

// GetUserRating returns the user's rating for a catalog book.
func (s *Store) GetUserRating(ctx context.Context, userID, bookID string) (*domain.Rating, error) {
	return s.Ratings.GetByIndex(ctx, "user_book", ratingKey(userID, bookID))
}

// UpsertRating creates the user's rating for the book or updates the existing one in place.
// apply receives either a fresh rating or the stored one. created reports which happened.
func (s *Store) UpsertRating(ctx context.Context, userID, bookID string, fresh *domain.Rating, apply func(*domain.Rating)) (r *domain.Rating, created bool, err error) {
	existing, err := s.GetUserRating(ctx, userID, bookID)
	switch {
	case errors.Is(err, ErrNotFound):
		apply(fresh)
		err = s.Ratings.Create(ctx, fresh.ID, fresh)
		if err == nil {
			return fresh, true, nil
		}
		if !errors.Is(err, ErrAlreadyExists) {
			return nil, false, fmt.Errorf("create rating: %w", err)
		}
		// Lost a race with a concurrent first rating; fall through to update theirs.
		existing, err = s.GetUserRating(ctx, userID, bookID)
		if err != nil {
			return nil, false, err
		}
	case err != nil:
		return nil, false, err
	}

	updated, err := s.Ratings.Mutate(ctx, existing.ID, func(r *domain.Rating) error {
		apply(r)
		r.Touch()
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("update rating: %w", err)
	}
	return updated, false, nil
}

// GetRating retrieves a rating by ID.
func (s *Store) GetRating(ctx context.Context, id string) (*domain.Rating, error) {
	return s.Ratings.Get(ctx, id)
}

// DeleteRating removes a rating by ID.
func (s *Store) DeleteRating(ctx context.Context, id string) error {
	return s.Ratings.Delete(ctx, id)
}

// ListRatingsByBook returns every rating of a catalog book.
func (s *Store) ListRatingsByBook(ctx context.Context, bookID string) ([]*domain.Rating, error) {
	return s.Ratings.ListByIndex(ctx, "book", bookID)
}

// ListRatingsByUser returns the user's ratings, newest first.
func (s *Store) ListRatingsByUser(ctx context.Context, userID string) ([]*domain.Rating, error) {
	ratings, err := s.Ratings.ListByIndex(ctx, "user", userID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	slices.SortStableFunc(ratings, func(a, b *domain.Rating) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return ratings, nil
}

// ListRatings returns every rating in the system.
func (s *Store) ListRatings(ctx context.Context) ([]*domain.Rating, error) {
	return s.Ratings.All(ctx)
}
