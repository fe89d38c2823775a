package service

import (
	"context"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/store"
)

// ActivityService builds the compact reading summary shown on profiles.
type ActivityService struct {
	store *store.Store
}

// NewActivityService creates a new activity service.
func NewActivityService(store *store.Store) *ActivityService {
	return &ActivityService{store: store}
}

// Activity summarizes a user's library and ratings.
func (s *ActivityService) Activity(ctx context.Context, userID string) (*domain.ActivityStats, error) {
	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ActivityStats{TotalBooks: len(books)}
	for _, b := range books {
		switch b.Shelf {
		case domain.ShelfRead:
			stats.CompletedBooks++
		case domain.ShelfCurrentlyReading:
			stats.CurrentlyReadingBooks++
		}
	}
	stats.TotalRatings, stats.AverageRating = userRatingSummary(ratings)
	return stats, nil
}
