package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/id"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

// RatingService handles the catalog-wide ratings and comments.
type RatingService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewRatingService creates a new rating service.
func NewRatingService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *RatingService {
	return &RatingService{store: store, validator: validator, logger: logger, now: time.Now}
}

// RateBookRequest creates or replaces the caller's rating of a catalog book.
type RateBookRequest struct {
	BookID     string `json:"bookId" validate:"notblank"`
	BookTitle  string `json:"bookTitle" validate:"notblank"`
	BookAuthor string `json:"bookAuthor" validate:"notblank"`
	BookCover  string `json:"bookCover,omitempty"`
	Rating     int    `json:"rating" validate:"gte=1,lte=5"`
	Comment    string `json:"comment,omitempty" validate:"max=1000"`
}

// AllRatingsQuery controls the catalog-wide listing.
type AllRatingsQuery struct {
	Sort  string `validate:"omitempty,oneof=rating recent"`
	Limit int    `validate:"gte=0"`
}

// Rate upserts the user's rating. created is true when no earlier rating existed.
func (s *RatingService) Rate(ctx context.Context, userID string, req RateBookRequest) (*domain.Rating, bool, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, false, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, false, notFound(err, "user not found")
	}
	if !user.IsPublic() {
		return nil, false, domainerrors.Forbidden("private profiles cannot rate books")
	}

	ratingID, err := id.Generate(id.PrefixRating)
	if err != nil {
		return nil, false, fmt.Errorf("generate rating ID: %w", err)
	}

	bookID := strings.TrimSpace(req.BookID)
	now := s.now()
	fresh := &domain.Rating{
		Base:   domain.Base{ID: ratingID, CreatedAt: now, UpdatedAt: now},
		UserID: userID,
		BookID: bookID,
	}

	rating, created, err := s.store.UpsertRating(ctx, userID, bookID, fresh, func(r *domain.Rating) {
		r.UserName = user.Name
		r.BookTitle = strings.TrimSpace(req.BookTitle)
		r.BookAuthor = strings.TrimSpace(req.BookAuthor)
		r.BookCover = req.BookCover
		r.Rating = req.Rating
		r.Comment = strings.TrimSpace(req.Comment)
	})
	if err != nil {
		return nil, false, fmt.Errorf("save rating: %w", err)
	}

	s.logger.Info("book rated",
		"user_id", userID,
		"book_id", bookID,
		"rating", rating.Rating,
		"created", created,
	)
	return rating, created, nil
}

// Delete removes a rating. Only its author may delete it.
func (s *RatingService) Delete(ctx context.Context, userID, ratingID string) error {
	rating, err := s.store.GetRating(ctx, ratingID)
	if err != nil {
		return notFound(err, "rating not found")
	}
	if rating.UserID != userID {
		return domainerrors.Forbidden("you can only delete your own ratings")
	}
	if err := s.store.DeleteRating(ctx, ratingID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

// BookStats aggregates every rating of one catalog book.
func (s *RatingService) BookStats(ctx context.Context, bookID string) (domain.BookRatingStats, error) {
	ratings, err := s.store.ListRatingsByBook(ctx, bookID)
	if err != nil {
		return domain.BookRatingStats{}, err
	}
	return domain.AggregateBookRatings(bookID, ratings), nil
}

// AllRatings lists rated books with their averages and comments.
func (s *RatingService) AllRatings(ctx context.Context, q AllRatingsQuery) ([]domain.RatedBook, error) {
	if err := s.validator.Validate(q); err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return nil, err
	}
	order := domain.RatingSort(q.Sort)
	if order == "" {
		order = domain.RatingSortRating
	}
	return domain.AggregateRatedBooks(ratings, order, q.Limit), nil
}

// UserRatings returns every rating by a user, newest first.
func (s *RatingService) UserRatings(ctx context.Context, userID string) ([]*domain.Rating, error) {
	return s.store.ListRatingsByUser(ctx, userID)
}

// userRatingSummary returns the count and rounded mean of a user's ratings.
func userRatingSummary(ratings []*domain.Rating) (int, float64) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return len(ratings), domain.Round1(float64(sum) / float64(len(ratings)))
}
