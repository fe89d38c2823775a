package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerRatingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRatings",
		Method:      http.MethodGet,
		Path:        "/api/ratings",
		Summary:     "List rated books",
		Description: "Groups every rating by book with averages and comments",
		Tags:        []string{tagRatings},
	}, s.handleListRatings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookRatings",
		Method:      http.MethodGet,
		Path:        "/api/ratings/book/{bookId}",
		Summary:     "Get book ratings",
		Description: "Returns the average and individual ratings of one catalog book",
		Tags:        []string{tagRatings},
	}, s.handleBookRatings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserRatings",
		Method:      http.MethodGet,
		Path:        "/api/ratings/user/{userId}",
		Summary:     "Get user ratings",
		Description: "Returns every rating by a user, newest first",
		Tags:        []string{tagRatings},
		Security:    bearer,
	}, s.handleUserRatings)

	huma.Register(s.api, huma.Operation{
		OperationID:      "rateBook",
		Method:           http.MethodPost,
		Path:             "/api/ratings",
		Summary:          "Rate book",
		Description:      "Creates or replaces the caller's rating of a catalog book",
		Tags:             []string{tagRatings},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleRateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRating",
		Method:      http.MethodDelete,
		Path:        "/api/ratings/{ratingId}",
		Summary:     "Delete rating",
		Description: "Deletes one of the caller's ratings",
		Tags:        []string{tagRatings},
		Security:    bearer,
	}, s.handleDeleteRating)
}

// === DTOs ===

// ListRatingsInput carries the listing parameters.
type ListRatingsInput struct {
	Sort  string `query:"sort" doc:"rating or recent (default rating)"`
	Limit int    `query:"limit" doc:"Maximum books, 0 for all"`
}

// ListRatingsOutput wraps the grouped ratings for Huma.
type ListRatingsOutput struct {
	Body []domain.RatedBook
}

// BookRatingsInput selects a catalog book.
type BookRatingsInput struct {
	BookID string `path:"bookId" doc:"Catalog book ID"`
}

// BookRatingsOutput wraps book rating stats for Huma.
type BookRatingsOutput struct {
	Body domain.BookRatingStats
}

// UserRatingsOutput wraps a user's ratings for Huma.
type UserRatingsOutput struct {
	Body []*domain.Rating
}

// RateBookInput wraps the rating for Huma.
type RateBookInput struct {
	Body service.RateBookRequest
}

// RatingOutput wraps a rating for Huma. Status is 201 for a new rating, 200 for a replaced one.
type RatingOutput struct {
	Status int
	Body   *domain.Rating
}

// RatingPathInput selects a rating.
type RatingPathInput struct {
	RatingID string `path:"ratingId" doc:"Rating ID"`
}

// === Handlers ===

func (s *Server) handleListRatings(ctx context.Context, input *ListRatingsInput) (*ListRatingsOutput, error) {
	books, err := s.services.Rating.AllRatings(ctx, service.AllRatingsQuery{
		Sort:  input.Sort,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.RatedBook{}
	}
	return &ListRatingsOutput{Body: books}, nil
}

func (s *Server) handleBookRatings(ctx context.Context, input *BookRatingsInput) (*BookRatingsOutput, error) {
	stats, err := s.services.Rating.BookStats(ctx, input.BookID)
	if err != nil {
		return nil, err
	}
	return &BookRatingsOutput{Body: stats}, nil
}

func (s *Server) handleUserRatings(ctx context.Context, input *UserPathInput) (*UserRatingsOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	ratings, err := s.services.Rating.UserRatings(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []*domain.Rating{}
	}
	return &UserRatingsOutput{Body: ratings}, nil
}

func (s *Server) handleRateBook(ctx context.Context, input *RateBookInput) (*RatingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rating, created, err := s.services.Rating.Rate(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &RatingOutput{Status: status, Body: rating}, nil
}

func (s *Server) handleDeleteRating(ctx context.Context, input *RatingPathInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Rating.Delete(ctx, user.ID, input.RatingID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Rating deleted"}}, nil
}
