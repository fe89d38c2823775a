package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:      "addBook",
		Method:           http.MethodPost,
		Path:             "/api/books/{userId}",
		Summary:          "Add book",
		Description:      "Adds a book to the user's library",
		Tags:             []string{tagLibrary},
		Security:         bearer,
		DefaultStatus:    http.StatusCreated,
		SkipValidateBody: true,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID:      "updateBook",
		Method:           http.MethodPut,
		Path:             "/api/books/{userId}/{bookId}",
		Summary:          "Update book",
		Description:      "Partially updates a library entry; progress is recomputed when currentPage changes",
		Tags:             []string{tagLibrary},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/books/{userId}/{bookId}",
		Summary:     "Delete book",
		Description: "Removes a book from the user's library",
		Tags:        []string{tagLibrary},
		Security:    bearer,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID:      "moveBook",
		Method:           http.MethodPost,
		Path:             "/api/books/{userId}/{bookId}/move",
		Summary:          "Move book",
		Description:      "Moves a book to another shelf",
		Tags:             []string{tagLibrary},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleMoveBook)

	huma.Register(s.api, huma.Operation{
		OperationID:      "logReadingSession",
		Method:           http.MethodPost,
		Path:             "/api/books/{userId}/{bookId}/reading-session",
		Summary:          "Log reading session",
		Description:      "Appends a reading session and advances the current page",
		Tags:             []string{tagLibrary},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleReadingSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/books/{userId}/search",
		Summary:     "Search catalog",
		Description: "Searches the external book catalog",
		Tags:        []string{tagLibrary},
		Security:    bearer,
		Middlewares: huma.Middlewares{s.catalogRateLimit},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/books/{userId}/recommendations",
		Summary:     "Get recommendations",
		Description: "Suggests catalog books based on the shelves of the user's library",
		Tags:        []string{tagLibrary},
		Security:    bearer,
		Middlewares: huma.Middlewares{s.catalogRateLimit},
	}, s.handleRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/{userId}/books",
		Summary:     "List library",
		Description: "Lists the user's books with optional shelf filter, full-text query and sorting",
		Tags:        []string{tagLibrary},
		Security:    bearer,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingStats",
		Method:      http.MethodGet,
		Path:        "/api/books/{userId}/stats",
		Summary:     "Reading statistics",
		Description: "Aggregates the user's library, including year-to-date totals",
		Tags:        []string{tagLibrary},
		Security:    bearer,
	}, s.handleReadingStats)
}

// === DTOs ===

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.AddBookRequest
}

// BookPathInput selects one library entry.
type BookPathInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Library entry ID"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Library entry ID"`
	Body   service.UpdateBookRequest
}

// MoveBookInput wraps the move request for Huma.
type MoveBookInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Library entry ID"`
	Body   service.MoveBookRequest
}

// ReadingSessionInput wraps the reading session for Huma.
type ReadingSessionInput struct {
	UserID string `path:"userId" doc:"User ID"`
	BookID string `path:"bookId" doc:"Library entry ID"`
	Body   service.ReadingSessionRequest
}

// BookOutput wraps a library entry for Huma.
type BookOutput struct {
	Body *domain.LibraryEntry
}

// SearchCatalogInput carries the catalog query.
type SearchCatalogInput struct {
	UserID     string `path:"userId" doc:"User ID"`
	Q          string `query:"q" doc:"Search text"`
	MaxResults int    `query:"maxResults" doc:"Maximum results, 1-40 (default 10)"`
}

// SearchCatalogOutput wraps catalog results for Huma.
type SearchCatalogOutput struct {
	Body []domain.CatalogBook
}

// RecommendationsInput carries the recommendation parameters.
type RecommendationsInput struct {
	UserID     string `path:"userId" doc:"User ID"`
	MaxResults int    `query:"maxResults" doc:"Maximum recommendations, 1-40 (default 8)"`
	Refresh    bool   `query:"refresh" doc:"Accepted for compatibility; results are never cached"`
}

// RecommendationsOutput wraps recommendations for Huma.
type RecommendationsOutput struct {
	Body *domain.RecommendationResult
}

// ListBooksInput carries the library listing filters.
type ListBooksInput struct {
	UserID          string `path:"userId" doc:"User ID"`
	Shelf           string `query:"shelf" doc:"Shelf filter"`
	CustomShelfName string `query:"customShelfName" doc:"Custom shelf name when shelf=custom"`
	Q               string `query:"q" doc:"Full-text query over the library"`
	Sort            string `query:"sort" doc:"createdAt, updatedAt, title, author, readingProgress or personalRating"`
	Order           string `query:"order" doc:"asc or desc (default desc)"`
	Limit           int    `query:"limit" doc:"Maximum books, up to 500 (default 100)"`
}

// ListBooksResponse contains a page of library entries.
type ListBooksResponse struct {
	Books      []*domain.LibraryEntry `json:"books" doc:"Library entries"`
	TotalCount int                    `json:"totalCount" doc:"Number of entries returned"`
}

// ListBooksOutput wraps the listing for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// ReadingStatsOutput wraps reading statistics for Huma.
type ReadingStatsOutput struct {
	Body *domain.ReadingStats
}

// === Handlers ===

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.AddBook(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: entry}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.UpdateBook(ctx, input.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: entry}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookPathInput) (*MessageOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Library.DeleteBook(ctx, input.UserID, input.BookID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleMoveBook(ctx context.Context, input *MoveBookInput) (*BookOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.MoveBook(ctx, input.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: entry}, nil
}

func (s *Server) handleReadingSession(ctx context.Context, input *ReadingSessionInput) (*BookOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.LogReadingSession(ctx, input.UserID, input.BookID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: entry}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.Search(ctx, service.CatalogSearchQuery{
		Q:          input.Q,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	return &SearchCatalogOutput{Body: books}, nil
}

func (s *Server) handleRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	result, err := s.services.Recommendation.Recommend(ctx, input.UserID, input.MaxResults)
	if err != nil {
		return nil, err
	}
	return &RecommendationsOutput{Body: result}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	books, err := s.services.Library.ListBooks(ctx, input.UserID, service.ListBooksQuery{
		Shelf:           domain.ShelfName(input.Shelf),
		CustomShelfName: input.CustomShelfName,
		Q:               input.Q,
		Sort:            input.Sort,
		Order:           input.Order,
		Limit:           input.Limit,
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.LibraryEntry{}
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: books, TotalCount: len(books)}}, nil
}

func (s *Server) handleReadingStats(ctx context.Context, input *UserPathInput) (*ReadingStatsOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	stats, err := s.services.Library.Stats(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ReadingStatsOutput{Body: stats}, nil
}
