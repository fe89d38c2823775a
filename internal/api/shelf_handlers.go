package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listShelves",
		Method:      http.MethodGet,
		Path:        "/api/shelves/{userId}",
		Summary:     "List shelves",
		Description: "Returns the default shelves followed by custom shelves, each with its book count",
		Tags:        []string{tagShelves},
		Security:    bearer,
	}, s.handleListShelves)

	huma.Register(s.api, huma.Operation{
		OperationID:      "createShelf",
		Method:           http.MethodPost,
		Path:             "/api/shelves/{userId}",
		Summary:          "Create shelf",
		Description:      "Creates a custom shelf",
		Tags:             []string{tagShelves},
		Security:         bearer,
		DefaultStatus:    http.StatusCreated,
		SkipValidateBody: true,
	}, s.handleCreateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID:      "updateShelf",
		Method:           http.MethodPut,
		Path:             "/api/shelves/{userId}/{shelfId}",
		Summary:          "Update shelf",
		Description:      "Updates a custom shelf. Renaming re-points the shelf's books",
		Tags:             []string{tagShelves},
		Security:         bearer,
		SkipValidateBody: true,
	}, s.handleUpdateShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteShelf",
		Method:      http.MethodDelete,
		Path:        "/api/shelves/{userId}/{shelfId}",
		Summary:     "Delete shelf",
		Description: "Deletes a custom shelf and moves its books to want-to-read",
		Tags:        []string{tagShelves},
		Security:    bearer,
	}, s.handleDeleteShelf)

	huma.Register(s.api, huma.Operation{
		OperationID: "getShelfBooks",
		Method:      http.MethodGet,
		Path:        "/api/shelves/{userId}/books/{shelfName}",
		Summary:     "List shelf books",
		Description: "Pages through the books on one shelf",
		Tags:        []string{tagShelves},
		Security:    bearer,
	}, s.handleShelfBooks)
}

// === DTOs ===

// ShelvesOutput wraps the shelf listing for Huma.
type ShelvesOutput struct {
	Body []domain.ShelfSummary
}

// CreateShelfInput wraps the create request for Huma.
type CreateShelfInput struct {
	UserID string `path:"userId" doc:"User ID"`
	Body   service.CreateShelfRequest
}

// UpdateShelfInput wraps the update request for Huma.
type UpdateShelfInput struct {
	UserID  string `path:"userId" doc:"User ID"`
	ShelfID string `path:"shelfId" doc:"Shelf ID"`
	Body    service.UpdateShelfRequest
}

// ShelfPathInput selects one custom shelf.
type ShelfPathInput struct {
	UserID  string `path:"userId" doc:"User ID"`
	ShelfID string `path:"shelfId" doc:"Shelf ID"`
}

// ShelfOutput wraps a custom shelf for Huma.
type ShelfOutput struct {
	Body *domain.Shelf
}

// DeleteShelfResponse reports how many books were moved off the deleted shelf.
type DeleteShelfResponse struct {
	Message    string `json:"message"`
	MovedBooks int    `json:"movedBooks" doc:"Books moved to want-to-read"`
}

// DeleteShelfOutput wraps the delete result for Huma.
type DeleteShelfOutput struct {
	Body DeleteShelfResponse
}

// ShelfBooksInput carries the shelf listing parameters.
type ShelfBooksInput struct {
	UserID          string `path:"userId" doc:"User ID"`
	ShelfName       string `path:"shelfName" doc:"want-to-read, currently-reading, read, dnf, favorites or custom"`
	CustomShelfName string `query:"customShelfName" doc:"Required when shelfName is custom"`
	Sort            string `query:"sort" doc:"Sort field (default createdAt)"`
	Order           string `query:"order" doc:"asc or desc (default desc)"`
	Limit           int    `query:"limit" doc:"Page size (default 50)"`
	Skip            int    `query:"skip" doc:"Entries to skip"`
}

// ShelfBooksResponse is one page of a shelf.
type ShelfBooksResponse struct {
	Books      []*domain.LibraryEntry `json:"books"`
	TotalCount int                    `json:"totalCount"`
	HasMore    bool                   `json:"hasMore"`
}

// ShelfBooksOutput wraps a shelf page for Huma.
type ShelfBooksOutput struct {
	Body ShelfBooksResponse
}

// === Handlers ===

func (s *Server) handleListShelves(ctx context.Context, input *UserPathInput) (*ShelvesOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelf.ListShelves(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &ShelvesOutput{Body: shelves}, nil
}

func (s *Server) handleCreateShelf(ctx context.Context, input *CreateShelfInput) (*ShelfOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.CreateShelf(ctx, input.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ShelfOutput{Body: shelf}, nil
}

func (s *Server) handleUpdateShelf(ctx context.Context, input *UpdateShelfInput) (*ShelfOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.UpdateShelf(ctx, input.UserID, input.ShelfID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ShelfOutput{Body: shelf}, nil
}

func (s *Server) handleDeleteShelf(ctx context.Context, input *ShelfPathInput) (*DeleteShelfOutput, error) {
	if _, err := s.RequireOwner(ctx, input.UserID); err != nil {
		return nil, err
	}

	moved, err := s.services.Shelf.DeleteShelf(ctx, input.UserID, input.ShelfID)
	if err != nil {
		return nil, err
	}
	return &DeleteShelfOutput{Body: DeleteShelfResponse{Message: "Shelf deleted", MovedBooks: moved}}, nil
}

func (s *Server) handleShelfBooks(ctx context.Context, input *ShelfBooksInput) (*ShelfBooksOutput, error) {
	if _, err := s.RequireReader(ctx, input.UserID); err != nil {
		return nil, err
	}

	page, err := s.services.Shelf.ShelfBooks(ctx, input.UserID, domain.ShelfName(input.ShelfName), service.ShelfBooksQuery{
		CustomShelfName: input.CustomShelfName,
		Sort:            input.Sort,
		Order:           input.Order,
		Limit:           input.Limit,
		Skip:            input.Skip,
	})
	if err != nil {
		return nil, err
	}

	books := page.Books
	if books == nil {
		books = []*domain.LibraryEntry{}
	}
	return &ShelfBooksOutput{Body: ShelfBooksResponse{
		Books:      books,
		TotalCount: page.TotalCount,
		HasMore:    page.HasMore,
	}}, nil
}
