package service

import (
	"context"
	"errors"
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

// DefaultShelfPageSize is the page size of shelf book listings.
const DefaultShelfPageSize = 50

// ShelfService manages custom shelves and lists shelves with their counts.
type ShelfService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewShelfService creates a new shelf service.
func NewShelfService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *ShelfService {
	return &ShelfService{store: store, validator: validator, logger: logger, now: time.Now}
}

// CreateShelfRequest describes a new custom shelf.
type CreateShelfRequest struct {
	Name        string `json:"name" validate:"notblank,max=50"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon,omitempty" validate:"max=16"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty"`
	YearlyGoal  int    `json:"yearlyGoal,omitempty" validate:"gte=0"`
}

// UpdateShelfRequest is a partial shelf update.
type UpdateShelfRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=16"`
	IsPrivate   *bool   `json:"isPrivate,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	YearlyGoal  *int    `json:"yearlyGoal,omitempty" validate:"omitempty,gte=0"`
}

// ShelfBooksQuery pages through the books on one shelf.
type ShelfBooksQuery struct {
	CustomShelfName string
	Sort            string `validate:"omitempty,oneof=createdAt updatedAt title author readingProgress personalRating"`
	Order           string `validate:"omitempty,oneof=asc desc"`
	Limit           int    `validate:"gte=0,lte=500"`
	Skip            int    `validate:"gte=0"`
}

// ShelfBooksPage is one page of a shelf listing.
type ShelfBooksPage struct {
	Books      []*domain.LibraryEntry
	TotalCount int
	HasMore    bool
}

// ListShelves returns the default shelves followed by the user's custom shelves, each with its live count.
func (s *ShelfService) ListShelves(ctx context.Context, userID string) ([]domain.ShelfSummary, error) {
	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	custom, err := s.store.ListShelvesByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	defaultCounts := make(map[domain.ShelfName]int)
	customCounts := make(map[string]int)
	for _, b := range books {
		if b.Shelf == domain.ShelfCustom {
			customCounts[strings.ToLower(b.CustomShelfName)]++
			continue
		}
		defaultCounts[b.Shelf]++
	}

	out := make([]domain.ShelfSummary, 0, len(custom)+5)
	for _, d := range domain.DefaultShelves() {
		out = append(out, domain.ShelfSummary{
			Name:        string(d.Name),
			DisplayName: d.DisplayName,
			Icon:        d.Icon,
			Color:       d.Color,
			IsDefault:   true,
			BookCount:   defaultCounts[d.Name],
		})
	}
	for _, sh := range custom {
		created := sh.CreatedAt
		out = append(out, domain.ShelfSummary{
			ID:          sh.ID,
			Name:        sh.Name,
			DisplayName: sh.Name,
			Description: sh.Description,
			Icon:        sh.Icon,
			Color:       sh.Color,
			IsPrivate:   sh.IsPrivate,
			SortOrder:   sh.SortOrder,
			YearlyGoal:  sh.YearlyGoal,
			BookCount:   customCounts[strings.ToLower(sh.Name)],
			CreatedAt:   &created,
		})
	}
	return out, nil
}

// CreateShelf creates a custom shelf. Names are unique per user and may not shadow a default shelf.
func (s *ShelfService) CreateShelf(ctx context.Context, userID string, req CreateShelfRequest) (*domain.Shelf, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if isDefaultShelfName(name) {
		return nil, domainerrors.Conflictf("%q is a default shelf", name)
	}

	shelfID, err := id.Generate(id.PrefixShelf)
	if err != nil {
		return nil, fmt.Errorf("generate shelf ID: %w", err)
	}

	now := s.now()
	shelf := &domain.Shelf{
		Base:        domain.Base{ID: shelfID, CreatedAt: now, UpdatedAt: now},
		OwnerID:     userID,
		Name:        name,
		Description: req.Description,
		Color:       cmpOr(req.Color, domain.DefaultShelfColor),
		Icon:        cmpOr(req.Icon, domain.DefaultShelfIcon),
		IsPrivate:   req.IsPrivate,
		SortOrder:   req.SortOrder,
		YearlyGoal:  req.YearlyGoal,
	}

	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		if errors.Is(err, store.ErrShelfNameTaken) {
			return nil, domainerrors.AlreadyExists("a shelf with this name already exists")
		}
		return nil, fmt.Errorf("create shelf: %w", err)
	}

	s.logger.Info("shelf created", "shelf_id", shelfID, "owner_id", userID, "name", name)
	return shelf, nil
}

// UpdateShelf edits a custom shelf. A rename re-points the shelf's books to the new name.
func (s *ShelfService) UpdateShelf(ctx context.Context, userID, shelfID string, req UpdateShelfRequest) (*domain.Shelf, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	current, err := s.store.GetShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, notFound(err, "shelf not found")
	}

	oldName := current.Name
	newName := oldName
	if req.Name != nil {
		newName = strings.TrimSpace(*req.Name)
	}
	renamed := newName != oldName

	if renamed {
		if isDefaultShelfName(newName) {
			return nil, domainerrors.Conflictf("%q is a default shelf", newName)
		}
		if other, err := s.store.GetShelfByName(ctx, userID, newName); err == nil && other.ID != shelfID {
			return nil, domainerrors.AlreadyExists("a shelf with this name already exists")
		}
		if _, err := s.store.MoveCustomShelfBooks(ctx, userID, oldName, newName); err != nil {
			return nil, fmt.Errorf("re-point shelf books: %w", err)
		}
	}

	shelf, err := s.store.UpdateShelf(ctx, userID, shelfID, func(sh *domain.Shelf) error {
		sh.Name = newName
		if req.Description != nil {
			sh.Description = *req.Description
		}
		if req.Color != nil {
			sh.Color = cmpOr(*req.Color, domain.DefaultShelfColor)
		}
		if req.Icon != nil {
			sh.Icon = cmpOr(*req.Icon, domain.DefaultShelfIcon)
		}
		if req.IsPrivate != nil {
			sh.IsPrivate = *req.IsPrivate
		}
		if req.SortOrder != nil {
			sh.SortOrder = *req.SortOrder
		}
		if req.YearlyGoal != nil {
			sh.YearlyGoal = *req.YearlyGoal
		}
		return nil
	})
	if err != nil {
		if renamed {
			// Put the books back so they stay attached to the unchanged shelf.
			if _, rbErr := s.store.MoveCustomShelfBooks(ctx, userID, newName, oldName); rbErr != nil {
				s.logger.Error("failed to restore shelf books after rename failure", "shelf_id", shelfID, "error", rbErr)
			}
		}
		if errors.Is(err, store.ErrShelfNameTaken) {
			return nil, domainerrors.AlreadyExists("a shelf with this name already exists")
		}
		return nil, notFound(err, "shelf not found")
	}

	if renamed {
		s.logger.Info("shelf renamed", "shelf_id", shelfID, "from", oldName, "to", newName)
	}
	return shelf, nil
}

// DeleteShelf moves the shelf's books to want-to-read, then removes the shelf.
// Books are moved first so a failed delete can be retried without losing any.
func (s *ShelfService) DeleteShelf(ctx context.Context, userID, shelfID string) (int, error) {
	shelf, err := s.store.GetShelf(ctx, userID, shelfID)
	if err != nil {
		return 0, notFound(err, "shelf not found")
	}

	moved, err := s.store.MoveCustomShelfBooks(ctx, userID, shelf.Name, "")
	if err != nil {
		return moved, fmt.Errorf("move shelf books: %w", err)
	}
	if err := s.store.DeleteShelf(ctx, shelfID); err != nil {
		return moved, fmt.Errorf("delete shelf: %w", err)
	}

	s.logger.Info("shelf deleted", "shelf_id", shelfID, "owner_id", userID, "books_moved", moved)
	return moved, nil
}

// ShelfBooks pages through the books on a default or custom shelf.
func (s *ShelfService) ShelfBooks(ctx context.Context, userID string, shelf domain.ShelfName, q ShelfBooksQuery) (*ShelfBooksPage, error) {
	if !shelf.IsValid() {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"shelfName": "must be one of: " + strings.Join(domain.ShelfNames(), ", "),
		})
	}
	if shelf == domain.ShelfCustom && strings.TrimSpace(q.CustomShelfName) == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"customShelfName": "is required for the custom shelf",
		})
	}
	if err := s.validator.Validate(q); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultShelfPageSize
	}

	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	books = filterByShelf(books, shelf, q.CustomShelfName)
	sortBooks(books, q.Sort, q.Order)

	total := len(books)
	start := min(q.Skip, total)
	end := min(start+limit, total)

	return &ShelfBooksPage{
		Books:      books[start:end],
		TotalCount: total,
		HasMore:    end < total,
	}, nil
}

func isDefaultShelfName(name string) bool {
	for _, d := range domain.DefaultShelves() {
		if strings.EqualFold(name, string(d.Name)) || strings.EqualFold(name, d.DisplayName) {
			return true
		}
	}
	return strings.EqualFold(name, string(domain.ShelfCustom))
}

func cmpOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
