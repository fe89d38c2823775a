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
	"github.com/elewand/elewand-server/internal/search"
	"github.com/elewand/elewand-server/internal/store"
	"github.com/elewand/elewand-server/internal/validation"
)

// LibrarySearcher runs full-text queries over a user's library.
type LibrarySearcher interface {
	SearchLibrary(ctx context.Context, userID, text string, limit int) ([]search.Hit, error)
}

// Book list limits.
const (
	DefaultBookListLimit = 100
	MaxBookListLimit     = 500
)

// LibraryService manages the entries in a user's personal library.
type LibraryService struct {
	store     *store.Store
	searcher  LibrarySearcher
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewLibraryService creates a new library service.
func NewLibraryService(store *store.Store, searcher LibrarySearcher, validator *validation.Validator, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:     store,
		searcher:  searcher,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// AddBookRequest describes a new library entry.
type AddBookRequest struct {
	Title           string              `json:"title" validate:"notblank,max=500"`
	Author          string              `json:"author" validate:"notblank,max=300"`
	ISBN            string              `json:"isbn,omitempty" validate:"max=20"`
	GoogleID        string              `json:"googleId,omitempty" validate:"max=100"`
	Description     string              `json:"description,omitempty" validate:"max=20000"`
	CoverImage      string              `json:"coverImage,omitempty" validate:"omitempty,url"`
	PageCount       int                 `json:"pageCount,omitempty" validate:"gte=0"`
	PublishedDate   string              `json:"publishedDate,omitempty"`
	Publisher       string              `json:"publisher,omitempty"`
	Language        string              `json:"language,omitempty"`
	Categories      []string            `json:"categories,omitempty"`
	Shelf           domain.ShelfName    `json:"shelf,omitempty" validate:"omitempty,shelf"`
	CustomShelfName string              `json:"customShelfName,omitempty" validate:"max=50"`
	CurrentPage     int                 `json:"currentPage,omitempty" validate:"gte=0"`
	PersonalRating  float64             `json:"personalRating,omitempty" validate:"gte=0,lte=5"`
	PersonalNotes   string              `json:"personalNotes,omitempty" validate:"max=5000"`
	Tags            []string            `json:"tags,omitempty"`
	IsPrivate       bool                `json:"isPrivate,omitempty"`
	ReadingGoal     *domain.ReadingGoal `json:"readingGoal,omitempty"`
}

// UpdateBookRequest is a partial update; nil fields are left alone.
type UpdateBookRequest struct {
	Title           *string             `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Author          *string             `json:"author,omitempty" validate:"omitempty,notblank,max=300"`
	ISBN            *string             `json:"isbn,omitempty" validate:"omitempty,max=20"`
	GoogleID        *string             `json:"googleId,omitempty"`
	Description     *string             `json:"description,omitempty" validate:"omitempty,max=20000"`
	CoverImage      *string             `json:"coverImage,omitempty" validate:"omitempty,url"`
	PageCount       *int                `json:"pageCount,omitempty" validate:"omitempty,gte=0"`
	PublishedDate   *string             `json:"publishedDate,omitempty"`
	Publisher       *string             `json:"publisher,omitempty"`
	Language        *string             `json:"language,omitempty"`
	Categories      []string            `json:"categories,omitempty"`
	Shelf           *domain.ShelfName   `json:"shelf,omitempty" validate:"omitempty,shelf"`
	CustomShelfName *string             `json:"customShelfName,omitempty" validate:"omitempty,max=50"`
	CurrentPage     *int                `json:"currentPage,omitempty" validate:"omitempty,gte=0"`
	PersonalRating  *float64            `json:"personalRating,omitempty" validate:"omitempty,gte=0,lte=5"`
	PersonalNotes   *string             `json:"personalNotes,omitempty" validate:"omitempty,max=5000"`
	Tags            []string            `json:"tags,omitempty"`
	IsPrivate       *bool               `json:"isPrivate,omitempty"`
	ReadingGoal     *domain.ReadingGoal `json:"readingGoal,omitempty"`
}

// MoveBookRequest moves an entry to another shelf.
type MoveBookRequest struct {
	Shelf           domain.ShelfName `json:"shelf" validate:"required,shelf"`
	CustomShelfName string           `json:"customShelfName,omitempty" validate:"max=50"`
}

// ReadingSessionRequest logs a stretch of reading.
type ReadingSessionRequest struct {
	Date      *time.Time `json:"date,omitempty"`
	PagesRead int        `json:"pagesRead" validate:"gte=0"`
	TimeSpent int        `json:"timeSpent" validate:"gte=0"`
	Notes     string     `json:"notes,omitempty" validate:"max=2000"`
}

// ListBooksQuery filters and orders a library listing.
type ListBooksQuery struct {
	Shelf           domain.ShelfName `validate:"omitempty,shelf"`
	CustomShelfName string
	Q               string
	Sort            string `validate:"omitempty,oneof=createdAt updatedAt title author readingProgress personalRating"`
	Order           string `validate:"omitempty,oneof=asc desc"`
	Limit           int    `validate:"gte=0,lte=500"`
}

// AddBook stores a new entry. Custom shelves must exist and be named.
func (s *LibraryService) AddBook(ctx context.Context, userID string, req AddBookRequest) (*domain.LibraryEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	shelf := req.Shelf
	if shelf == "" {
		shelf = domain.ShelfWantToRead
	}
	if err := s.checkCustomShelf(ctx, userID, shelf, req.CustomShelfName); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.now()
	entry := &domain.LibraryEntry{
		Base:           domain.Base{ID: bookID, CreatedAt: now, UpdatedAt: now},
		UserID:         userID,
		Title:          strings.TrimSpace(req.Title),
		Author:         strings.TrimSpace(req.Author),
		ISBN:           req.ISBN,
		GoogleID:       req.GoogleID,
		Description:    req.Description,
		CoverImage:     req.CoverImage,
		PageCount:      req.PageCount,
		PublishedDate:  req.PublishedDate,
		Publisher:      req.Publisher,
		Language:       req.Language,
		Categories:     req.Categories,
		CurrentPage:    req.CurrentPage,
		PersonalRating: req.PersonalRating,
		PersonalNotes:  req.PersonalNotes,
		Tags:           req.Tags,
		IsPrivate:      req.IsPrivate,
		ReadingGoal:    req.ReadingGoal,
	}
	entry.ApplyDefaults()
	entry.Shelf = ""
	if err := entry.MoveTo(shelf, req.CustomShelfName, now); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	entry.RecomputeProgress(now)

	if err := s.store.CreateBook(ctx, entry); err != nil {
		return nil, fmt.Errorf("add book: %w", err)
	}

	s.logger.Info("book added", "user_id", userID, "book_id", bookID, "shelf", entry.Shelf)
	return entry, nil
}

// UpdateBook applies a partial update. A shelf change follows the same rules as MoveBook.
func (s *LibraryService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.LibraryEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Shelf != nil {
		custom := ""
		if req.CustomShelfName != nil {
			custom = *req.CustomShelfName
		}
		if err := s.checkCustomShelf(ctx, userID, *req.Shelf, custom); err != nil {
			return nil, err
		}
	}

	entry, err := s.store.UpdateBook(ctx, userID, bookID, func(e *domain.LibraryEntry) error {
		return s.applyUpdate(e, req)
	})
	if err != nil {
		return nil, s.bookError(err)
	}
	return entry, nil
}

func (s *LibraryService) applyUpdate(e *domain.LibraryEntry, req UpdateBookRequest) error {
	now := s.now()

	setString(&e.Title, req.Title, true)
	setString(&e.Author, req.Author, true)
	setString(&e.ISBN, req.ISBN, false)
	setString(&e.GoogleID, req.GoogleID, false)
	setString(&e.Description, req.Description, false)
	setString(&e.CoverImage, req.CoverImage, false)
	setString(&e.PublishedDate, req.PublishedDate, false)
	setString(&e.Publisher, req.Publisher, false)
	setString(&e.Language, req.Language, true)
	setString(&e.PersonalNotes, req.PersonalNotes, false)
	if req.Categories != nil {
		e.Categories = req.Categories
	}
	if req.Tags != nil {
		e.Tags = req.Tags
	}
	if req.PersonalRating != nil {
		e.PersonalRating = *req.PersonalRating
	}
	if req.IsPrivate != nil {
		e.IsPrivate = *req.IsPrivate
	}
	if req.ReadingGoal != nil {
		e.ReadingGoal = req.ReadingGoal
	}

	if req.Shelf != nil {
		custom := ""
		if req.CustomShelfName != nil {
			custom = *req.CustomShelfName
		}
		if err := e.MoveTo(*req.Shelf, custom, now); err != nil {
			return domainerrors.Validation(err.Error())
		}
	} else if req.CustomShelfName != nil && e.Shelf == domain.ShelfCustom {
		if err := e.MoveTo(domain.ShelfCustom, *req.CustomShelfName, now); err != nil {
			return domainerrors.Validation(err.Error())
		}
	}

	progressChanged := false
	if req.PageCount != nil {
		e.PageCount = *req.PageCount
		progressChanged = true
	}
	if req.CurrentPage != nil {
		e.CurrentPage = *req.CurrentPage
		progressChanged = true
	}
	if progressChanged && e.PageCount > 0 {
		e.RecomputeProgress(now)
	}
	return nil
}

func setString(dst *string, v *string, trim bool) {
	if v == nil {
		return
	}
	if trim {
		*dst = strings.TrimSpace(*v)
		return
	}
	*dst = *v
}

// DeleteBook removes an entry from the user's library.
func (s *LibraryService) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := s.store.DeleteBook(ctx, userID, bookID); err != nil {
		return s.bookError(err)
	}
	s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	return nil
}

// MoveBook puts an entry on another shelf.
func (s *LibraryService) MoveBook(ctx context.Context, userID, bookID string, req MoveBookRequest) (*domain.LibraryEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCustomShelf(ctx, userID, req.Shelf, req.CustomShelfName); err != nil {
		return nil, err
	}

	entry, err := s.store.UpdateBook(ctx, userID, bookID, func(e *domain.LibraryEntry) error {
		if err := e.MoveTo(req.Shelf, req.CustomShelfName, s.now()); err != nil {
			return domainerrors.Validation(err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, s.bookError(err)
	}
	return entry, nil
}

// LogReadingSession appends a session and advances progress.
func (s *LibraryService) LogReadingSession(ctx context.Context, userID, bookID string, req ReadingSessionRequest) (*domain.LibraryEntry, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session := domain.ReadingSession{
		PagesRead: req.PagesRead,
		TimeSpent: req.TimeSpent,
		Notes:     req.Notes,
	}
	if req.Date != nil {
		session.Date = *req.Date
	}

	entry, err := s.store.UpdateBook(ctx, userID, bookID, func(e *domain.LibraryEntry) error {
		e.LogSession(session, s.now())
		return nil
	})
	if err != nil {
		return nil, s.bookError(err)
	}
	return entry, nil
}

// ListBooks returns the user's entries filtered by shelf and, when Q is set, by full-text match.
// With Q and no explicit sort, results keep relevance order.
func (s *LibraryService) ListBooks(ctx context.Context, userID string, q ListBooksQuery) ([]*domain.LibraryEntry, error) {
	if err := s.validator.Validate(q); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit == 0 {
		limit = DefaultBookListLimit
	}

	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	books = filterByShelf(books, q.Shelf, q.CustomShelfName)

	if strings.TrimSpace(q.Q) != "" {
		hits, err := s.searcher.SearchLibrary(ctx, userID, q.Q, MaxBookListLimit)
		if err != nil {
			return nil, fmt.Errorf("search library: %w", err)
		}
		books = orderByHits(books, hits)
		if q.Sort != "" {
			sortBooks(books, q.Sort, q.Order)
		}
	} else {
		sortBooks(books, q.Sort, q.Order)
	}

	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func filterByShelf(books []*domain.LibraryEntry, shelf domain.ShelfName, custom string) []*domain.LibraryEntry {
	if shelf == "" {
		return books
	}
	out := books[:0:0]
	for _, b := range books {
		// custom without a name lists every custom-shelved entry
		if shelf == domain.ShelfCustom && strings.TrimSpace(custom) == "" {
			if b.Shelf == domain.ShelfCustom {
				out = append(out, b)
			}
			continue
		}
		if b.OnShelf(shelf, custom) {
			out = append(out, b)
		}
	}
	return out
}

func orderByHits(books []*domain.LibraryEntry, hits []search.Hit) []*domain.LibraryEntry {
	byID := make(map[string]*domain.LibraryEntry, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]*domain.LibraryEntry, 0, len(hits))
	for _, h := range hits {
		if b, ok := byID[h.ID]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Stats summarizes the user's library.
func (s *LibraryService) Stats(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	books, err := s.store.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return readingStats(books, s.now()), nil
}

func readingStats(books []*domain.LibraryEntry, now time.Time) *domain.ReadingStats {
	stats := &domain.ReadingStats{
		TotalBooks:  len(books),
		ShelfCounts: make(map[domain.ShelfName]int),
	}

	var ratingSum float64
	rated := 0
	for _, b := range books {
		stats.ShelfCounts[b.Shelf]++
		switch b.Shelf {
		case domain.ShelfRead:
			stats.BooksRead++
		case domain.ShelfCurrentlyReading:
			stats.CurrentlyReading++
		}

		stats.TotalPages += b.PageCount
		stats.PagesRead += b.CurrentPage
		stats.TotalReadingTime += b.ReadingTime

		if b.PersonalRating > 0 {
			ratingSum += b.PersonalRating
			rated++
		}
		if b.FinishedReading != nil && b.FinishedReading.Year() == now.Year() {
			stats.BooksThisYear++
			stats.PagesThisYear += b.PageCount
		}
	}

	if rated > 0 {
		stats.AverageRating = domain.Round1(ratingSum / float64(rated))
	}
	if stats.TotalPages > 0 {
		stats.ReadingEfficiency = domain.Round1(float64(stats.PagesRead) / float64(stats.TotalPages) * 100)
	}
	return stats
}

// checkCustomShelf requires a name for the custom shelf and that the named shelf exists.
func (s *LibraryService) checkCustomShelf(ctx context.Context, userID string, shelf domain.ShelfName, name string) error {
	if shelf != domain.ShelfCustom {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"customShelfName": "is required for the custom shelf",
		})
	}
	if _, err := s.store.GetShelfByName(ctx, userID, name); err != nil {
		return notFound(err, "custom shelf not found")
	}
	return nil
}

func (s *LibraryService) bookError(err error) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return notFound(err, "book not found")
}
