package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/elewand/elewand-server/internal/domain"
)

// CreateBook stores a new library entry and indexes it for search.
func (s *Store) CreateBook(ctx context.Context, book *domain.LibraryEntry) error {
	if err := s.Books.Create(ctx, book.ID, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	s.indexBook(ctx, book)
	return nil
}

// GetBook returns a library entry owned by userID.
// Entries owned by someone else are reported as not found.
func (s *Store) GetBook(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error) {
	book, err := s.Books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, ErrNotFound
	}
	return book, nil
}

// UpdateBook applies fn to the user's entry in one transaction and re-indexes it.
func (s *Store) UpdateBook(ctx context.Context, userID, bookID string, fn func(*domain.LibraryEntry) error) (*domain.LibraryEntry, error) {
	book, err := s.Books.Mutate(ctx, bookID, func(b *domain.LibraryEntry) error {
		if b.UserID != userID {
			return ErrNotFound
		}
		if err := fn(b); err != nil {
			return err
		}
		b.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.indexBook(ctx, book)
	return book, nil
}

// DeleteBook removes the user's entry. Returns ErrNotFound when absent or not owned.
func (s *Store) DeleteBook(ctx context.Context, userID, bookID string) error {
	if _, err := s.GetBook(ctx, userID, bookID); err != nil {
		return err
	}
	if err := s.Books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if err := s.searchIndexer.DeleteBook(ctx, bookID); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}
	return nil
}

// ListBooksByUser returns every entry in the user's library.
func (s *Store) ListBooksByUser(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	books, err := s.Books.ListByIndex(ctx, "user", userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// errLeftShelf marks an entry that moved off the shelf after it was listed.
var errLeftShelf = errors.New("entry no longer on shelf")

// MoveCustomShelfBooks re-points every entry on a custom shelf.
// An empty newName moves the entries to want-to-read. Returns the number of entries moved.
// Each entry is written in its own transaction, so a failed run can simply be repeated.
func (s *Store) MoveCustomShelfBooks(ctx context.Context, userID, oldName, newName string) (int, error) {
	books, err := s.ListBooksByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, b := range books {
		if !b.OnShelf(domain.ShelfCustom, oldName) {
			continue
		}
		_, err := s.UpdateBook(ctx, userID, b.ID, func(e *domain.LibraryEntry) error {
			if !e.OnShelf(domain.ShelfCustom, oldName) {
				return errLeftShelf
			}
			if newName == "" {
				e.Shelf = domain.ShelfWantToRead
				e.CustomShelfName = ""
				return nil
			}
			e.CustomShelfName = newName
			return nil
		})
		if errors.Is(err, errLeftShelf) || errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return moved, fmt.Errorf("move book %s: %w", b.ID, err)
		}
		moved++
	}
	return moved, nil
}

func (s *Store) indexBook(ctx context.Context, book *domain.LibraryEntry) {
	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}
