// Package service implements the application's use cases on top of the store,
// the catalog gateway and the search index.
package service

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/store"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// fold normalizes s for case-insensitive comparison, including non-ASCII scripts.
// A Caser keeps state between calls, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// notFound converts store.ErrNotFound into a domain error with msg; other errors pass through.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return err
}

// Book list sort keys.
const (
	SortCreatedAt       = "createdAt"
	SortUpdatedAt       = "updatedAt"
	SortTitle           = "title"
	SortAuthor          = "author"
	SortReadingProgress = "readingProgress"
	SortPersonalRating  = "personalRating"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

func compareBooks(key string) func(a, b *domain.LibraryEntry) int {
	switch key {
	case SortUpdatedAt:
		return func(a, b *domain.LibraryEntry) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortTitle:
		return func(a, b *domain.LibraryEntry) int { return cmp.Compare(fold(a.Title), fold(b.Title)) }
	case SortAuthor:
		return func(a, b *domain.LibraryEntry) int { return cmp.Compare(fold(a.Author), fold(b.Author)) }
	case SortReadingProgress:
		return func(a, b *domain.LibraryEntry) int { return cmp.Compare(a.ReadingProgress, b.ReadingProgress) }
	case SortPersonalRating:
		return func(a, b *domain.LibraryEntry) int { return cmp.Compare(a.PersonalRating, b.PersonalRating) }
	default:
		return func(a, b *domain.LibraryEntry) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

// sortBooks orders books in place by key; ties fall back to ID so pages are stable.
func sortBooks(books []*domain.LibraryEntry, key, order string) {
	byKey := compareBooks(key)
	desc := order != OrderAsc
	slices.SortStableFunc(books, func(a, b *domain.LibraryEntry) int {
		c := byKey(a, b)
		if desc {
			c = -c
		}
		return cmp.Or(c, cmp.Compare(a.ID, b.ID))
	})
}
