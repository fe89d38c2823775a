package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/search"
	"github.com/elewand/elewand-server/internal/store"
)

func setupLibrary(t *testing.T) (*LibraryService, *ShelfService, *store.Store) {
	t.Helper()
	s := setupTestStore(t)

	idx, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	s.SetSearchIndexer(idx)

	v := newValidator()
	return NewLibraryService(s, idx, v, testLogger()), NewShelfService(s, v, testLogger()), s
}

func TestAddBook_Defaults(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "  Dune ", Author: "Frank Herbert", PageCount: 400})
	require.NoError(t, err)

	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, domain.ShelfWantToRead, book.Shelf)
	assert.Equal(t, domain.DefaultLanguage, book.Language)
	assert.Empty(t, book.CustomShelfName)
	assert.Zero(t, book.ReadingProgress)
	assert.Nil(t, book.StartedReading)
}

func TestAddBook_ShelfTransitions(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	reading, err := lib.AddBook(ctx, "usr-1", AddBookRequest{
		Title: "A", Author: "B", PageCount: 200, CurrentPage: 50, Shelf: domain.ShelfCurrentlyReading,
	})
	require.NoError(t, err)
	assert.NotNil(t, reading.StartedReading)
	assert.InDelta(t, 25.0, reading.ReadingProgress, 0.001)

	read, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "C", Author: "D", PageCount: 300, Shelf: domain.ShelfRead})
	require.NoError(t, err)
	assert.NotNil(t, read.FinishedReading)
	assert.Equal(t, 300, read.CurrentPage)
	assert.InDelta(t, 100.0, read.ReadingProgress, 0.001)
}

func TestAddBook_Validation(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	_, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: " ", Author: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", Shelf: "nope"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", Shelf: domain.ShelfCustom})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", Shelf: domain.ShelfCustom, CustomShelfName: "Missing"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAddBook_CustomShelf(t *testing.T) {
	lib, shelves, _ := setupLibrary(t)
	ctx := context.Background()

	_, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Beach Reads"})
	require.NoError(t, err)

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{
		Title: "x", Author: "y", Shelf: domain.ShelfCustom, CustomShelfName: "beach reads",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfCustom, book.Shelf)
	assert.Equal(t, "beach reads", book.CustomShelfName)

	// Another user's shelf of the same name does not count.
	_, err = lib.AddBook(ctx, "usr-2", AddBookRequest{
		Title: "x", Author: "y", Shelf: domain.ShelfCustom, CustomShelfName: "Beach Reads",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateBook_ProgressAutoCompletes(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", PageCount: 100, Shelf: domain.ShelfCurrentlyReading})
	require.NoError(t, err)

	page := 100
	updated, err := lib.UpdateBook(ctx, "usr-1", book.ID, UpdateBookRequest{CurrentPage: &page})
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfRead, updated.Shelf)
	assert.InDelta(t, 100.0, updated.ReadingProgress, 0.001)
	assert.NotNil(t, updated.FinishedReading)
}

func TestUpdateBook_NotOwned(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y"})
	require.NoError(t, err)

	title := "stolen"
	_, err = lib.UpdateBook(ctx, "usr-2", book.ID, UpdateBookRequest{Title: &title})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.ErrorIs(t, lib.DeleteBook(ctx, "usr-2", book.ID), domainerrors.ErrNotFound)
	require.NoError(t, lib.DeleteBook(ctx, "usr-1", book.ID))
	assert.ErrorIs(t, lib.DeleteBook(ctx, "usr-1", book.ID), domainerrors.ErrNotFound)
}

func TestMoveBook(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", PageCount: 250})
	require.NoError(t, err)

	moved, err := lib.MoveBook(ctx, "usr-1", book.ID, MoveBookRequest{Shelf: domain.ShelfCurrentlyReading})
	require.NoError(t, err)
	require.NotNil(t, moved.StartedReading)
	started := *moved.StartedReading

	moved, err = lib.MoveBook(ctx, "usr-1", book.ID, MoveBookRequest{Shelf: domain.ShelfRead})
	require.NoError(t, err)
	assert.Equal(t, 250, moved.CurrentPage)
	assert.InDelta(t, 100.0, moved.ReadingProgress, 0.001)
	assert.NotNil(t, moved.FinishedReading)
	assert.True(t, started.Equal(*moved.StartedReading))

	_, err = lib.MoveBook(ctx, "usr-1", book.ID, MoveBookRequest{Shelf: domain.ShelfCustom})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLogReadingSession(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "x", Author: "y", PageCount: 100, Shelf: domain.ShelfCurrentlyReading})
	require.NoError(t, err)

	after, err := lib.LogReadingSession(ctx, "usr-1", book.ID, ReadingSessionRequest{PagesRead: 40, TimeSpent: 30})
	require.NoError(t, err)
	assert.Equal(t, 40, after.CurrentPage)
	assert.Equal(t, 30, after.ReadingTime)
	assert.Len(t, after.ReadingSessions, 1)
	assert.InDelta(t, 40.0, after.ReadingProgress, 0.001)

	after, err = lib.LogReadingSession(ctx, "usr-1", book.ID, ReadingSessionRequest{PagesRead: 500, TimeSpent: 10})
	require.NoError(t, err)
	assert.Equal(t, 100, after.CurrentPage, "pages are capped at the page count")
	assert.Equal(t, domain.ShelfRead, after.Shelf)

	_, err = lib.LogReadingSession(ctx, "usr-1", book.ID, ReadingSessionRequest{PagesRead: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLogReadingSession_ProgressNeverExceedsBounds(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		pageCount := rapid.IntRange(1, 2000).Draw(rt, "pageCount")
		book, err := lib.AddBook(ctx, "usr-prop", AddBookRequest{
			Title: "x", Author: "y", PageCount: pageCount, Shelf: domain.ShelfCurrentlyReading,
		})
		if err != nil {
			rt.Fatalf("add: %v", err)
		}

		sessions := rapid.SliceOfN(rapid.IntRange(0, 500), 1, 10).Draw(rt, "pages")
		for _, pages := range sessions {
			book, err = lib.LogReadingSession(ctx, "usr-prop", book.ID, ReadingSessionRequest{PagesRead: pages})
			if err != nil {
				rt.Fatalf("log: %v", err)
			}
			if book.CurrentPage > pageCount {
				rt.Fatalf("currentPage %d exceeds pageCount %d", book.CurrentPage, pageCount)
			}
			if book.ReadingProgress > 100 {
				rt.Fatalf("progress %f above 100", book.ReadingProgress)
			}
			if book.ReadingProgress >= 100 && book.Shelf != domain.ShelfRead {
				rt.Fatalf("finished book left on %s", book.Shelf)
			}
		}
	})
}

func TestListBooks_FilterSortAndSearch(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	add := func(title, author string, shelf domain.ShelfName, offset time.Duration) {
		lib.now = fixedClock(base.Add(offset))
		_, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: title, Author: author, Shelf: shelf})
		require.NoError(t, err)
	}
	add("The Hobbit", "J.R.R. Tolkien", domain.ShelfRead, 0)
	add("Dune", "Frank Herbert", domain.ShelfWantToRead, time.Hour)
	add("Emma", "Jane Austen", domain.ShelfRead, 2*time.Hour)

	all, err := lib.ListBooks(ctx, "usr-1", ListBooksQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Emma", all[0].Title, "newest first by default")

	read, err := lib.ListBooks(ctx, "usr-1", ListBooksQuery{Shelf: domain.ShelfRead, Sort: SortTitle, Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "Emma", read[0].Title)
	assert.Equal(t, "The Hobbit", read[1].Title)

	limited, err := lib.ListBooks(ctx, "usr-1", ListBooksQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	found, err := lib.ListBooks(ctx, "usr-1", ListBooksQuery{Q: "hobbit"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "The Hobbit", found[0].Title)

	none, err := lib.ListBooks(ctx, "usr-2", ListBooksQuery{Q: "hobbit"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = lib.ListBooks(ctx, "usr-1", ListBooksQuery{Limit: MaxBookListLimit + 1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestStats(t *testing.T) {
	lib, _, _ := setupLibrary(t)
	ctx := context.Background()
	lib.now = fixedClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))

	_, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "a", Author: "x", PageCount: 100, Shelf: domain.ShelfRead, PersonalRating: 5})
	require.NoError(t, err)
	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "b", Author: "x", PageCount: 300, CurrentPage: 100, Shelf: domain.ShelfCurrentlyReading, PersonalRating: 4})
	require.NoError(t, err)
	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "c", Author: "x"})
	require.NoError(t, err)

	stats, err := lib.Stats(ctx, "usr-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 1, stats.BooksRead)
	assert.Equal(t, 1, stats.CurrentlyReading)
	assert.Equal(t, 400, stats.TotalPages)
	assert.Equal(t, 200, stats.PagesRead)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
	assert.Equal(t, 1, stats.BooksThisYear)
	assert.Equal(t, 100, stats.PagesThisYear)
	assert.InDelta(t, 50.0, stats.ReadingEfficiency, 0.001)
	assert.Equal(t, 1, stats.ShelfCounts[domain.ShelfWantToRead])
}

func TestStats_EmptyLibrary(t *testing.T) {
	lib, _, _ := setupLibrary(t)

	stats, err := lib.Stats(context.Background(), "usr-none")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBooks)
	assert.Zero(t, stats.ReadingEfficiency)
	assert.Zero(t, stats.AverageRating)
}
