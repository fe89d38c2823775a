package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elewand/elewand-server/internal/domain"
	domainerrors "github.com/elewand/elewand-server/internal/errors"
)

func TestCreateShelf(t *testing.T) {
	_, shelves, _ := setupLibrary(t)
	ctx := context.Background()

	shelf, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "  Summer  "})
	require.NoError(t, err)
	assert.Equal(t, "Summer", shelf.Name)
	assert.Equal(t, domain.DefaultShelfColor, shelf.Color)
	assert.Equal(t, domain.DefaultShelfIcon, shelf.Icon)
	assert.Equal(t, "usr-1", shelf.OwnerID)

	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "SUMMER"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	// Names are unique per user only.
	_, err = shelves.CreateShelf(ctx, "usr-2", CreateShelfRequest{Name: "Summer"})
	assert.NoError(t, err)
}

func TestCreateShelf_RejectsDefaultNames(t *testing.T) {
	_, shelves, _ := setupLibrary(t)
	ctx := context.Background()

	for _, name := range []string{"read", "Want to Read", "DNF", "Did Not Finish", "custom"} {
		_, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: name})
		assert.ErrorIs(t, err, domainerrors.ErrConflict, name)
	}
}

func TestCreateShelf_Validation(t *testing.T) {
	_, shelves, _ := setupLibrary(t)
	ctx := context.Background()

	_, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: string(long)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "ok", Color: "red"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestListShelves(t *testing.T) {
	lib, shelves, _ := setupLibrary(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	shelves.now = fixedClock(base.Add(time.Hour))
	_, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Later", SortOrder: 1})
	require.NoError(t, err)
	shelves.now = fixedClock(base.Add(2 * time.Hour))
	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Second"})
	require.NoError(t, err)
	shelves.now = fixedClock(base)
	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "First"})
	require.NoError(t, err)

	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "a", Author: "x", Shelf: domain.ShelfCustom, CustomShelfName: "first"})
	require.NoError(t, err)
	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "b", Author: "x", Shelf: domain.ShelfCustom, CustomShelfName: "First"})
	require.NoError(t, err)
	_, err = lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "c", Author: "x", Shelf: domain.ShelfRead})
	require.NoError(t, err)

	list, err := shelves.ListShelves(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, list, 8)

	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"want-to-read", "currently-reading", "read", "favorites", "dnf", "First", "Second", "Later"}, names)

	for _, s := range list[:5] {
		assert.True(t, s.IsDefault)
		assert.Empty(t, s.ID)
	}
	assert.Equal(t, 1, list[2].BookCount)
	assert.False(t, list[5].IsDefault)
	assert.NotEmpty(t, list[5].ID)
	assert.Equal(t, 2, list[5].BookCount)
	assert.Equal(t, 0, list[6].BookCount)
}

func TestUpdateShelf_RenameRepointsBooks(t *testing.T) {
	lib, shelves, _ := setupLibrary(t)
	ctx := context.Background()

	shelf, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Old"})
	require.NoError(t, err)
	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Taken"})
	require.NoError(t, err)
	book, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "a", Author: "x", Shelf: domain.ShelfCustom, CustomShelfName: "Old"})
	require.NoError(t, err)

	taken := "taken"
	_, err = shelves.UpdateShelf(ctx, "usr-1", shelf.ID, UpdateShelfRequest{Name: &taken})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	reserved := "Favorites"
	_, err = shelves.UpdateShelf(ctx, "usr-1", shelf.ID, UpdateShelfRequest{Name: &reserved})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	newName := "New"
	goal := 12
	updated, err := shelves.UpdateShelf(ctx, "usr-1", shelf.ID, UpdateShelfRequest{Name: &newName, YearlyGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, 12, updated.YearlyGoal)

	books, err := lib.ListBooks(ctx, "usr-1", ListBooksQuery{Shelf: domain.ShelfCustom, CustomShelfName: "New"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
	assert.Equal(t, "New", books[0].CustomShelfName)

	_, err = shelves.UpdateShelf(ctx, "usr-2", shelf.ID, UpdateShelfRequest{Name: &newName})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteShelf_MovesBooksToWantToRead(t *testing.T) {
	lib, shelves, s := setupLibrary(t)
	ctx := context.Background()

	shelf, err := shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Doomed"})
	require.NoError(t, err)
	_, err = shelves.CreateShelf(ctx, "usr-1", CreateShelfRequest{Name: "Kept"})
	require.NoError(t, err)

	const n = 4
	for range n {
		_, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "t", Author: "a", Shelf: domain.ShelfCustom, CustomShelfName: "Doomed"})
		require.NoError(t, err)
	}
	kept, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: "k", Author: "a", Shelf: domain.ShelfCustom, CustomShelfName: "Kept"})
	require.NoError(t, err)

	moved, err := shelves.DeleteShelf(ctx, "usr-1", shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, n, moved)

	books, err := s.ListBooksByUser(ctx, "usr-1")
	require.NoError(t, err)
	wantToRead := 0
	for _, b := range books {
		if b.ID == kept.ID {
			assert.Equal(t, "Kept", b.CustomShelfName)
			continue
		}
		assert.Equal(t, domain.ShelfWantToRead, b.Shelf)
		assert.Empty(t, b.CustomShelfName)
		wantToRead++
	}
	assert.Equal(t, n, wantToRead)

	list, err := shelves.ListShelves(ctx, "usr-1")
	require.NoError(t, err)
	for _, sh := range list {
		assert.NotEqual(t, "Doomed", sh.Name)
	}

	_, err = shelves.DeleteShelf(ctx, "usr-1", shelf.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestShelfBooks_Paging(t *testing.T) {
	lib, shelves, _ := setupLibrary(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"a", "b", "c", "d", "e"} {
		lib.now = fixedClock(base.Add(time.Duration(i) * time.Minute))
		_, err := lib.AddBook(ctx, "usr-1", AddBookRequest{Title: title, Author: "x"})
		require.NoError(t, err)
	}

	page, err := shelves.ShelfBooks(ctx, "usr-1", domain.ShelfWantToRead, ShelfBooksQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	assert.True(t, page.HasMore)
	require.Len(t, page.Books, 2)
	assert.Equal(t, "e", page.Books[0].Title)

	page, err = shelves.ShelfBooks(ctx, "usr-1", domain.ShelfWantToRead, ShelfBooksQuery{Limit: 2, Skip: 4})
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "a", page.Books[0].Title)

	page, err = shelves.ShelfBooks(ctx, "usr-1", domain.ShelfWantToRead, ShelfBooksQuery{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Books)
	assert.False(t, page.HasMore)

	_, err = shelves.ShelfBooks(ctx, "usr-1", domain.ShelfCustom, ShelfBooksQuery{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = shelves.ShelfBooks(ctx, "usr-1", "bogus", ShelfBooksQuery{})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
