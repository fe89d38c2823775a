package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elewand/elewand-server/internal/domain"
	"github.com/elewand/elewand-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "elewand-store-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})
	return s
}

func newUser(id, email string) *domain.User {
	u := &domain.User{Email: email, Name: "User " + id, Role: domain.RoleUser}
	u.ID = id
	u.InitTimestamps()
	return u
}

func newEntry(id, userID string, shelf domain.ShelfName, custom string) *domain.LibraryEntry {
	e := &domain.LibraryEntry{UserID: userID, Title: "Title " + id, Author: "Author", Shelf: shelf, CustomShelfName: custom}
	e.ID = id
	e.InitTimestamps()
	e.ApplyDefaults()
	return e
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed map[string]int
	deleted []string
}

func (r *recordingIndexer) IndexBook(_ context.Context, b *domain.LibraryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexed == nil {
		r.indexed = make(map[string]int)
	}
	r.indexed[b.ID]++
	return nil
}

func (r *recordingIndexer) DeleteBook(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return errors.New("index offline")
}

func TestStore_InMemory(t *testing.T) {
	s, err := store.Open("", nil, store.Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
}

func TestUsers_EmailIsCaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newUser("usr-1", "Ada@Example.com")))

	got, err := s.GetUserByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", got.ID)

	err = s.CreateUser(ctx, newUser("usr-2", "ADA@example.COM"))
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_UpdateAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	older := newUser("usr-1", "a@example.com")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateUser(ctx, older))
	require.NoError(t, s.CreateUser(ctx, newUser("usr-2", "b@example.com")))

	updated, err := s.UpdateUser(ctx, "usr-1", func(u *domain.User) error {
		u.Role = domain.RoleAdmin
		u.Email = "renamed@example.com"
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = s.GetUserByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "usr-2", users[0].ID, "newest first")
}

func TestBooks_OwnershipAndIndexing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	idx := &recordingIndexer{}
	s.SetSearchIndexer(idx)

	require.NoError(t, s.CreateBook(ctx, newEntry("book-1", "usr-1", domain.ShelfRead, "")))
	require.NoError(t, s.CreateBook(ctx, newEntry("book-2", "usr-2", domain.ShelfRead, "")))

	_, err := s.GetBook(ctx, "usr-2", "book-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpdateBook(ctx, "usr-2", "book-1", func(*domain.LibraryEntry) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)

	updated, err := s.UpdateBook(ctx, "usr-1", "book-1", func(b *domain.LibraryEntry) error {
		b.Title = "New Title"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, 2, idx.indexed["book-1"])

	books, err := s.ListBooksByUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	assert.ErrorIs(t, s.DeleteBook(ctx, "usr-2", "book-1"), store.ErrNotFound)
	require.NoError(t, s.DeleteBook(ctx, "usr-1", "book-1"), "index failures do not fail deletes")
	assert.Equal(t, []string{"book-1"}, idx.deleted)

	books, err = s.ListBooksByUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBooks_MoveCustomShelfBooks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, newEntry("book-1", "usr-1", domain.ShelfCustom, "Beach")))
	require.NoError(t, s.CreateBook(ctx, newEntry("book-2", "usr-1", domain.ShelfCustom, "beach")))
	require.NoError(t, s.CreateBook(ctx, newEntry("book-3", "usr-1", domain.ShelfCustom, "Winter")))
	require.NoError(t, s.CreateBook(ctx, newEntry("book-4", "usr-1", domain.ShelfRead, "")))

	moved, err := s.MoveCustomShelfBooks(ctx, "usr-1", "Beach", "Summer")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	moved, err = s.MoveCustomShelfBooks(ctx, "usr-1", "Summer", "")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	b, err := s.GetBook(ctx, "usr-1", "book-2")
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfWantToRead, b.Shelf)
	assert.Empty(t, b.CustomShelfName)

	b, err = s.GetBook(ctx, "usr-1", "book-3")
	require.NoError(t, err)
	assert.Equal(t, "Winter", b.CustomShelfName)
}

// hookIndexer runs onIndex after each book write, between the writes of a batch.
type hookIndexer struct {
	onIndex func(*domain.LibraryEntry)
}

func (h *hookIndexer) IndexBook(_ context.Context, b *domain.LibraryEntry) error {
	if h.onIndex != nil {
		h.onIndex(b)
	}
	return nil
}

func (h *hookIndexer) DeleteBook(context.Context, string) error { return nil }

func TestBooks_MoveCustomShelfBooks_SkipsEntriesMovedMeanwhile(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, newEntry("book-1", "usr-1", domain.ShelfCustom, "Beach")))
	require.NoError(t, s.CreateBook(ctx, newEntry("book-2", "usr-1", domain.ShelfCustom, "Beach")))

	// After book-1 is moved, book-2 is shelved as read by another request.
	fired := false
	s.SetSearchIndexer(&hookIndexer{onIndex: func(b *domain.LibraryEntry) {
		if fired || b.ID != "book-1" {
			return
		}
		fired = true
		_, err := s.UpdateBook(ctx, "usr-1", "book-2", func(e *domain.LibraryEntry) error {
			e.Shelf = domain.ShelfRead
			e.CustomShelfName = ""
			return nil
		})
		require.NoError(t, err)
	}})

	moved, err := s.MoveCustomShelfBooks(ctx, "usr-1", "Beach", "")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	require.True(t, fired)

	b, err := s.GetBook(ctx, "usr-1", "book-2")
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfRead, b.Shelf, "a concurrent move is not overwritten")

	b, err = s.GetBook(ctx, "usr-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfWantToRead, b.Shelf)
}

func newShelf(id, owner, name string, order int) *domain.Shelf {
	sh := &domain.Shelf{OwnerID: owner, Name: name, SortOrder: order}
	sh.ID = id
	sh.InitTimestamps()
	return sh
}

func TestShelves_NameUniquePerOwner(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateShelf(ctx, newShelf("shelf-1", "usr-1", "Beach Reads", 0)))
	require.NoError(t, s.CreateShelf(ctx, newShelf("shelf-2", "usr-2", "Beach Reads", 0)))

	err := s.CreateShelf(ctx, newShelf("shelf-3", "usr-1", "beach reads", 0))
	assert.ErrorIs(t, err, store.ErrShelfNameTaken)

	got, err := s.GetShelfByName(ctx, "usr-1", "BEACH READS")
	require.NoError(t, err)
	assert.Equal(t, "shelf-1", got.ID)

	_, err = s.GetShelf(ctx, "usr-2", "shelf-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestShelves_RenameAndOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateShelf(ctx, newShelf("shelf-1", "usr-1", "A", 2)))
	require.NoError(t, s.CreateShelf(ctx, newShelf("shelf-2", "usr-1", "B", 1)))

	_, err := s.UpdateShelf(ctx, "usr-1", "shelf-1", func(sh *domain.Shelf) error {
		sh.Name = "b"
		return nil
	})
	assert.ErrorIs(t, err, store.ErrShelfNameTaken)

	renamed, err := s.UpdateShelf(ctx, "usr-1", "shelf-1", func(sh *domain.Shelf) error {
		sh.Name = "C"
		sh.SortOrder = 0
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "C", renamed.Name)

	shelves, err := s.ListShelvesByOwner(ctx, "usr-1")
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	assert.Equal(t, "shelf-1", shelves[0].ID)

	require.NoError(t, s.DeleteShelf(ctx, "shelf-1"))
	_, err = s.GetShelfByName(ctx, "usr-1", "C")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRatings_UpsertKeepsOneRowPerUserAndBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	upsert := func(id string, score int) (*domain.Rating, bool) {
		fresh := &domain.Rating{UserID: "usr-1", BookID: "vol-1"}
		fresh.ID = id
		fresh.InitTimestamps()
		r, created, err := s.UpsertRating(ctx, "usr-1", "vol-1", fresh, func(r *domain.Rating) {
			r.Rating = score
		})
		require.NoError(t, err)
		return r, created
	}

	first, created := upsert("rating-1", 3)
	assert.True(t, created)
	assert.Equal(t, 3, first.Rating)

	second, created := upsert("rating-2", 5)
	assert.False(t, created)
	assert.Equal(t, "rating-1", second.ID)
	assert.Equal(t, 5, second.Rating)

	byBook, err := s.ListRatingsByBook(ctx, "vol-1")
	require.NoError(t, err)
	assert.Len(t, byBook, 1)

	byUser, err := s.ListRatingsByUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	require.NoError(t, s.DeleteRating(ctx, "rating-1"))
	all, err := s.ListRatings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRatings_ConcurrentUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for round := range 20 {
		bookID := fmt.Sprintf("vol-%d", round)
		errs := make(chan error, 8)

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fresh := &domain.Rating{UserID: "usr-1", BookID: bookID}
				fresh.ID = fmt.Sprintf("rating-%d-%d", round, i)
				fresh.InitTimestamps()
				_, _, err := s.UpsertRating(ctx, "usr-1", bookID, fresh, func(r *domain.Rating) { r.Rating = i%5 + 1 })
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		ratings, err := s.ListRatingsByBook(ctx, bookID)
		require.NoError(t, err)
		assert.Len(t, ratings, 1)
	}
}

func TestUpdateUser_ConcurrentWritersAllApply(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newUser("usr-1", "a@example.com")))

	const writers = 16
	errs := make(chan error, writers)

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateUser(ctx, "usr-1", func(u *domain.User) error {
				u.Preferences.Fantasy++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	got, err := s.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, writers, got.Preferences.Fantasy, "each write re-runs on the latest value")
}
