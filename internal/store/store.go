package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/elewand/elewand-server/internal/domain"
)

// SearchIndexer keeps the library search index in sync with book writes.
// Indexing failures are logged and never fail the write.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.LibraryEntry) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.LibraryEntry) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Set via SetSearchIndexer after creation; the index is built from the store.
	searchIndexer SearchIndexer

	Users   *Entity[domain.User]
	Books   *Entity[domain.LibraryEntry]
	Shelves *Entity[domain.Shelf]
	Ratings *Entity[domain.Rating]
}

// Options tweaks how the database is opened.
type Options struct {
	// InMemory opens a throwaway database; path is ignored.
	InMemory bool
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	return Open(path, logger, Options{})
}

// Open opens the database with explicit options.
func Open(path string, logger *slog.Logger, o Options) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = !o.InMemory
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}

	s.initUsers()
	s.initBooks()
	s.initShelves()
	s.initRatings()

	logger.Info("badger database opened", "path", path, "in_memory", o.InMemory)
	return s, nil
}

// maxConflictAttempts bounds how often a write transaction is re-run after
// Badger rejects it for conflicting with a concurrent commit.
const maxConflictAttempts = 20

// update runs fn in a read-write transaction. When a concurrent transaction
// commits first, Badger fails ours with ErrConflict; fn then runs again on
// fresh reads so the later writer wins instead of erroring.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictAttempts {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("write conflicted %d times: %w", maxConflictAttempts, err)
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing database connection")
	return s.db.Close()
}

// SetSearchIndexer sets the indexer notified on book writes.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// Ping verifies the database is open and readable.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithUniqueIndex("email",
			func(u *domain.User) []string {
				return []string{domain.NormalizeEmail(u.Email)}
			},
			domain.NormalizeEmail,
		)
}

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.LibraryEntry](s, "book:").
		WithIndex("user", func(b *domain.LibraryEntry) []string {
			return []string{b.UserID}
		})
}

func (s *Store) initShelves() {
	s.Shelves = NewEntity[domain.Shelf](s, "shelf:").
		WithIndex("owner", func(sh *domain.Shelf) []string {
			return []string{sh.OwnerID}
		}).
		WithUniqueIndex("owner_name",
			func(sh *domain.Shelf) []string {
				return []string{shelfNameKey(sh.OwnerID, sh.Name)}
			},
			nil,
		)
}

func (s *Store) initRatings() {
	s.Ratings = NewEntity[domain.Rating](s, "rating:").
		WithUniqueIndex("user_book",
			func(r *domain.Rating) []string {
				return []string{ratingKey(r.UserID, r.BookID)}
			},
			nil,
		).
		WithIndex("book", func(r *domain.Rating) []string {
			return []string{r.BookID}
		}).
		WithIndex("user", func(r *domain.Rating) []string {
			return []string{r.UserID}
		})
}
