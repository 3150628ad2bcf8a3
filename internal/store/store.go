package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/tooldexapp/tooldex-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store callers use this to keep search in sync without depending on the
// search implementation.
type SearchIndexer interface {
	IndexTool(ctx context.Context, tool *domain.Tool) error
	DeleteTool(ctx context.Context, toolID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexTool is a no-op.
func (NoopSearchIndexer) IndexTool(context.Context, *domain.Tool) error { return nil }

// DeleteTool is a no-op.
func (NoopSearchIndexer) DeleteTool(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance holding the catalog entities.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users      *Entity[domain.User]
	Sessions   *Entity[domain.Session]
	Tools      *Entity[domain.Tool]
	Reviews    *Entity[domain.Review]
	Categories *Entity[domain.Category]
	Media      *Entity[domain.ToolMedia]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize generic entities
	store.initUsers()
	store.initSessions()
	store.initTools()
	store.initReviews()
	store.initCategories()
	store.initMedia()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// normalizeEmail lowercases and trims an email for index storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// initSessions initializes the Sessions entity on the store.
// Indexed by refresh token hash for the token refresh path.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "sess:").
		WithIndex("token", func(sess *domain.Session) []string {
			return []string{sess.RefreshTokenHash}
		})
}

// initTools initializes the Tools entity on the store.
// The slug index doubles as the uniqueness guarantee: a second tool with
// the same slug fails inside the create transaction.
func (s *Store) initTools() {
	s.Tools = NewEntity[domain.Tool](s, "tool:").
		WithIndex("slug", func(t *domain.Tool) []string {
			return []string{t.Slug}
		})
}

// initReviews initializes the Reviews entity on the store.
// The pair index enforces one review per (tool, user).
func (s *Store) initReviews() {
	s.Reviews = NewEntity[domain.Review](s, "review:").
		WithIndex("pair", func(r *domain.Review) []string {
			return []string{r.PairKey()}
		})
}

// initCategories initializes the Categories entity on the store.
func (s *Store) initCategories() {
	s.Categories = NewEntity[domain.Category](s, "cat:").
		WithIndex("slug", func(c *domain.Category) []string {
			return []string{c.Slug}
		})
}

// initMedia initializes the Media entity on the store.
func (s *Store) initMedia() {
	s.Media = NewEntity[domain.ToolMedia](s, "media:")
}

// seedMarkerKey records that cmd/seed has populated this database.
const seedMarkerKey = "meta:seeded"

// SeedInfo describes a completed seed run.
type SeedInfo struct {
	Version    int    `json:"version"`
	SeededAt   string `json:"seeded_at"`
	Categories int    `json:"categories"`
	Tools      int    `json:"tools"`
}

// MarkSeeded records a completed seed run so reseeding can be skipped.
func (s *Store) MarkSeeded(info SeedInfo) error {
	return s.set([]byte(seedMarkerKey), info)
}

// SeedInfo returns the recorded seed run, or nil if the database was never seeded.
func (s *Store) SeedInfo() (*SeedInfo, error) {
	ok, err := s.exists([]byte(seedMarkerKey))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var info SeedInfo
	if err := s.get([]byte(seedMarkerKey), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
