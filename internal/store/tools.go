package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/tooldexapp/tooldex-server/internal/domain"
)

// GetTool retrieves a tool by ID.
func (s *Store) GetTool(ctx context.Context, id string) (*domain.Tool, error) {
	return s.Tools.Get(ctx, id)
}

// GetToolBySlug retrieves a tool by its unique slug.
func (s *Store) GetToolBySlug(ctx context.Context, slug string) (*domain.Tool, error) {
	return s.Tools.GetByIndex(ctx, "slug", slug)
}

// GetToolByRef resolves a tool by ID or slug. IDs carry the "tool-" prefix,
// so anything else is treated as a slug.
func (s *Store) GetToolByRef(ctx context.Context, ref string) (*domain.Tool, error) {
	if strings.HasPrefix(ref, "tool-") {
		return s.Tools.Get(ctx, ref)
	}
	return s.Tools.GetBySlugOrID(ctx, ref)
}

// GetBySlugOrID tries the slug index first, then falls back to a direct ID
// lookup. Kept on Entity so category resolution can share it.
func (e *Entity[T]) GetBySlugOrID(ctx context.Context, ref string) (*T, error) {
	entity, err := e.GetByIndex(ctx, "slug", ref)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return e.Get(ctx, ref)
}

// SlugTaken reports whether a tool slug is already in use by a tool other
// than excludeID (pass "" when creating).
func (s *Store) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	existing, err := s.Tools.GetByIndex(ctx, "slug", slug)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != excludeID, nil
}

// IncrementViewCount bumps a tool's view counter inside a single
// transaction. Missing tools are ignored so the read path never fails a
// page load over a counter.
func (s *Store) IncrementViewCount(ctx context.Context, toolID string) error {
	return s.incrementToolCounter(ctx, toolID, func(t *domain.Tool) {
		t.ViewCount++
	})
}

// IncrementUsageCount bumps a tool's usage counter.
func (s *Store) IncrementUsageCount(ctx context.Context, toolID string) error {
	return s.incrementToolCounter(ctx, toolID, func(t *domain.Tool) {
		t.UsageCount++
	})
}

// incrementToolCounter applies a counter mutation in one read-modify-write
// transaction. Counters bypass Entity.Update because they must not touch
// UpdatedAt or the slug index.
func (s *Store) incrementToolCounter(ctx context.Context, toolID string, mutate func(*domain.Tool)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey("tool:", toolID)
	defer releaseKey(key)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get tool: %w", err)
		}

		var tool domain.Tool
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tool)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal tool: %w", err)
		}

		mutate(&tool)

		data, err := json.Marshal(&tool)
		if err != nil {
			return fmt.Errorf("failed to marshal tool: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ListToolsByOwner returns all tools owned by the given user.
func (s *Store) ListToolsByOwner(ctx context.Context, ownerID string) ([]*domain.Tool, error) {
	var tools []*domain.Tool
	for tool, err := range s.Tools.List(ctx) {
		if err != nil {
			return nil, err
		}
		if tool.OwnerID == ownerID {
			tools = append(tools, tool)
		}
	}
	return tools, nil
}

// CountToolsByCategory returns listed-tool counts keyed by category ID.
func (s *Store) CountToolsByCategory(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for tool, err := range s.Tools.List(ctx) {
		if err != nil {
			return nil, err
		}
		if tool.IsListed() && tool.CategoryID != "" {
			counts[tool.CategoryID]++
		}
	}
	return counts, nil
}
