package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldexapp/tooldex-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTool(id, slug string) *domain.Tool {
	now := time.Now()
	return &domain.Tool{
		Record:       domain.Record{ID: id, CreatedAt: now, UpdatedAt: now},
		OwnerID:      "usr_owner",
		Name:         "Brief Bot",
		Slug:         slug,
		Tagline:      "Summarize anything",
		Description:  "Short briefs from long text",
		WebsiteURL:   "https://briefbot.example.com",
		PricingModel: domain.PricingFree,
		Status:       domain.StatusDraft,
		Visibility:   domain.VisibilityPrivate,
	}
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tool := testTool("tool-1", "brief-bot")
	require.NoError(t, s.Tools.Create(ctx, tool.ID, tool))

	got, err := s.Tools.Get(ctx, "tool-1")
	require.NoError(t, err)
	assert.Equal(t, "Brief Bot", got.Name)
	assert.Equal(t, "brief-bot", got.Slug)
}

func TestEntity_CreateDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tools.Create(ctx, "tool-1", testTool("tool-1", "brief-bot")))

	err := s.Tools.Create(ctx, "tool-1", testTool("tool-1", "other-slug"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntity_SlugIndexEnforcesUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tools.Create(ctx, "tool-1", testTool("tool-1", "brief-bot")))

	err := s.Tools.Create(ctx, "tool-2", testTool("tool-2", "brief-bot"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntity_GetByIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tools.Create(ctx, "tool-1", testTool("tool-1", "brief-bot")))

	got, err := s.Tools.GetByIndex(ctx, "slug", "brief-bot")
	require.NoError(t, err)
	assert.Equal(t, "tool-1", got.ID)

	_, err = s.Tools.GetByIndex(ctx, "slug", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_EmailIndexIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		Record:      domain.Record{ID: "usr_1", CreatedAt: now, UpdatedAt: now},
		Email:       "Maker@Example.com",
		DisplayName: "Maker",
		Role:        domain.RoleUser,
	}
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.GetByIndex(ctx, "email", "maker@example.com")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", got.ID)

	got, err = s.Users.GetByIndex(ctx, "email", "  MAKER@EXAMPLE.COM ")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", got.ID)
}

func TestEntity_UpdateMovesIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tool := testTool("tool-1", "brief-bot")
	require.NoError(t, s.Tools.Create(ctx, tool.ID, tool))

	tool.Slug = "summary-sam"
	tool.Name = "Summary Sam"
	require.NoError(t, s.Tools.Update(ctx, tool.ID, tool))

	_, err := s.Tools.GetByIndex(ctx, "slug", "brief-bot")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Tools.GetByIndex(ctx, "slug", "summary-sam")
	require.NoError(t, err)
	assert.Equal(t, "Summary Sam", got.Name)

	// The freed slug can be claimed by a new tool.
	require.NoError(t, s.Tools.Create(ctx, "tool-2", testTool("tool-2", "brief-bot")))
}

func TestEntity_UpdateMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Tools.Update(context.Background(), "tool-missing", testTool("tool-missing", "ghost"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_DeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tool := testTool("tool-1", "brief-bot")
	require.NoError(t, s.Tools.Create(ctx, tool.ID, tool))

	require.NoError(t, s.Tools.Delete(ctx, "tool-1"))
	require.NoError(t, s.Tools.Delete(ctx, "tool-1"))

	_, err := s.Tools.Get(ctx, "tool-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Index entries go with the record.
	_, err = s.Tools.GetByIndex(ctx, "slug", "brief-bot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_ListSkipsIndexKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tools.Create(ctx, "tool-1", testTool("tool-1", "brief-bot")))
	require.NoError(t, s.Tools.Create(ctx, "tool-2", testTool("tool-2", "prompt-forge")))

	count := 0
	for tool, err := range s.Tools.List(ctx) {
		require.NoError(t, err)
		require.NotNil(t, tool)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestEntity_ListStopsEarly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, slug := range []string{"one", "two", "three"} {
		require.NoError(t, s.Tools.Create(ctx, slug, testTool(slug, slug)))
	}

	seen := 0
	for _, err := range s.Tools.List(ctx) {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestEntity_ContextCancellation(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Tools.Create(ctx, "tool-1", testTool("tool-1", "brief-bot"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Tools.Get(ctx, "tool-1")
	assert.ErrorIs(t, err, context.Canceled)
}
