package eventlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldexapp/tooldex-server/internal/domain"
)

func openTestLog(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "analytics.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndEventsInRange(t *testing.T) {
	s := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "tool-1", "usr_fan", domain.EventView, "https://news.ycombinator.com", "Mozilla/5.0"))
	require.NoError(t, s.Record(ctx, "tool-1", "", domain.EventClick, "", ""))
	require.NoError(t, s.Record(ctx, "tool-2", "", domain.EventView, "", ""))

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	events, err := s.EventsInRange(ctx, "tool-1", from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Oldest first.
	assert.Equal(t, domain.EventView, events[0].Type)
	assert.Equal(t, "usr_fan", events[0].UserID)
	assert.Equal(t, "https://news.ycombinator.com", events[0].Referrer)
	assert.Equal(t, domain.EventClick, events[1].Type)
	assert.Empty(t, events[1].UserID)
}

func TestRecord_RejectsUnknownEventType(t *testing.T) {
	s := openTestLog(t)

	err := s.Record(context.Background(), "tool-1", "", domain.EventType("TELEPORT"), "", "")
	assert.Error(t, err)
}

func TestEventsInRange_BoundsAreHalfOpen(t *testing.T) {
	s := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "tool-1", "", domain.EventView, "", ""))

	// A window entirely in the past misses the event.
	past := time.Now().Add(-48 * time.Hour)
	events, err := s.EventsInRange(ctx, "tool-1", past, past.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordAPICall_AggregatesPerEndpoint(t *testing.T) {
	s := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAPICall(ctx, "tool-1", "/v1/summarize"))
	require.NoError(t, s.RecordAPICall(ctx, "tool-1", "/v1/summarize"))
	require.NoError(t, s.RecordAPICall(ctx, "tool-1", "/v1/outline"))

	from := time.Now().Add(-24 * time.Hour)
	to := time.Now().Add(24 * time.Hour)

	usage, err := s.EndpointUsageInRange(ctx, "tool-1", from, to)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	// Highest first.
	assert.Equal(t, "/v1/summarize", usage[0].Endpoint)
	assert.Equal(t, int64(2), usage[0].Count)
	assert.Equal(t, "/v1/outline", usage[1].Endpoint)

	// Each API call also lands in the event stream.
	events, err := s.EventsInRange(ctx, "tool-1", from, to)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestPing(t *testing.T) {
	s := openTestLog(t)
	assert.NoError(t, s.Ping(context.Background()))
}
