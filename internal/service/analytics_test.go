package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/store/eventlog"
)

// setupAnalyticsTest creates an analytics service with temporary storage.
func setupAnalyticsTest(t *testing.T) (*AnalyticsService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tooldex-analytics-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	events, err := eventlog.Open(filepath.Join(tmpDir, "analytics.db"), nil)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	analyticsService := NewAnalyticsService(s, events, logger)

	cleanup := func() {
		_ = events.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return analyticsService, cleanup
}

func TestAnalyticsService_Summary_OwnerOnly(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	stranger := createTestUser(t, analyticsService.store, "other@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	// Owner reads fine.
	summary, err := analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, tool.ID, summary.ToolID)

	// Strangers are refused.
	_, err = analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: stranger.ID})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)

	// Missing tool is a 404, not a 403.
	_, err = analyticsService.Summary(ctx, SummaryRequest{ToolRef: "tool-missing", UserID: owner.ID})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestAnalyticsService_Summary_AdminAccess(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	admin := createTestAdmin(t, analyticsService.store, "admin@example.com")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	_, err := analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: admin.ID})
	assert.NoError(t, err)
}

func TestAnalyticsService_Summary_DefaultRange(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	summary, err := analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: owner.ID})
	require.NoError(t, err)

	span := summary.To.Sub(summary.From)
	assert.InDelta(t, (30 * 24 * time.Hour).Hours(), span.Hours(), 1)
}

func TestAnalyticsService_Summary_BucketsAndReferrers(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	events := analyticsService.eventLog
	require.NoError(t, events.Record(ctx, tool.ID, "", domain.EventView, "https://news.ycombinator.com/item?id=1", ""))
	require.NoError(t, events.Record(ctx, tool.ID, "", domain.EventView, "https://news.ycombinator.com/item?id=2", ""))
	require.NoError(t, events.Record(ctx, tool.ID, "", domain.EventClick, "", ""))
	require.NoError(t, events.Record(ctx, tool.ID, "", domain.EventSignup, "", ""))
	require.NoError(t, events.RecordAPICall(ctx, tool.ID, "/v1/summarize"))
	require.NoError(t, events.RecordAPICall(ctx, tool.ID, "/v1/summarize"))

	summary, err := analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: owner.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.TotalEvents)
	require.Len(t, summary.Daily, 1)

	today := summary.Daily[0]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
	assert.Equal(t, int64(2), today.Views)
	assert.Equal(t, int64(1), today.Clicks)
	assert.Equal(t, int64(2), today.APICalls)
	assert.Equal(t, int64(1), today.Signups)

	// Referrer histogram: hn twice, everything else Direct.
	require.NotEmpty(t, summary.TopReferrers)
	assert.Equal(t, "Direct", summary.TopReferrers[0].Domain)
	assert.Equal(t, int64(4), summary.TopReferrers[0].Count)
	assert.Equal(t, "news.ycombinator.com", summary.TopReferrers[1].Domain)
	assert.Equal(t, int64(2), summary.TopReferrers[1].Count)

	// Endpoint usage from the api_usage counters.
	require.Len(t, summary.EndpointUsage, 1)
	assert.Equal(t, "/v1/summarize", summary.EndpointUsage[0].Endpoint)
	assert.Equal(t, int64(2), summary.EndpointUsage[0].Count)
}

func TestAnalyticsService_Summary_RangeFilters(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	require.NoError(t, analyticsService.eventLog.Record(ctx, tool.ID, "", domain.EventView, "", ""))

	// A window entirely in the past sees nothing.
	summary, err := analyticsService.Summary(ctx, SummaryRequest{
		ToolRef: tool.ID,
		UserID:  owner.ID,
		From:    time.Now().AddDate(0, 0, -60),
		To:      time.Now().AddDate(0, 0, -30),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalEvents)
	assert.Empty(t, summary.Daily)
}

func TestAnalyticsService_RecordClick(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	require.NoError(t, analyticsService.RecordClick(ctx, "brief-bot", "", "https://twitter.com/status", "test-agent"))

	// Click lands in the log and bumps usage.
	summary, err := analyticsService.Summary(ctx, SummaryRequest{ToolRef: tool.ID, UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, summary.Daily, 1)
	assert.Equal(t, int64(1), summary.Daily[0].Clicks)

	got, err := analyticsService.store.GetTool(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UsageCount)
}

func TestAnalyticsService_RecordClick_HiddenTool(t *testing.T) {
	analyticsService, cleanup := setupAnalyticsTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, analyticsService.store, "owner@example.com", "hash")
	tool := createReviewableTool(t, analyticsService.store, owner.ID, "Brief Bot", "brief-bot")

	tool.Visibility = domain.VisibilityPrivate
	require.NoError(t, analyticsService.store.Tools.Update(ctx, tool.ID, tool))

	// Hidden tools look missing to outsiders.
	err := analyticsService.RecordClick(ctx, tool.ID, "", "", "")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)
}

func TestReferrerDomain(t *testing.T) {
	tests := []struct {
		referrer string
		want     string
	}{
		{"", "Direct"},
		{"   ", "Direct"},
		{"not a url", "Direct"},
		{"/relative/path", "Direct"},
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"http://example.com", "example.com"},
		{"https://sub.domain.example.com:8080/page", "sub.domain.example.com:8080"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, referrerDomain(tt.referrer), "referrer %q", tt.referrer)
	}
}
