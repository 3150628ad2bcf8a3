package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tooldexapp/tooldex-server/internal/domain"
	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/store/eventlog"
)

const (
	// defaultSummaryDays is the dashboard range when none is given.
	defaultSummaryDays = 30
	// maxTopReferrers caps the referrer histogram.
	maxTopReferrers = 10
	// directReferrer labels events with no referrer URL.
	directReferrer = "Direct"
)

// AnalyticsService reduces the append-only event log into per-tool
// dashboard summaries, and records the events the catalog emits.
type AnalyticsService struct {
	store    *store.Store
	eventLog *eventlog.Store
	logger   *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store *store.Store, eventLog *eventlog.Store, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:    store,
		eventLog: eventLog,
		logger:   logger,
	}
}

// SummaryRequest identifies a dashboard query. Zero From/To default to
// the last 30 days.
type SummaryRequest struct {
	ToolRef string
	UserID  string
	From    time.Time
	To      time.Time
}

// Summary builds the dashboard payload for a tool. Only the owner (or
// an admin) may read a tool's analytics.
func (s *AnalyticsService) Summary(ctx context.Context, req SummaryRequest) (*domain.AnalyticsSummary, error) {
	tool, err := s.requireOwnedTool(ctx, req.UserID, req.ToolRef)
	if err != nil {
		return nil, err
	}

	from, to := normalizeRange(req.From, req.To)

	events, err := s.eventLog.EventsInRange(ctx, tool.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	endpoints, err := s.eventLog.EndpointUsageInRange(ctx, tool.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load endpoint usage: %w", err)
	}

	summary := &domain.AnalyticsSummary{
		ToolID:        tool.ID,
		From:          from,
		To:            to,
		TotalEvents:   int64(len(events)),
		Daily:         bucketByDay(events),
		TopReferrers:  topReferrers(events),
		EndpointUsage: endpoints,
	}
	if summary.EndpointUsage == nil {
		summary.EndpointUsage = []domain.EndpointUsage{}
	}

	return summary, nil
}

// RecordClick appends a CLICK event for a tool. Clicks come from the
// public catalog, so the tool must be viewable by the caller.
func (s *AnalyticsService) RecordClick(ctx context.Context, toolRef, userID, referrer, userAgent string) error {
	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tool not found")
		}
		return fmt.Errorf("get tool: %w", err)
	}

	if !tool.ViewableBy(userID) {
		return domainerrors.NotFound("tool not found")
	}

	if err := s.eventLog.Record(ctx, tool.ID, userID, domain.EventClick, referrer, userAgent); err != nil {
		return fmt.Errorf("record click: %w", err)
	}

	if err := s.store.IncrementUsageCount(ctx, tool.ID); err != nil {
		s.logger.Warn("Failed to increment usage count", "tool_id", tool.ID, "error", err)
	}
	return nil
}

// RecordAPICall bumps the per-endpoint usage counter for a tool.
func (s *AnalyticsService) RecordAPICall(ctx context.Context, toolID, endpoint string) error {
	return s.eventLog.RecordAPICall(ctx, toolID, endpoint)
}

// Ping verifies the event log database is reachable.
func (s *AnalyticsService) Ping(ctx context.Context) error {
	return s.eventLog.Ping(ctx)
}

// requireOwnedTool resolves a tool and checks the caller owns it or is
// an admin.
func (s *AnalyticsService) requireOwnedTool(ctx context.Context, userID, ref string) (*domain.Tool, error) {
	tool, err := s.store.GetToolByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	if tool.OwnerID == userID {
		return tool, nil
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err == nil && user.IsAdmin() {
		return tool, nil
	}
	return nil, domainerrors.Forbidden("only the tool owner can view analytics")
}

// normalizeRange fills in defaults and orders the range. The upper
// bound is exclusive.
func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultSummaryDays)
	}
	if from.After(to) {
		from, to = to, from
	}
	return from.UTC(), to.UTC()
}

// bucketByDay reduces events into per-day counts keyed by event type,
// oldest day first.
func bucketByDay(events []*domain.AnalyticsEvent) []domain.DailyBreakdown {
	buckets := make(map[string]*domain.DailyBreakdown)

	for _, event := range events {
		day := event.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := buckets[day]
		if !ok {
			bucket = &domain.DailyBreakdown{Date: day}
			buckets[day] = bucket
		}

		switch event.Type {
		case domain.EventView:
			bucket.Views++
		case domain.EventClick:
			bucket.Clicks++
		case domain.EventAPICall:
			bucket.APICalls++
		case domain.EventSignup:
			bucket.Signups++
		case domain.EventPurchase:
			bucket.Purchases++
		}
	}

	daily := make([]domain.DailyBreakdown, 0, len(buckets))
	for _, bucket := range buckets {
		daily = append(daily, *bucket)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date < daily[j].Date
	})
	return daily
}

// topReferrers builds the referrer-domain histogram. Referrers reduce
// to their URL host; unparseable or empty referrers count as "Direct".
func topReferrers(events []*domain.AnalyticsEvent) []domain.ReferrerCount {
	counts := make(map[string]int64)

	for _, event := range events {
		counts[referrerDomain(event.Referrer)]++
	}

	referrers := make([]domain.ReferrerCount, 0, len(counts))
	for domainName, count := range counts {
		referrers = append(referrers, domain.ReferrerCount{Domain: domainName, Count: count})
	}

	sort.Slice(referrers, func(i, j int) bool {
		if referrers[i].Count != referrers[j].Count {
			return referrers[i].Count > referrers[j].Count
		}
		return referrers[i].Domain < referrers[j].Domain
	})

	if len(referrers) > maxTopReferrers {
		referrers = referrers[:maxTopReferrers]
	}
	return referrers
}

// referrerDomain extracts the host from a referrer URL.
func referrerDomain(referrer string) string {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return directReferrer
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Host == "" {
		return directReferrer
	}
	return u.Host
}
