package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getToolAnalytics",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/{ref}/analytics",
		Summary:     "Tool analytics summary",
		Description: "Returns per-day event breakdowns, top referrers, and endpoint usage for a tool. Owner only. Defaults to the last 30 days.",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetToolAnalytics)

	huma.Register(s.api, huma.Operation{
		OperationID:   "recordToolClick",
		Method:        http.MethodPost,
		Path:          "/api/v1/tools/{ref}/click",
		Summary:       "Record outbound click",
		Description:   "Records a click-through to the tool's website and bumps its usage counter",
		Tags:          []string{"Analytics"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRecordToolClick)
}

// === DTOs ===

// AnalyticsInput contains the summary request parameters.
type AnalyticsInput struct {
	Ref  string    `path:"ref" doc:"Tool ID or slug"`
	From time.Time `query:"from" doc:"Range start (RFC 3339). Defaults to 30 days before the range end."`
	To   time.Time `query:"to" doc:"Range end (RFC 3339). Defaults to now."`
}

// AnalyticsOutput wraps the summary for Huma.
type AnalyticsOutput struct {
	Body *domain.AnalyticsSummary
}

// ClickInput identifies the clicked tool and carries referrer metadata.
type ClickInput struct {
	Ref       string `path:"ref" doc:"Tool ID or slug"`
	Referer   string `header:"Referer"`
	UserAgent string `header:"User-Agent"`
}

// === Handlers ===

func (s *Server) handleGetToolAnalytics(ctx context.Context, input *AnalyticsInput) (*AnalyticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Analytics.Summary(ctx, service.SummaryRequest{
		ToolRef: input.Ref,
		UserID:  userID,
		From:    input.From,
		To:      input.To,
	})
	if err != nil {
		return nil, err
	}

	return &AnalyticsOutput{Body: summary}, nil
}

func (s *Server) handleRecordToolClick(ctx context.Context, input *ClickInput) (*struct{}, error) {
	err := s.services.Analytics.RecordClick(ctx, input.Ref, OptionalUserID(ctx), input.Referer, input.UserAgent)
	if err != nil {
		return nil, err
	}

	return nil, nil
}
