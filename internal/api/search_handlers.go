package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTools",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools",
		Summary:     "Browse the catalog",
		Description: "Searches and filters the public tool catalog with facet counts. All filters are AND-combined.",
		Tags:        []string{"Catalog"},
	}, s.handleListTools)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggest",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/suggest",
		Summary:     "Typeahead suggestions",
		Description: "Returns tool, category, tag, and tech stack suggestions for a query prefix",
		Tags:        []string{"Catalog"},
	}, s.handleSuggest)
}

// === DTOs ===

// ListToolsInput contains catalog query parameters. Out-of-range values
// are clamped or ignored downstream, never rejected.
type ListToolsInput struct {
	Query     string  `query:"q" doc:"Full-text query against name, tagline, description, and tags. Omit to browse everything."`
	Category  string  `query:"category" doc:"Category ID or slug"`
	Pricing   string  `query:"pricing" doc:"Comma-separated pricing models"`
	Tags      string  `query:"tags" doc:"Comma-separated tags"`
	TechStack string  `query:"tech" doc:"Comma-separated technologies"`
	RatingMin float64 `query:"rating_min" doc:"Minimum average rating"`
	RatingMax float64 `query:"rating_max" doc:"Maximum average rating"`
	Featured  bool    `query:"featured" doc:"Only featured tools"`
	Page      int     `query:"page" doc:"Page number (1-based; non-positive treated as 1)"`
	PerPage   int     `query:"per_page" doc:"Results per page (clamped to 50)"`
	SortBy    string  `query:"sort_by" doc:"Sort field (created_at, updated_at, name, rating_average, usage_count); unknown values fall back to created_at"`
	SortOrder string  `query:"sort_order" doc:"asc or desc"`
}

// ListToolsOutput wraps a catalog page for Huma.
type ListToolsOutput struct {
	Body service.QueryResult
}

// SuggestInput contains the typeahead query.
type SuggestInput struct {
	Query string `query:"q" doc:"Query prefix (under two characters returns empty groups)"`
}

// SuggestOutput wraps suggestions for Huma.
type SuggestOutput struct {
	Body service.SuggestResult
}

// === Handlers ===

func (s *Server) handleListTools(ctx context.Context, input *ListToolsInput) (*ListToolsOutput, error) {
	result, err := s.services.Search.Query(ctx, service.QueryRequest{
		Query:         input.Query,
		Category:      input.Category,
		PricingModels: splitCSV(input.Pricing),
		Tags:          splitCSV(input.Tags),
		TechStack:     splitCSV(input.TechStack),
		RatingMin:     input.RatingMin,
		RatingMax:     input.RatingMax,
		FeaturedOnly:  input.Featured,
		Page:          input.Page,
		PerPage:       input.PerPage,
		SortBy:        input.SortBy,
		SortOrder:     input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	return &ListToolsOutput{Body: *result}, nil
}

func (s *Server) handleSuggest(ctx context.Context, input *SuggestInput) (*SuggestOutput, error) {
	result, err := s.services.Search.Suggest(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	return &SuggestOutput{Body: *result}, nil
}

// splitCSV parses a comma-separated query value into trimmed parts.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}

	var parts []string
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
