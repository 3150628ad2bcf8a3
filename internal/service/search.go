package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/search"
	"github.com/tooldexapp/tooldex-server/internal/store"
)

// maxCategorySuggestions caps the category group in autocomplete.
const maxCategorySuggestions = 3

// SearchService bridges the search index with the data store. It owns
// document lifecycle (only listed tools are indexed) and runs catalog
// queries, enriching raw hits into full listing rows.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// QueryRequest is a catalog query as it arrives from the HTTP layer,
// before clamping and category resolution.
type QueryRequest struct {
	Query         string
	Category      string // ID or slug
	PricingModels []string
	Tags          []string
	TechStack     []string
	RatingMin     float64
	RatingMax     float64
	FeaturedOnly  bool
	Page          int
	PerPage       int
	SortBy        string
	SortOrder     string
}

// ToolSummary is an enriched catalog row.
type ToolSummary struct {
	ID            string            `json:"id"`
	Slug          string            `json:"slug"`
	Name          string            `json:"name"`
	Tagline       string            `json:"tagline,omitzero"`
	WebsiteURL    string            `json:"website_url,omitzero"`
	OwnerID       string            `json:"owner_id"`
	OwnerName     string            `json:"owner_name,omitzero"`
	Category      *domain.Category  `json:"category,omitzero"`
	PricingModel  string            `json:"pricing_model"`
	Tags          []string          `json:"tags,omitzero"`
	TechStack     []string          `json:"tech_stack,omitzero"`
	Featured      bool              `json:"featured"`
	RatingAverage float64           `json:"rating_average"`
	RatingCount   int               `json:"rating_count"`
	UsageCount    int64             `json:"usage_count"`
	ViewCount     int64             `json:"view_count"`
	Logo          *domain.ToolMedia `json:"logo,omitzero"`
	CreatedAt     string            `json:"created_at,omitzero"`
}

// CategoryFacet is one category with its listed tool count.
type CategoryFacet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// QueryFacets is the facets block of a catalog result. Counts are
// catalog-wide, not scoped to the active filters.
type QueryFacets struct {
	Categories    []CategoryFacet     `json:"categories"`
	Tags          []search.FacetCount `json:"tags"`
	TechStack     []search.FacetCount `json:"tech_stack"`
	PricingModels []search.FacetCount `json:"pricing_models"`
}

// QueryResult is one page of enriched catalog rows with facets.
type QueryResult struct {
	Tools   []ToolSummary `json:"tools"`
	Total   uint64        `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	TookMs  int64         `json:"took_ms"`
	Facets  QueryFacets   `json:"facets"`
}

// Query runs a catalog search and enriches the hits into listing rows.
func (s *SearchService) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	page := store.PageParams{Page: req.Page, PerPage: req.PerPage}
	page.Clamp()

	params := search.Params{
		Query:         strings.TrimSpace(req.Query),
		CategoryID:    s.resolveCategoryID(ctx, req.Category),
		PricingModels: req.PricingModels,
		Tags:          req.Tags,
		TechStack:     req.TechStack,
		RatingMin:     req.RatingMin,
		RatingMax:     req.RatingMax,
		FeaturedOnly:  req.FeaturedOnly,
		Limit:         page.PerPage,
		Offset:        page.Offset(),
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("execute catalog query: %w", err)
	}

	tools := make([]ToolSummary, 0, len(result.Hits))
	for _, hit := range result.Hits {
		tools = append(tools, s.enrichHit(ctx, hit))
	}

	return &QueryResult{
		Tools:   tools,
		Total:   result.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		TookMs:  result.TookMs,
		Facets:  s.buildFacets(ctx),
	}, nil
}

// Suggest returns grouped autocomplete entries for a prefix.
func (s *SearchService) Suggest(ctx context.Context, q string) (*SuggestResult, error) {
	suggestions, err := s.index.Suggest(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("execute suggest query: %w", err)
	}

	return &SuggestResult{
		Tools:      suggestions.Tools,
		Categories: s.suggestCategories(ctx, q),
		Tags:       suggestions.Tags,
		TechStack:  suggestions.TechStack,
	}, nil
}

// SuggestResult groups autocomplete entries by kind.
type SuggestResult struct {
	Tools      []search.ToolSuggestion `json:"tools"`
	Categories []CategoryFacet         `json:"categories"`
	Tags       []string                `json:"tags"`
	TechStack  []string                `json:"tech_stack"`
}

// IndexTool adds or refreshes a tool's search document. Tools that are
// not listed (unapproved or non-public) are removed instead, so the
// index only ever contains publicly listable entries.
func (s *SearchService) IndexTool(ctx context.Context, tool *domain.Tool) error {
	if !tool.IsListed() {
		return s.DeleteTool(ctx, tool.ID)
	}

	if err := s.index.IndexDocument(search.ToolToDocument(tool)); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed tool", "id", tool.ID, "slug", tool.Slug)
	return nil
}

// DeleteTool removes a tool from the index. Deleting an unindexed tool
// is a no-op.
func (s *SearchService) DeleteTool(_ context.Context, toolID string) error {
	return s.index.DeleteDocument(toolID)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire search index from the store.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	// Rebuild index (drops existing)
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.ToolDocument, 0, 64)
	for tool, err := range s.store.Tools.List(ctx) {
		if err != nil {
			return fmt.Errorf("list tools: %w", err)
		}
		if !tool.IsListed() {
			continue
		}
		docs = append(docs, search.ToolToDocument(tool))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index tools: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "documents", len(docs))
	return nil
}

// enrichHit joins a raw hit with its owner, category, and logo. Each
// enrichment is best effort; a missing side record leaves the field
// empty rather than failing the page.
func (s *SearchService) enrichHit(ctx context.Context, hit search.Hit) ToolSummary {
	summary := ToolSummary{
		ID:            hit.ID,
		Slug:          hit.Slug,
		Name:          hit.Name,
		Tagline:       hit.Tagline,
		PricingModel:  hit.PricingModel,
		Tags:          hit.Tags,
		TechStack:     hit.TechStack,
		Featured:      hit.Featured,
		RatingAverage: hit.RatingAverage,
		RatingCount:   hit.RatingCount,
		UsageCount:    hit.UsageCount,
		ViewCount:     hit.ViewCount,
	}

	tool, err := s.store.GetTool(ctx, hit.ID)
	if err != nil {
		// Index/store drift: the row still renders from stored fields.
		s.logger.Warn("indexed tool missing from store", "id", hit.ID, "error", err)
		return summary
	}

	summary.WebsiteURL = tool.WebsiteURL
	summary.OwnerID = tool.OwnerID
	summary.CreatedAt = tool.CreatedAt.Format("2006-01-02T15:04:05Z07:00")

	// Stored aggregates are the source of truth; the index copy can lag
	// briefly behind a review write.
	summary.RatingAverage = tool.RatingAverage
	summary.RatingCount = tool.RatingCount
	summary.UsageCount = tool.UsageCount
	summary.ViewCount = tool.ViewCount

	if owner, err := s.store.Users.Get(ctx, tool.OwnerID); err == nil {
		summary.OwnerName = owner.Name()
	}

	if tool.CategoryID != "" {
		if category, err := s.store.Categories.Get(ctx, tool.CategoryID); err == nil {
			summary.Category = category
		}
	}

	if media, err := s.store.ListMediaForTool(ctx, tool.ID); err == nil {
		for _, m := range media {
			if m.Kind == domain.MediaLogo {
				summary.Logo = m
				break
			}
		}
	}

	return summary
}

// buildFacets assembles the facets block. Facet sources degrade
// independently: a failed index facet query or category scan yields
// empty arrays, never an error for the whole search.
func (s *SearchService) buildFacets(ctx context.Context) QueryFacets {
	facets := QueryFacets{
		Categories:    []CategoryFacet{},
		Tags:          []search.FacetCount{},
		TechStack:     []search.FacetCount{},
		PricingModels: []search.FacetCount{},
	}

	if global, err := s.index.GlobalFacets(ctx); err != nil {
		s.logger.Warn("facet query failed, returning empty facets", "error", err)
	} else {
		facets.Tags = global.Tags
		facets.TechStack = global.TechStack
		facets.PricingModels = global.PricingModels
	}

	counts, err := s.store.CountToolsByCategory(ctx)
	if err != nil {
		s.logger.Warn("category count scan failed, returning empty category facet", "error", err)
		return facets
	}

	for category, err := range s.store.Categories.List(ctx) {
		if err != nil {
			s.logger.Warn("category list failed, returning partial category facet", "error", err)
			break
		}
		facets.Categories = append(facets.Categories, CategoryFacet{
			ID:    category.ID,
			Name:  category.Name,
			Slug:  category.Slug,
			Count: counts[category.ID],
		})
	}

	return facets
}

// resolveCategoryID accepts a category ID or slug and returns the ID.
// Unknown values pass through unchanged and simply match nothing.
func (s *SearchService) resolveCategoryID(ctx context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	category, err := s.store.Categories.GetBySlugOrID(ctx, ref)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("category resolution failed", "ref", ref, "error", err)
		}
		return ref
	}
	return category.ID
}

// suggestCategories prefix-matches category names and slugs.
func (s *SearchService) suggestCategories(ctx context.Context, q string) []CategoryFacet {
	matches := []CategoryFacet{}

	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return matches
	}

	for category, err := range s.store.Categories.List(ctx) {
		if err != nil {
			s.logger.Warn("category suggest scan failed", "error", err)
			break
		}
		if len(matches) >= maxCategorySuggestions {
			break
		}
		if strings.HasPrefix(strings.ToLower(category.Name), q) || strings.HasPrefix(category.Slug, q) {
			matches = append(matches, CategoryFacet{
				ID:   category.ID,
				Name: category.Name,
				Slug: category.Slug,
			})
		}
	}

	return matches
}
