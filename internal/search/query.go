package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog query. Every filter is optional: absent
// filters are omitted from the query entirely rather than defaulted, and
// the present ones are combined with AND.
type Params struct {
	Query string // Free-text query against name/tagline/description/tags

	// Filters
	CategoryID    string   // Equality filter
	PricingModels []string // Set-membership filter
	Tags          []string // Set-overlap filter: any listed tag present
	TechStack     []string // Set-overlap filter: any listed entry present
	RatingMin     float64  // Lower bound on rating average (0 = unset)
	RatingMax     float64  // Upper bound on rating average (0 = unset)
	FeaturedOnly  bool

	// Pagination (already clamped by the caller)
	Limit  int
	Offset int

	// Sorting. SortBy outside the whitelist silently falls back to
	// created_at; SortOrder anything but "asc" means descending.
	SortBy    string
	SortOrder string
}

// sortFields whitelists the sortable columns and maps request names to
// index fields. Both spellings of the rating sort are accepted.
var sortFields = map[string]string{
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"name":           "name",
	"average_rating": "rating_average",
	"rating_average": "rating_average",
	"usage_count":    "usage_count",
}

// SortField resolves the requested sort column against the whitelist.
// Unknown values fall back to created_at; this is policy, not an error.
func SortField(requested string) string {
	if field, ok := sortFields[requested]; ok {
		return field
	}
	return "created_at"
}

// Result represents one page of catalog matches.
type Result struct {
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matched tool with its stored fields.
type Hit struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Score         float64  `json:"score"`
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline,omitempty"`
	CategoryID    string   `json:"category_id,omitempty"`
	PricingModel  string   `json:"pricing_model"`
	Tags          []string `json:"tags,omitempty"`
	TechStack     []string `json:"tech_stack,omitempty"`
	Featured      bool     `json:"featured"`
	RatingAverage float64  `json:"rating_average"`
	RatingCount   int      `json:"rating_count"`
	UsageCount    int64    `json:"usage_count"`
	ViewCount     int64    `json:"view_count"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets contains catalog-wide facet counts. Counts are global, not
// scoped to the active filter set.
type Facets struct {
	Tags          []FacetCount `json:"tags"`
	TechStack     []FacetCount `json:"tech_stack"`
	PricingModels []FacetCount `json:"pricing_models"`
}

// Search executes a catalog query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build the query
	searchQuery := buildCatalogQuery(params)

	// Create search request
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Add sorting
	addSorting(searchRequest, params)

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "slug", "name", "tagline", "category_id", "pricing_model",
		"tags", "tech_stack", "featured", "rating_average", "rating_count",
		"usage_count", "view_count",
	}

	// Execute search
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	// Convert results
	result := &Result{
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if v, ok := hit.Fields["slug"].(string); ok {
			h.Slug = v
		}
		if v, ok := hit.Fields["name"].(string); ok {
			h.Name = v
		}
		if v, ok := hit.Fields["tagline"].(string); ok {
			h.Tagline = v
		}
		if v, ok := hit.Fields["category_id"].(string); ok {
			h.CategoryID = v
		}
		if v, ok := hit.Fields["pricing_model"].(string); ok {
			h.PricingModel = v
		}
		if v, ok := hit.Fields["featured"].(bool); ok {
			h.Featured = v
		}
		if v, ok := hit.Fields["rating_average"].(float64); ok {
			h.RatingAverage = v
		}
		if v, ok := hit.Fields["rating_count"].(float64); ok {
			h.RatingCount = int(v)
		}
		if v, ok := hit.Fields["usage_count"].(float64); ok {
			h.UsageCount = int64(v)
		}
		if v, ok := hit.Fields["view_count"].(float64); ok {
			h.ViewCount = int64(v)
		}
		h.Tags = stringsField(hit.Fields["tags"])
		h.TechStack = stringsField(hit.Fields["tech_stack"])

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// GlobalFacets computes catalog-wide facet counts with a match-all query.
// Tag and tech facets return the top 20 terms by usage; the pricing
// histogram covers all five models.
func (s *Index) GlobalFacets(ctx context.Context) (*Facets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	searchRequest.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
	searchRequest.AddFacet("tech_stack", bleve.NewFacetRequest("tech_stack", 20))
	searchRequest.AddFacet("pricing_models", bleve.NewFacetRequest("pricing_model", 5))

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute facet query: %w", err)
	}

	facets := &Facets{
		Tags:          []FacetCount{},
		TechStack:     []FacetCount{},
		PricingModels: []FacetCount{},
	}
	facets.Tags = extractFacet(searchResult, "tags")
	facets.TechStack = extractFacet(searchResult, "tech_stack")
	facets.PricingModels = extractFacet(searchResult, "pricing_models")

	return facets, nil
}

// buildCatalogQuery constructs the Bleve query from params.
func buildCatalogQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query against name, tagline, description, and tags.
	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Tagline match
		taglineMatch := bleve.NewMatchQuery(params.Query)
		taglineMatch.SetField("tagline")
		taglineMatch.SetBoost(1.5)
		textQueries = append(textQueries, taglineMatch)

		// Description match
		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Exact tag containment: a query equal to one of a tool's tags is a
		// match even when name/tagline/description say nothing about it.
		tagMatch := bleve.NewTermQuery(strings.ToLower(params.Query))
		tagMatch.SetField("tags")
		tagMatch.SetBoost(2.0)
		textQueries = append(textQueries, tagMatch)

		// Add fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for partial words (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Category filter (equality)
	if params.CategoryID != "" {
		cq := bleve.NewTermQuery(params.CategoryID)
		cq.SetField("category_id")
		queries = append(queries, cq)
	}

	// Pricing model filter (set membership, OR across models)
	if len(params.PricingModels) > 0 {
		pricingQueries := make([]query.Query, len(params.PricingModels))
		for i, model := range params.PricingModels {
			pq := bleve.NewTermQuery(model)
			pq.SetField("pricing_model")
			pricingQueries[i] = pq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(pricingQueries...))
	}

	// Tag filter (set overlap: any listed tag present)
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Tech stack filter (set overlap)
	if len(params.TechStack) > 0 {
		techQueries := make([]query.Query, len(params.TechStack))
		for i, tech := range params.TechStack {
			tq := bleve.NewTermQuery(tech)
			tq.SetField("tech_stack")
			techQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(techQueries...))
	}

	// Rating range filter
	if params.RatingMin > 0 || params.RatingMax > 0 {
		minRating := params.RatingMin
		maxRating := params.RatingMax
		if maxRating == 0 {
			maxRating = 5
		}
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(&minRating, &maxRating, &inclusive, &inclusive)
		rangeQuery.SetField("rating_average")
		queries = append(queries, rangeQuery)
	}

	// Featured filter
	if params.FeaturedOnly {
		fq := bleve.NewBoolFieldQuery(true)
		fq.SetField("featured")
		queries = append(queries, fq)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order from the whitelisted sort column.
func addSorting(req *bleve.SearchRequest, params Params) {
	field := SortField(params.SortBy)
	if params.SortOrder == "asc" {
		req.SortBy([]string{field})
	} else {
		req.SortBy([]string{"-" + field})
	}
}

// extractFacet converts one Bleve facet result to our format.
func extractFacet(result *bleve.SearchResult, name string) []FacetCount {
	counts := []FacetCount{}
	facet, ok := result.Facets[name]
	if !ok {
		return counts
	}
	for _, term := range facet.Terms.Terms() {
		counts = append(counts, FacetCount{
			Value: term.Term,
			Count: term.Count,
		})
	}
	return counts
}

// stringsField coerces a stored field that may be a string or []interface{}.
// Bleve flattens single-element arrays to scalars on retrieval.
func stringsField(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
