package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// Suggestion limits per group. Tools get the most slots since they are
// what users are usually typing toward.
const (
	maxToolSuggestions = 5
	maxTagSuggestions  = 5
	maxTechSuggestions = 5
)

// ToolSuggestion is a single tool autocomplete entry.
type ToolSuggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Suggestions groups autocomplete results by kind. Categories are
// resolved by the caller since they live outside the index.
type Suggestions struct {
	Tools     []ToolSuggestion `json:"tools"`
	Tags      []string         `json:"tags"`
	TechStack []string         `json:"tech_stack"`
}

// Suggest returns autocomplete entries for a prefix. Queries under two
// characters return empty groups without touching the index.
func (s *Index) Suggest(ctx context.Context, q string) (*Suggestions, error) {
	suggestions := &Suggestions{
		Tools:     []ToolSuggestion{},
		Tags:      []string{},
		TechStack: []string{},
	}

	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return suggestions, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.ToLower(q)

	// Tool names: prefix on the analyzed name terms plus the raw slug.
	namePrefix := bleve.NewPrefixQuery(prefix)
	namePrefix.SetField("name")
	slugPrefix := bleve.NewPrefixQuery(prefix)
	slugPrefix.SetField("slug")

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(namePrefix, slugPrefix), maxToolSuggestions, 0, false)
	req.Fields = []string{"id", "name", "slug"}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute suggest query: %w", err)
	}

	for _, hit := range result.Hits {
		suggestion := ToolSuggestion{ID: hit.ID}
		if v, ok := hit.Fields["name"].(string); ok {
			suggestion.Name = v
		}
		if v, ok := hit.Fields["slug"].(string); ok {
			suggestion.Slug = v
		}
		suggestions.Tools = append(suggestions.Tools, suggestion)
	}

	// Tag and tech terms: filter the global facet terms by prefix.
	facets, err := s.globalFacetsLocked(ctx)
	if err != nil {
		// Facet failure degrades to empty groups rather than failing suggest.
		s.logger.Warn("suggest facet query failed", "error", err)
		return suggestions, nil
	}

	for _, tag := range facets.Tags {
		if len(suggestions.Tags) >= maxTagSuggestions {
			break
		}
		if strings.HasPrefix(tag.Value, prefix) {
			suggestions.Tags = append(suggestions.Tags, tag.Value)
		}
	}
	for _, tech := range facets.TechStack {
		if len(suggestions.TechStack) >= maxTechSuggestions {
			break
		}
		if strings.HasPrefix(tech.Value, prefix) {
			suggestions.TechStack = append(suggestions.TechStack, tech.Value)
		}
	}

	return suggestions, nil
}

// globalFacetsLocked runs the facet query assuming the read lock is held.
func (s *Index) globalFacetsLocked(ctx context.Context) (*Facets, error) {
	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	searchRequest.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
	searchRequest.AddFacet("tech_stack", bleve.NewFacetRequest("tech_stack", 20))

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, err
	}

	return &Facets{
		Tags:      extractFacet(searchResult, "tags"),
		TechStack: extractFacet(searchResult, "tech_stack"),
	}, nil
}
