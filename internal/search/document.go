// Package search provides full-text search over the tool catalog using Bleve.
// It backs the faceted browse/filter experience: text matching with fuzzy and
// prefix fallbacks, AND-combined filters, whitelist sorting, and facet counts
// for tags, tech stack, and pricing models.
package search

import (
	"github.com/tooldexapp/tooldex-server/internal/domain"
)

// ToolDocument is the document structure for the Bleve index.
//
// Only listed tools (approved and public) are indexed; drafts, private and
// unlisted tools never enter the index, so eligibility is enforced at write
// time rather than per query.
type ToolDocument struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`

	// Searchable text
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description,omitempty"`

	// Keyword fields for exact filtering and faceting
	CategoryID   string   `json:"category_id,omitempty"`
	PricingModel string   `json:"pricing_model"`
	Tags         []string `json:"tags,omitempty"`
	TechStack    []string `json:"tech_stack,omitempty"`

	Featured bool `json:"featured"`

	// Numeric fields for range queries and sorting
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
	UsageCount    int64   `json:"usage_count"`
	ViewCount     int64   `json:"view_count"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *ToolDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":             d.ID,
		"slug":           d.Slug,
		"name":           d.Name,
		"pricing_model":  d.PricingModel,
		"featured":       d.Featured,
		"rating_average": d.RatingAverage,
		"rating_count":   d.RatingCount,
		"usage_count":    d.UsageCount,
		"view_count":     d.ViewCount,
		"created_at":     d.CreatedAt,
		"updated_at":     d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Tagline != "" {
		m["tagline"] = d.Tagline
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.CategoryID != "" {
		m["category_id"] = d.CategoryID
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.TechStack) > 0 {
		m["tech_stack"] = d.TechStack
	}

	return m
}

// ToolToDocument converts a domain Tool to a ToolDocument.
// Callers are responsible for only indexing listed tools.
func ToolToDocument(tool *domain.Tool) *ToolDocument {
	return &ToolDocument{
		ID:            tool.ID,
		Slug:          tool.Slug,
		Name:          tool.Name,
		Tagline:       tool.Tagline,
		Description:   tool.Description,
		CategoryID:    tool.CategoryID,
		PricingModel:  string(tool.PricingModel),
		Tags:          tool.Tags,
		TechStack:     tool.TechStack,
		Featured:      tool.Featured,
		RatingAverage: tool.RatingAverage,
		RatingCount:   tool.RatingCount,
		UsageCount:    tool.UsageCount,
		ViewCount:     tool.ViewCount,
		CreatedAt:     tool.CreatedAt.UnixMilli(),
		UpdatedAt:     tool.UpdatedAt.UnixMilli(),
	}
}
