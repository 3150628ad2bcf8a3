package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for tool documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on name/tagline/description with English stemming
//  2. Exact keyword matching for category, pricing, tag, and tech filters
//  3. Keyword facets on tags, tech_stack, and pricing_model
//  4. Numeric range queries on the rating average and numeric sort fields
func buildIndexMapping() mapping.IndexMapping {
	// Create the index mapping
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Create document mapping
	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Tagline - searchable text
	taglineFieldMapping := bleve.NewTextFieldMapping()
	taglineFieldMapping.Analyzer = en.AnalyzerName
	taglineFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tagline", taglineFieldMapping)

	// Description - searchable but not stored (too large)
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Slug - stored for linking from results, prefix-matchable for suggest
	slugFieldMapping := bleve.NewTextFieldMapping()
	slugFieldMapping.Analyzer = keyword.Name
	slugFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("slug", slugFieldMapping)

	// Category - for equality filtering
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category_id", categoryFieldMapping)

	// Pricing model - for set-membership filtering and the pricing histogram
	pricingFieldMapping := bleve.NewTextFieldMapping()
	pricingFieldMapping.Analyzer = keyword.Name
	pricingFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("pricing_model", pricingFieldMapping)

	// Tags - keyword analyzer keeps compound slugs intact (e.g., "image-gen")
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Tech stack - same treatment as tags
	techFieldMapping := bleve.NewTextFieldMapping()
	techFieldMapping.Analyzer = keyword.Name
	techFieldMapping.Store = true
	techFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("tech_stack", techFieldMapping)

	// --- Boolean fields ---

	featuredFieldMapping := bleve.NewBooleanFieldMapping()
	featuredFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("featured", featuredFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	ratingFieldMapping := bleve.NewNumericFieldMapping()
	ratingFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("rating_average", ratingFieldMapping)

	ratingCountFieldMapping := bleve.NewNumericFieldMapping()
	ratingCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("rating_count", ratingCountFieldMapping)

	usageFieldMapping := bleve.NewNumericFieldMapping()
	usageFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("usage_count", usageFieldMapping)

	viewFieldMapping := bleve.NewNumericFieldMapping()
	viewFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("view_count", viewFieldMapping)

	// Timestamps - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
