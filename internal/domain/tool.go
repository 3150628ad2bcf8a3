package domain

// PricingModel describes how a tool charges its users.
type PricingModel string

const (
	PricingFree         PricingModel = "FREE"
	PricingFreemium     PricingModel = "FREEMIUM"
	PricingSubscription PricingModel = "SUBSCRIPTION"
	PricingPayPerUse    PricingModel = "PAY_PER_USE"
	PricingOneTime      PricingModel = "ONE_TIME"
)

// Valid reports whether the pricing model is one of the known values.
func (p PricingModel) Valid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingSubscription, PricingPayPerUse, PricingOneTime:
		return true
	}
	return false
}

// ToolStatus tracks a tool's position in the moderation pipeline.
type ToolStatus string

const (
	StatusDraft         ToolStatus = "DRAFT"
	StatusPendingReview ToolStatus = "PENDING_REVIEW"
	StatusApproved      ToolStatus = "APPROVED"
	StatusRejected      ToolStatus = "REJECTED"
	StatusSuspended     ToolStatus = "SUSPENDED"
)

// Visibility controls who can see a tool's detail page.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityUnlisted Visibility = "UNLISTED"
)

// Tool is a catalog entry submitted by a maker.
type Tool struct {
	Record
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`

	WebsiteURL string `json:"website_url"`
	DemoURL    string `json:"demo_url,omitempty"`
	DocsURL    string `json:"docs_url,omitempty"`
	RepoURL    string `json:"repo_url,omitempty"`

	CategoryID string   `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	TechStack  []string `json:"tech_stack,omitempty"`

	PricingModel PricingModel `json:"pricing_model"`
	Status       ToolStatus   `json:"status"`
	Visibility   Visibility   `json:"visibility"`
	Featured     bool         `json:"featured"`

	// Aggregate counters. Rating fields are recomputed from reviews on
	// every review mutation and must not be written anywhere else.
	ViewCount     int64   `json:"view_count"`
	UsageCount    int64   `json:"usage_count"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
}

// IsListed returns true if the tool appears in public search and listings.
func (t *Tool) IsListed() bool {
	return t.Status == StatusApproved && t.Visibility == VisibilityPublic
}

// ViewableBy reports whether the given user (empty for anonymous) may see
// the tool's detail page. Unlisted tools are reachable by direct link,
// private or unapproved tools only by their owner.
func (t *Tool) ViewableBy(userID string) bool {
	if userID != "" && userID == t.OwnerID {
		return true
	}
	if t.Status != StatusApproved {
		return false
	}
	return t.Visibility == VisibilityPublic || t.Visibility == VisibilityUnlisted
}

// SetRating replaces the stored rating aggregates.
func (t *Tool) SetRating(average float64, count int) {
	t.RatingAverage = average
	t.RatingCount = count
}
