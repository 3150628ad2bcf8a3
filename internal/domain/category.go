package domain

// Category is a flat or single-parent grouping key for tools.
type Category struct {
	Record
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// IsRoot returns true for top-level categories.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}
