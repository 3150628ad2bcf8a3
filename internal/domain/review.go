package domain

// Review is a user's rating of a tool, at most one per (tool, user) pair.
type Review struct {
	Record
	ToolID  string `json:"tool_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"` // 1-5 inclusive
	Title   string `json:"title,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// PairKey returns the composite index key enforcing one review per user per tool.
func (r *Review) PairKey() string {
	return r.ToolID + ":" + r.UserID
}

// ValidRating reports whether the rating is in the accepted 1-5 range.
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
