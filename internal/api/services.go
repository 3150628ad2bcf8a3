package api

import "github.com/tooldexapp/tooldex-server/internal/service"

// Services groups all business services used by the API layer.
type Services struct {
	Auth      *service.AuthService      // Authentication and token verification
	Session   *service.SessionService   // Session lifecycle and rotation
	Tool      *service.ToolService      // Tool CRUD and moderation
	Review    *service.ReviewService    // Reviews and rating aggregates
	Category  *service.CategoryService  // Category directory
	Search    *service.SearchService    // Catalog queries and suggestions
	Analytics *service.AnalyticsService // Event recording and summaries
	Media     *service.MediaService     // Logo and screenshot uploads
	Preview   *service.PreviewService   // Site preview fetching
}
