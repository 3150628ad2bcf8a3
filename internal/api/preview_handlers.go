package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/metadata/sitepreview"
)

func (s *Server) registerPreviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "previewSite",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/preview",
		Summary:     "Preview a website",
		Description: "Fetches a URL and extracts its title, description, and images for submission forms",
		Tags:        []string{"Tools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePreviewSite)
}

// === DTOs ===

// PreviewInput contains the URL to preview.
type PreviewInput struct {
	URL string `query:"url" validate:"required,max=2000" doc:"URL to fetch"`
}

// PreviewOutput wraps the extracted preview for Huma.
type PreviewOutput struct {
	Body *sitepreview.Preview
}

// === Handlers ===

func (s *Server) handlePreviewSite(ctx context.Context, input *PreviewInput) (*PreviewOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	preview, err := s.services.Preview.Fetch(ctx, input.URL)
	if err != nil {
		return nil, err
	}

	return &PreviewOutput{Body: preview}, nil
}
