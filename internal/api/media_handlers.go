package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/tooldexapp/tooldex-server/internal/domain"
)

func (s *Server) registerMediaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadToolMedia",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/media",
		Summary:     "Upload tool media",
		Description: "Uploads a logo or screenshot as a raw image body. Owner only. JPEG, PNG, GIF, and WebP up to 5 MiB.",
		Tags:        []string{"Media"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadToolMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "listToolMedia",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/{ref}/media",
		Summary:     "List tool media",
		Description: "Lists a tool's media records, logos first",
		Tags:        []string{"Media"},
	}, s.handleListToolMedia)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteToolMedia",
		Method:        http.MethodDelete,
		Path:          "/api/v1/media/{id}",
		Summary:       "Delete tool media",
		Description:   "Removes a media record and its stored file. Owner only.",
		Tags:          []string{"Media"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteToolMedia)

	// Direct chi route for image streaming
	s.router.Get("/media/{id}", s.handleServeMedia)
}

// === DTOs ===

// UploadMediaInput wraps a raw image upload.
type UploadMediaInput struct {
	Ref     string `path:"ref" doc:"Tool ID or slug"`
	Kind    string `query:"kind" validate:"required,oneof=logo screenshot" doc:"Media kind (logo or screenshot)"`
	RawBody []byte
}

// MediaIDInput identifies a media record.
type MediaIDInput struct {
	ID string `path:"id" doc:"Media ID"`
}

// MediaOutput wraps a single media record for Huma.
type MediaOutput struct {
	Body *domain.ToolMedia
}

// MediaListOutput wraps the media listing for Huma.
type MediaListOutput struct {
	Body []*domain.ToolMedia
}

// === Handlers ===

func (s *Server) handleUploadToolMedia(ctx context.Context, input *UploadMediaInput) (*MediaOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	media, err := s.services.Media.Upload(ctx, userID, input.Ref, domain.MediaKind(input.Kind), input.RawBody)
	if err != nil {
		return nil, err
	}

	return &MediaOutput{Body: media}, nil
}

func (s *Server) handleListToolMedia(ctx context.Context, input *ToolRefInput) (*MediaListOutput, error) {
	media, err := s.services.Media.ListForTool(ctx, input.Ref)
	if err != nil {
		return nil, err
	}

	return &MediaListOutput{Body: media}, nil
}

func (s *Server) handleDeleteToolMedia(ctx context.Context, input *MediaIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Media.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}

// handleServeMedia streams image bytes outside of huma so responses are
// not enveloped.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, media, err := s.services.Media.Serve(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
