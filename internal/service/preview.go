package service

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/metadata/sitepreview"
)

// PreviewService fetches site metadata for the submission form prefill.
type PreviewService struct {
	client *sitepreview.Client
	logger *slog.Logger
}

// NewPreviewService creates a new preview service.
func NewPreviewService(client *sitepreview.Client, logger *slog.Logger) *PreviewService {
	return &PreviewService{
		client: client,
		logger: logger,
	}
}

// Fetch retrieves a URL's preview metadata. All fetch and parse
// failures surface as validation errors with a reason, since the URL
// came from user input.
func (s *PreviewService) Fetch(ctx context.Context, rawURL string) (*sitepreview.Preview, error) {
	preview, err := s.client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, previewError(rawURL, err)
	}
	return preview, nil
}

// previewError translates fetch failures into client-facing errors.
func previewError(rawURL string, err error) error {
	switch {
	case errors.Is(err, sitepreview.ErrInvalidURL):
		return domainerrors.Validation("url must be a valid http or https URL").WithCause(err)
	case errors.Is(err, sitepreview.ErrNotFound):
		return domainerrors.Validation("site returned not found").WithCause(err)
	case errors.Is(err, sitepreview.ErrNotHTML):
		return domainerrors.Validation("site did not return an HTML page").WithCause(err)
	case errors.Is(err, sitepreview.ErrRateLimited):
		return domainerrors.Validation("site is rate limiting requests, try again later").WithCause(err)
	case errors.Is(err, sitepreview.ErrBadRequest), errors.Is(err, sitepreview.ErrServer):
		return domainerrors.Validation("site could not be fetched").WithCause(err)
	default:
		return domainerrors.Validationf("could not fetch %s", rawURL).WithCause(err)
	}
}

// Close releases the underlying fetch client.
func (s *PreviewService) Close() {
	s.client.Close()
}
