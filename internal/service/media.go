package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tooldexapp/tooldex-server/internal/domain"
	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/id"
	"github.com/tooldexapp/tooldex-server/internal/media/images"
	"github.com/tooldexapp/tooldex-server/internal/store"
)

// MediaService handles tool media uploads: logos and screenshots.
type MediaService struct {
	store     *store.Store
	processor *images.Processor
	storage   *images.Storage
	logger    *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(
	store *store.Store,
	processor *images.Processor,
	storage *images.Storage,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		store:     store,
		processor: processor,
		storage:   storage,
		logger:    logger,
	}
}

// Upload decodes and stores an image for a tool. Only the tool owner
// may upload. Raw image bytes come straight from the request body.
func (s *MediaService) Upload(ctx context.Context, userID, toolRef string, kind domain.MediaKind, data []byte) (*domain.ToolMedia, error) {
	if !kind.Valid() {
		return nil, domainerrors.Validationf("unknown media kind %q", kind)
	}

	tool, err := s.requireOwnedTool(ctx, userID, toolRef)
	if err != nil {
		return nil, err
	}

	mediaID, err := id.Generate("media")
	if err != nil {
		return nil, fmt.Errorf("generate media ID: %w", err)
	}

	processed, err := s.processor.Process(mediaID, data)
	if err != nil {
		return nil, domainerrors.Validation("invalid image").WithCause(err)
	}

	media := &domain.ToolMedia{
		Record: domain.Record{
			ID: mediaID,
		},
		ToolID:      tool.ID,
		Kind:        kind,
		Path:        processed.Filename,
		ContentType: processed.ContentType,
		Width:       processed.Width,
		Height:      processed.Height,
		BlurHash:    processed.BlurHash,
	}
	media.InitTimestamps()

	if err := s.store.Media.Create(ctx, media.ID, media); err != nil {
		// Orphaned file cleanup; the record is the source of truth.
		if delErr := s.storage.Delete(processed.Filename); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned media file", "path", processed.Filename, "error", delErr)
		}
		return nil, fmt.Errorf("create media record: %w", err)
	}

	s.logger.Info("Media uploaded", "media_id", media.ID, "tool_id", tool.ID, "kind", kind)
	return media, nil
}

// Serve returns a media file's bytes and content type for the HTTP
// layer to write out.
func (s *MediaService) Serve(ctx context.Context, mediaID string) ([]byte, *domain.ToolMedia, error) {
	media, err := s.store.Media.Get(ctx, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("media not found")
		}
		return nil, nil, fmt.Errorf("get media: %w", err)
	}

	data, err := s.storage.Get(media.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read media file: %w", err)
	}
	return data, media, nil
}

// ListForTool returns a tool's media records, logos first.
func (s *MediaService) ListForTool(ctx context.Context, toolRef string) ([]*domain.ToolMedia, error) {
	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}
	return s.store.ListMediaForTool(ctx, tool.ID)
}

// Delete removes a media record and its file. Only the tool owner may
// delete.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID string) error {
	media, err := s.store.Media.Get(ctx, mediaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("media not found")
		}
		return fmt.Errorf("get media: %w", err)
	}

	if _, err := s.requireOwnedTool(ctx, userID, media.ToolID); err != nil {
		return err
	}

	if err := s.store.Media.Delete(ctx, media.ID); err != nil {
		return fmt.Errorf("delete media record: %w", err)
	}

	if err := s.storage.Delete(media.Path); err != nil {
		s.logger.Warn("Failed to delete media file", "path", media.Path, "error", err)
	}

	s.logger.Info("Media deleted", "media_id", media.ID, "tool_id", media.ToolID)
	return nil
}

// requireOwnedTool resolves a tool and checks the caller owns it or is
// an admin.
func (s *MediaService) requireOwnedTool(ctx context.Context, userID, ref string) (*domain.Tool, error) {
	tool, err := s.store.GetToolByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	if tool.OwnerID == userID {
		return tool, nil
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err == nil && user.IsAdmin() {
		return tool, nil
	}
	return nil, domainerrors.Forbidden("only the tool owner can manage media")
}
