package store

import (
	"context"
	"sort"

	"github.com/tooldexapp/tooldex-server/internal/domain"
)

// ListMediaForTool returns a tool's media, logos first, then by upload time.
func (s *Store) ListMediaForTool(ctx context.Context, toolID string) ([]*domain.ToolMedia, error) {
	var media []*domain.ToolMedia
	for m, err := range s.Media.List(ctx) {
		if err != nil {
			return nil, err
		}
		if m.ToolID == toolID {
			media = append(media, m)
		}
	}

	sort.Slice(media, func(i, j int) bool {
		if media[i].Kind != media[j].Kind {
			return media[i].Kind == domain.MediaLogo
		}
		return media[i].CreatedAt.Before(media[j].CreatedAt)
	})

	return media, nil
}

// DeleteMediaForTool removes all media records on a tool. Used by the tool
// delete cascade. The caller is responsible for removing files on disk.
func (s *Store) DeleteMediaForTool(ctx context.Context, toolID string) ([]*domain.ToolMedia, error) {
	media, err := s.ListMediaForTool(ctx, toolID)
	if err != nil {
		return nil, err
	}

	for _, m := range media {
		if err := s.Media.Delete(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return media, nil
}
