package store

import (
	"context"
	"sort"

	"github.com/tooldexapp/tooldex-server/internal/domain"
)

// GetReviewByPair retrieves the single review a user left on a tool.
func (s *Store) GetReviewByPair(ctx context.Context, toolID, userID string) (*domain.Review, error) {
	return s.Reviews.GetByIndex(ctx, "pair", toolID+":"+userID)
}

// ListReviewsForTool returns all reviews on a tool, newest first.
func (s *Store) ListReviewsForTool(ctx context.Context, toolID string) ([]*domain.Review, error) {
	var reviews []*domain.Review
	for review, err := range s.Reviews.List(ctx) {
		if err != nil {
			return nil, err
		}
		if review.ToolID == toolID {
			reviews = append(reviews, review)
		}
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return reviews, nil
}

// DeleteReviewsForTool removes all reviews on a tool. Used by the tool
// delete cascade.
func (s *Store) DeleteReviewsForTool(ctx context.Context, toolID string) (int, error) {
	reviews, err := s.ListReviewsForTool(ctx, toolID)
	if err != nil {
		return 0, err
	}

	for _, review := range reviews {
		if err := s.Reviews.Delete(ctx, review.ID); err != nil {
			return 0, err
		}
	}
	return len(reviews), nil
}
