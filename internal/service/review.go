package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/tooldexapp/tooldex-server/internal/domain"
	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/id"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// ReviewService handles tool reviews and keeps the rating aggregates on
// the tool in sync with them.
type ReviewService struct {
	store     *store.Store
	indexer   store.SearchIndexer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	store *store.Store,
	indexer store.SearchIndexer,
	validator *validation.Validator,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		store:     store,
		indexer:   indexer,
		validator: validator,
		logger:    logger,
	}
}

// CreateReviewRequest contains the fields for a new review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title,omitzero" validate:"max=120"`
	Comment string `json:"comment,omitzero" validate:"max=5000"`
}

// ReviewWithAuthor pairs a review with its author's display name.
type ReviewWithAuthor struct {
	*domain.Review
	AuthorName string `json:"author_name,omitzero"`
}

// Create adds a review on a tool. One review per user per tool; owners
// cannot review their own tools.
func (s *ReviewService) Create(ctx context.Context, userID, toolRef string, req CreateReviewRequest) (*domain.Review, error) {
	if !domain.ValidRating(req.Rating) {
		return nil, domainerrors.Validation("rating must be between 1 and 5")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	if tool.OwnerID == userID {
		return nil, domainerrors.Forbidden("you cannot review your own tool")
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Record: domain.Record{
			ID: reviewID,
		},
		ToolID:  tool.ID,
		UserID:  userID,
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	}
	review.InitTimestamps()

	// The pair index rejects a second review from the same user inside
	// the create transaction.
	if err := s.store.Reviews.Create(ctx, review.ID, review); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("you have already reviewed this tool")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.recomputeRating(ctx, tool); err != nil {
		return nil, err
	}

	s.logger.Info("Review created", "review_id", review.ID, "tool_id", tool.ID, "rating", review.Rating)
	return review, nil
}

// Update changes the caller's own review on a tool.
func (s *ReviewService) Update(ctx context.Context, userID, toolRef string, req CreateReviewRequest) (*domain.Review, error) {
	if !domain.ValidRating(req.Rating) {
		return nil, domainerrors.Validation("rating must be between 1 and 5")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	review, err := s.store.GetReviewByPair(ctx, tool.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	review.Rating = req.Rating
	review.Title = req.Title
	review.Comment = req.Comment
	review.Touch()

	if err := s.store.Reviews.Update(ctx, review.ID, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.recomputeRating(ctx, tool); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes the caller's own review on a tool.
func (s *ReviewService) Delete(ctx context.Context, userID, toolRef string) error {
	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tool not found")
		}
		return fmt.Errorf("get tool: %w", err)
	}

	review, err := s.store.GetReviewByPair(ctx, tool.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("get review: %w", err)
	}

	if err := s.store.Reviews.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	return s.recomputeRating(ctx, tool)
}

// List returns a tool's reviews newest first, with author display names
// attached. Author lookup is best effort.
func (s *ReviewService) List(ctx context.Context, toolRef string) ([]ReviewWithAuthor, error) {
	tool, err := s.store.GetToolByRef(ctx, toolRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	reviews, err := s.store.ListReviewsForTool(ctx, tool.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	result := make([]ReviewWithAuthor, 0, len(reviews))
	for _, review := range reviews {
		entry := ReviewWithAuthor{Review: review}
		if author, err := s.store.Users.Get(ctx, review.UserID); err == nil {
			entry.AuthorName = author.Name()
		}
		result = append(result, entry)
	}
	return result, nil
}

// recomputeRating rebuilds the tool's rating aggregates from its
// current review set and syncs the search index.
func (s *ReviewService) recomputeRating(ctx context.Context, tool *domain.Tool) error {
	reviews, err := s.store.ListReviewsForTool(ctx, tool.ID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}

	var sum int
	for _, review := range reviews {
		sum += review.Rating
	}

	average := 0.0
	if len(reviews) > 0 {
		// Round to two decimals, enough precision for display and sorting.
		average = math.Round(float64(sum)/float64(len(reviews))*100) / 100
	}

	tool.SetRating(average, len(reviews))
	tool.Touch()

	if err := s.store.Tools.Update(ctx, tool.ID, tool); err != nil {
		return fmt.Errorf("update tool rating: %w", err)
	}

	if err := s.indexer.IndexTool(ctx, tool); err != nil {
		s.logger.Warn("Failed to sync tool rating to search index", "tool_id", tool.ID, "error", err)
	}
	return nil
}
