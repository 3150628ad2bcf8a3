package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/{ref}/reviews",
		Summary:     "List reviews",
		Description: "Lists reviews for a tool, newest first, with author display names",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/reviews",
		Summary:     "Create review",
		Description: "Adds a review on a tool. One review per user; owners cannot review their own tools.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/tools/{ref}/reviews",
		Summary:     "Update own review",
		Description: "Replaces the authenticated user's review of a tool",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tools/{ref}/reviews",
		Summary:       "Delete own review",
		Description:   "Removes the authenticated user's review of a tool",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewInput wraps a review body with the tool reference.
type ReviewInput struct {
	Ref  string `path:"ref" doc:"Tool ID or slug"`
	Body service.CreateReviewRequest
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// ReviewListOutput wraps the review listing for Huma.
type ReviewListOutput struct {
	Body []service.ReviewWithAuthor
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *ToolRefInput) (*ReviewListOutput, error) {
	reviews, err := s.services.Review.List(ctx, input.Ref)
	if err != nil {
		return nil, err
	}

	return &ReviewListOutput{Body: reviews}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *ReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Create(ctx, userID, input.Ref, input.Body)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *ReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Update(ctx, userID, input.Ref, input.Body)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ToolRefInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.Delete(ctx, userID, input.Ref); err != nil {
		return nil, err
	}

	return nil, nil
}
