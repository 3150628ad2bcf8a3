package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Lists all categories ordered by name, each with its listed tool count",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{ref}",
		Summary:     "Get category",
		Description: "Returns a category by ID or slug",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Adds a category to the directory. Admin only.",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)
}

// === DTOs ===

// CategoryRefInput identifies a category by ID or slug.
type CategoryRefInput struct {
	Ref string `path:"ref" doc:"Category ID or slug"`
}

// CreateCategoryInput wraps the category create request for Huma.
type CreateCategoryInput struct {
	Body service.CreateCategoryRequest
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body *domain.Category
}

// CategoryListOutput wraps the category listing for Huma.
type CategoryListOutput struct {
	Body []service.CategoryWithCount
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoryListOutput, error) {
	categories, err := s.services.Category.List(ctx)
	if err != nil {
		return nil, err
	}

	return &CategoryListOutput{Body: categories}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *CategoryRefInput) (*CategoryOutput, error) {
	category, err := s.services.Category.Get(ctx, input.Ref)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: category}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	category, err := s.services.Category.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: category}, nil
}
