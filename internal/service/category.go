package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tooldexapp/tooldex-server/internal/domain"
	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/id"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/util"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// CategoryService handles the catalog's category taxonomy.
type CategoryService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store *store.Store, validator *validation.Validator, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CategoryWithCount pairs a category with its listed tool count.
type CategoryWithCount struct {
	*domain.Category
	ToolCount int `json:"tool_count"`
}

// List returns all categories ordered by name, each with the number of
// listed tools it contains.
func (s *CategoryService) List(ctx context.Context) ([]CategoryWithCount, error) {
	counts, err := s.store.CountToolsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tools: %w", err)
	}

	result := []CategoryWithCount{}
	for category, err := range s.store.Categories.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		result = append(result, CategoryWithCount{
			Category:  category,
			ToolCount: counts[category.ID],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Get resolves a category by ID or slug.
func (s *CategoryService) Get(ctx context.Context, ref string) (*domain.Category, error) {
	category, err := s.store.Categories.GetBySlugOrID(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// CreateCategoryRequest contains the fields for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description,omitzero" validate:"max=500"`
	ParentID    string `json:"parent_id,omitzero"`
	Icon        string `json:"icon,omitzero" validate:"max=80"`
}

// Create adds a category. Admin access is enforced by the caller.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		if _, err := s.store.Categories.Get(ctx, req.ParentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validationf("unknown parent category %q", req.ParentID)
			}
			return nil, fmt.Errorf("get parent category: %w", err)
		}
	}

	slug := util.Slugify(req.Name)
	if slug == "" {
		return nil, domainerrors.Validation("name must contain at least one letter or digit")
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	category := &domain.Category{
		Record: domain.Record{
			ID: categoryID,
		},
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		Icon:        req.Icon,
	}
	category.InitTimestamps()

	if err := s.store.Categories.Create(ctx, category.ID, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "slug", category.Slug)
	return category, nil
}
