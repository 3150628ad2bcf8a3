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
	"github.com/tooldexapp/tooldex-server/internal/store/eventlog"
	"github.com/tooldexapp/tooldex-server/internal/util"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// ToolService handles the tool submission lifecycle: creation, updates,
// moderation transitions, and hard deletes with their cascades.
type ToolService struct {
	store     *store.Store
	eventLog  *eventlog.Store
	indexer   store.SearchIndexer
	media     *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewToolService creates a new tool service.
func NewToolService(
	store *store.Store,
	eventLog *eventlog.Store,
	indexer store.SearchIndexer,
	media *images.Storage,
	validator *validation.Validator,
	logger *slog.Logger,
) *ToolService {
	return &ToolService{
		store:     store,
		eventLog:  eventLog,
		indexer:   indexer,
		media:     media,
		validator: validator,
		logger:    logger,
	}
}

// CreateToolRequest contains the fields for a new tool submission.
type CreateToolRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Tagline     string   `json:"tagline" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	WebsiteURL  string   `json:"website_url" validate:"required,url"`
	DemoURL     string   `json:"demo_url,omitzero" validate:"omitempty,url"`
	DocsURL     string   `json:"docs_url,omitzero" validate:"omitempty,url"`
	RepoURL     string   `json:"repo_url,omitzero" validate:"omitempty,url"`
	CategoryID  string   `json:"category_id,omitzero"`
	Tags        []string `json:"tags,omitzero" validate:"max=10"`
	TechStack   []string `json:"tech_stack,omitzero" validate:"max=15"`

	PricingModel domain.PricingModel `json:"pricing_model,omitzero"`
}

// UpdateToolRequest contains optional field updates for a tool.
// Nil fields are left unchanged.
type UpdateToolRequest struct {
	Name        *string   `json:"name,omitzero" validate:"omitempty,max=120"`
	Tagline     *string   `json:"tagline,omitzero" validate:"omitempty,max=200"`
	Description *string   `json:"description,omitzero" validate:"omitempty,max=10000"`
	WebsiteURL  *string   `json:"website_url,omitzero" validate:"omitempty,url"`
	DemoURL     *string   `json:"demo_url,omitzero" validate:"omitempty,url"`
	DocsURL     *string   `json:"docs_url,omitzero" validate:"omitempty,url"`
	RepoURL     *string   `json:"repo_url,omitzero" validate:"omitempty,url"`
	CategoryID  *string   `json:"category_id,omitzero"`
	Tags        *[]string `json:"tags,omitzero"`
	TechStack   *[]string `json:"tech_stack,omitzero"`

	PricingModel *domain.PricingModel `json:"pricing_model,omitzero"`
	Visibility   *domain.Visibility   `json:"visibility,omitzero"`
}

// Create registers a new tool owned by ownerID. New tools start as
// DRAFT/PRIVATE and stay out of the public catalog until approved.
func (s *ToolService) Create(ctx context.Context, ownerID string, req CreateToolRequest) (*domain.Tool, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	pricing := req.PricingModel
	if pricing == "" {
		pricing = domain.PricingFree
	}
	if !pricing.Valid() {
		return nil, domainerrors.Validationf("unknown pricing model %q", pricing)
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	slug := util.Slugify(req.Name)
	if slug == "" {
		return nil, domainerrors.Validation("name must contain at least one letter or digit")
	}

	toolID, err := id.Generate("tool")
	if err != nil {
		return nil, fmt.Errorf("generate tool ID: %w", err)
	}

	tool := &domain.Tool{
		Record: domain.Record{
			ID: toolID,
		},
		OwnerID:      ownerID,
		Name:         req.Name,
		Slug:         slug,
		Tagline:      req.Tagline,
		Description:  req.Description,
		WebsiteURL:   req.WebsiteURL,
		DemoURL:      req.DemoURL,
		DocsURL:      req.DocsURL,
		RepoURL:      req.RepoURL,
		CategoryID:   categoryID,
		Tags:         util.NormalizeTags(req.Tags),
		TechStack:    util.NormalizeTags(req.TechStack),
		PricingModel: pricing,
		Status:       domain.StatusDraft,
		Visibility:   domain.VisibilityPrivate,
	}
	tool.InitTimestamps()

	// The slug index rejects duplicates inside the create transaction.
	if err := s.store.Tools.Create(ctx, tool.ID, tool); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a tool with this name already exists")
		}
		return nil, fmt.Errorf("create tool: %w", err)
	}

	if err := s.eventLog.Record(ctx, tool.ID, ownerID, domain.EventSignup, "", ""); err != nil {
		s.logger.Warn("Failed to record signup event", "tool_id", tool.ID, "error", err)
	}

	s.logger.Info("Tool created", "tool_id", tool.ID, "slug", tool.Slug, "owner_id", ownerID)
	return tool, nil
}

// GetToolRequest identifies a tool view: who is looking and where they
// came from. Referrer and UserAgent feed the view analytics.
type GetToolRequest struct {
	Ref       string // ID or slug
	ViewerID  string // Empty for anonymous
	Referrer  string
	UserAgent string
}

// Get resolves a tool by ID or slug and applies visibility rules.
// Views of listed tools bump the view counter and append a VIEW event;
// both are best effort and never fail the read.
func (s *ToolService) Get(ctx context.Context, req GetToolRequest) (*domain.Tool, error) {
	tool, err := s.store.GetToolByRef(ctx, req.Ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	if !tool.ViewableBy(req.ViewerID) {
		return nil, domainerrors.Forbidden("you do not have access to this tool")
	}

	if tool.IsListed() && req.ViewerID != tool.OwnerID {
		if err := s.store.IncrementViewCount(ctx, tool.ID); err != nil {
			s.logger.Warn("Failed to increment view count", "tool_id", tool.ID, "error", err)
		} else {
			tool.ViewCount++
		}
		if err := s.eventLog.Record(ctx, tool.ID, req.ViewerID, domain.EventView, req.Referrer, req.UserAgent); err != nil {
			s.logger.Warn("Failed to record view event", "tool_id", tool.ID, "error", err)
		}
	}

	return tool, nil
}

// Update applies changes to a tool. Only the owner or an admin may
// update; a name change regenerates the slug.
func (s *ToolService) Update(ctx context.Context, userID, ref string, req UpdateToolRequest) (*domain.Tool, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tool, err := s.requireOwned(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != tool.Name {
		slug := util.Slugify(*req.Name)
		if slug == "" {
			return nil, domainerrors.Validation("name must contain at least one letter or digit")
		}
		taken, err := s.store.SlugTaken(ctx, slug, tool.ID)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return nil, domainerrors.AlreadyExists("a tool with this name already exists")
		}
		tool.Name = *req.Name
		tool.Slug = slug
	}

	if req.Tagline != nil {
		tool.Tagline = *req.Tagline
	}
	if req.Description != nil {
		tool.Description = *req.Description
	}
	if req.WebsiteURL != nil {
		tool.WebsiteURL = *req.WebsiteURL
	}
	if req.DemoURL != nil {
		tool.DemoURL = *req.DemoURL
	}
	if req.DocsURL != nil {
		tool.DocsURL = *req.DocsURL
	}
	if req.RepoURL != nil {
		tool.RepoURL = *req.RepoURL
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		tool.CategoryID = categoryID
	}
	if req.Tags != nil {
		tool.Tags = util.NormalizeTags(*req.Tags)
	}
	if req.TechStack != nil {
		tool.TechStack = util.NormalizeTags(*req.TechStack)
	}
	if req.PricingModel != nil {
		if !req.PricingModel.Valid() {
			return nil, domainerrors.Validationf("unknown pricing model %q", *req.PricingModel)
		}
		tool.PricingModel = *req.PricingModel
	}
	if req.Visibility != nil {
		switch *req.Visibility {
		case domain.VisibilityPublic, domain.VisibilityPrivate, domain.VisibilityUnlisted:
			tool.Visibility = *req.Visibility
		default:
			return nil, domainerrors.Validationf("unknown visibility %q", *req.Visibility)
		}
	}

	tool.Touch()
	if err := s.store.Tools.Update(ctx, tool.ID, tool); err != nil {
		return nil, fmt.Errorf("update tool: %w", err)
	}

	s.reindex(ctx, tool)
	return tool, nil
}

// Delete removes a tool and everything hanging off it: reviews, media
// records and files, and the search document.
func (s *ToolService) Delete(ctx context.Context, userID, ref string) error {
	tool, err := s.requireOwned(ctx, userID, ref)
	if err != nil {
		return err
	}

	if _, err := s.store.DeleteReviewsForTool(ctx, tool.ID); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}

	deleted, err := s.store.DeleteMediaForTool(ctx, tool.ID)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	for _, m := range deleted {
		if err := s.media.Delete(m.Path); err != nil {
			s.logger.Warn("Failed to delete media file", "path", m.Path, "error", err)
		}
	}

	if err := s.store.Tools.Delete(ctx, tool.ID); err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}

	if err := s.indexer.DeleteTool(ctx, tool.ID); err != nil {
		s.logger.Warn("Failed to remove tool from search index", "tool_id", tool.ID, "error", err)
	}

	s.logger.Info("Tool deleted", "tool_id", tool.ID, "slug", tool.Slug)
	return nil
}

// Submit moves a draft (or rejected resubmission) into the moderation
// queue.
func (s *ToolService) Submit(ctx context.Context, userID, ref string) (*domain.Tool, error) {
	tool, err := s.requireOwned(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	switch tool.Status {
	case domain.StatusDraft, domain.StatusRejected:
		// Submittable.
	case domain.StatusPendingReview:
		return nil, domainerrors.Conflict("tool is already pending review")
	default:
		return nil, domainerrors.Conflictf("tool cannot be submitted from status %s", tool.Status)
	}

	return s.setStatus(ctx, tool, domain.StatusPendingReview)
}

// Approve marks a tool as approved. Admin only.
func (s *ToolService) Approve(ctx context.Context, actorID, ref string) (*domain.Tool, error) {
	return s.moderate(ctx, actorID, ref, domain.StatusApproved)
}

// Reject marks a tool as rejected. Admin only.
func (s *ToolService) Reject(ctx context.Context, actorID, ref string) (*domain.Tool, error) {
	return s.moderate(ctx, actorID, ref, domain.StatusRejected)
}

// Suspend pulls an approved tool from the catalog. Admin only.
func (s *ToolService) Suspend(ctx context.Context, actorID, ref string) (*domain.Tool, error) {
	return s.moderate(ctx, actorID, ref, domain.StatusSuspended)
}

// ListOwned returns all tools owned by the given user, any status.
func (s *ToolService) ListOwned(ctx context.Context, ownerID string) ([]*domain.Tool, error) {
	tools, err := s.store.ListToolsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return tools, nil
}

// moderate applies an admin status transition.
func (s *ToolService) moderate(ctx context.Context, actorID, ref string, status domain.ToolStatus) (*domain.Tool, error) {
	actor, err := s.store.Users.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("unknown user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("admin access required")
	}

	tool, err := s.store.GetToolByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tool not found")
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	return s.setStatus(ctx, tool, status)
}

// setStatus persists a status change and syncs the search index. The
// index sync handles both directions: newly listed tools get indexed,
// delisted ones get removed.
func (s *ToolService) setStatus(ctx context.Context, tool *domain.Tool, status domain.ToolStatus) (*domain.Tool, error) {
	tool.Status = status
	tool.Touch()

	if err := s.store.Tools.Update(ctx, tool.ID, tool); err != nil {
		return nil, fmt.Errorf("update tool: %w", err)
	}

	s.reindex(ctx, tool)
	s.logger.Info("Tool status changed", "tool_id", tool.ID, "status", status)
	return tool, nil
}

// requireOwned resolves a tool and checks the caller may modify it.
// Admins may modify any tool.
func (s *ToolService) requireOwned(ctx context.Context, userID, ref string) (*domain.Tool, error) {
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
	return nil, domainerrors.Forbidden("only the tool owner can do this")
}

// resolveCategory accepts a category ID or slug and returns the stored
// ID. Empty means no category.
func (s *ToolService) resolveCategory(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	category, err := s.store.Categories.GetBySlugOrID(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.Validationf("unknown category %q", ref)
		}
		return "", fmt.Errorf("resolve category: %w", err)
	}
	return category.ID, nil
}

// reindex pushes a tool's current state to the search index. Index
// failures degrade search freshness, not the write itself.
func (s *ToolService) reindex(ctx context.Context, tool *domain.Tool) {
	if err := s.indexer.IndexTool(ctx, tool); err != nil {
		s.logger.Warn("Failed to sync tool to search index", "tool_id", tool.ID, "error", err)
	}
}
