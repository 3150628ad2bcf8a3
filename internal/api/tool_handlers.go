package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

func (s *Server) registerToolRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools",
		Summary:     "Create tool",
		Description: "Registers a new tool owned by the authenticated user. New tools start as DRAFT/PRIVATE.",
		Tags:        []string{"Tools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOwnTools",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/mine",
		Summary:     "List own tools",
		Description: "Lists all tools owned by the authenticated user, regardless of status",
		Tags:        []string{"Tools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOwnTools)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTool",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools/{ref}",
		Summary:     "Get tool",
		Description: "Returns a tool by ID or slug. Views of listed tools are counted.",
		Tags:        []string{"Tools"},
	}, s.handleGetTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTool",
		Method:      http.MethodPut,
		Path:        "/api/v1/tools/{ref}",
		Summary:     "Update tool",
		Description: "Updates a tool owned by the authenticated user. Renaming regenerates the slug.",
		Tags:        []string{"Tools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTool)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTool",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tools/{ref}",
		Summary:       "Delete tool",
		Description:   "Deletes a tool and all of its reviews, media, and search entries",
		Tags:          []string{"Tools"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/submit",
		Summary:     "Submit tool for review",
		Description: "Moves a draft or rejected tool into the moderation queue",
		Tags:        []string{"Tools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/approve",
		Summary:     "Approve tool",
		Description: "Approves a tool for public listing. Admin only.",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/reject",
		Summary:     "Reject tool",
		Description: "Rejects a submitted tool. Admin only.",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectTool)

	huma.Register(s.api, huma.Operation{
		OperationID: "suspendTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{ref}/suspend",
		Summary:     "Suspend tool",
		Description: "Suspends a listed tool and removes it from the catalog. Admin only.",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSuspendTool)
}

// === DTOs ===

// ToolResponse contains full tool information in API responses.
type ToolResponse struct {
	ID          string `json:"id" doc:"Tool ID"`
	Slug        string `json:"slug" doc:"URL slug"`
	OwnerID     string `json:"owner_id" doc:"Owning user ID"`
	Name        string `json:"name" doc:"Tool name"`
	Tagline     string `json:"tagline" doc:"One-line pitch"`
	Description string `json:"description" doc:"Long description"`

	WebsiteURL string `json:"website_url" doc:"Primary website"`
	DemoURL    string `json:"demo_url,omitempty" doc:"Live demo URL"`
	DocsURL    string `json:"docs_url,omitempty" doc:"Documentation URL"`
	RepoURL    string `json:"repo_url,omitempty" doc:"Source repository URL"`

	CategoryID string   `json:"category_id,omitempty" doc:"Category ID"`
	Tags       []string `json:"tags,omitempty" doc:"Freeform tags"`
	TechStack  []string `json:"tech_stack,omitempty" doc:"Technologies used"`

	PricingModel string `json:"pricing_model" doc:"Pricing model"`
	Status       string `json:"status" doc:"Moderation status"`
	Visibility   string `json:"visibility" doc:"Visibility setting"`
	Featured     bool   `json:"featured" doc:"Editorially featured"`

	ViewCount     int64   `json:"view_count" doc:"Detail page views"`
	UsageCount    int64   `json:"usage_count" doc:"Outbound click count"`
	RatingAverage float64 `json:"rating_average" doc:"Average review rating"`
	RatingCount   int     `json:"rating_count" doc:"Number of reviews"`

	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// ToolOutput wraps a tool response for Huma.
type ToolOutput struct {
	Body ToolResponse
}

// ToolListOutput wraps a list of tools for Huma.
type ToolListOutput struct {
	Body []ToolResponse
}

// CreateToolInput wraps the create request for Huma.
type CreateToolInput struct {
	Body service.CreateToolRequest
}

// ToolRefInput identifies a tool by ID or slug.
type ToolRefInput struct {
	Ref string `path:"ref" doc:"Tool ID or slug"`
}

// GetToolInput identifies a tool and carries referrer metadata for analytics.
type GetToolInput struct {
	Ref       string `path:"ref" doc:"Tool ID or slug"`
	Referer   string `header:"Referer"`
	UserAgent string `header:"User-Agent"`
}

// UpdateToolInput wraps the update request for Huma.
type UpdateToolInput struct {
	Ref  string `path:"ref" doc:"Tool ID or slug"`
	Body service.UpdateToolRequest
}

// === Handlers ===

func (s *Server) handleCreateTool(ctx context.Context, input *CreateToolInput) (*ToolOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tool, err := s.services.Tool.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ToolOutput{Body: mapToolResponse(tool)}, nil
}

func (s *Server) handleListOwnTools(ctx context.Context, _ *struct{}) (*ToolListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tools, err := s.services.Tool.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ToolListOutput{Body: mapToolResponses(tools)}, nil
}

func (s *Server) handleGetTool(ctx context.Context, input *GetToolInput) (*ToolOutput, error) {
	tool, err := s.services.Tool.Get(ctx, service.GetToolRequest{
		Ref:       input.Ref,
		ViewerID:  OptionalUserID(ctx),
		Referrer:  input.Referer,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &ToolOutput{Body: mapToolResponse(tool)}, nil
}

func (s *Server) handleUpdateTool(ctx context.Context, input *UpdateToolInput) (*ToolOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tool, err := s.services.Tool.Update(ctx, userID, input.Ref, input.Body)
	if err != nil {
		return nil, err
	}

	return &ToolOutput{Body: mapToolResponse(tool)}, nil
}

func (s *Server) handleDeleteTool(ctx context.Context, input *ToolRefInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tool.Delete(ctx, userID, input.Ref); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *Server) handleSubmitTool(ctx context.Context, input *ToolRefInput) (*ToolOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tool, err := s.services.Tool.Submit(ctx, userID, input.Ref)
	if err != nil {
		return nil, err
	}

	return &ToolOutput{Body: mapToolResponse(tool)}, nil
}

func (s *Server) handleApproveTool(ctx context.Context, input *ToolRefInput) (*ToolOutput, error) {
	return s.handleModeration(ctx, input.Ref, s.services.Tool.Approve)
}

func (s *Server) handleRejectTool(ctx context.Context, input *ToolRefInput) (*ToolOutput, error) {
	return s.handleModeration(ctx, input.Ref, s.services.Tool.Reject)
}

func (s *Server) handleSuspendTool(ctx context.Context, input *ToolRefInput) (*ToolOutput, error) {
	return s.handleModeration(ctx, input.Ref, s.services.Tool.Suspend)
}

func (s *Server) handleModeration(ctx context.Context, ref string, action func(context.Context, string, string) (*domain.Tool, error)) (*ToolOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tool, err := action(ctx, userID, ref)
	if err != nil {
		return nil, err
	}

	return &ToolOutput{Body: mapToolResponse(tool)}, nil
}

// === Helpers ===

func mapToolResponse(tool *domain.Tool) ToolResponse {
	return ToolResponse{
		ID:            tool.ID,
		Slug:          tool.Slug,
		OwnerID:       tool.OwnerID,
		Name:          tool.Name,
		Tagline:       tool.Tagline,
		Description:   tool.Description,
		WebsiteURL:    tool.WebsiteURL,
		DemoURL:       tool.DemoURL,
		DocsURL:       tool.DocsURL,
		RepoURL:       tool.RepoURL,
		CategoryID:    tool.CategoryID,
		Tags:          tool.Tags,
		TechStack:     tool.TechStack,
		PricingModel:  string(tool.PricingModel),
		Status:        string(tool.Status),
		Visibility:    string(tool.Visibility),
		Featured:      tool.Featured,
		ViewCount:     tool.ViewCount,
		UsageCount:    tool.UsageCount,
		RatingAverage: tool.RatingAverage,
		RatingCount:   tool.RatingCount,
		CreatedAt:     tool.CreatedAt,
		UpdatedAt:     tool.UpdatedAt,
	}
}

func mapToolResponses(tools []*domain.Tool) []ToolResponse {
	out := make([]ToolResponse, 0, len(tools))
	for _, tool := range tools {
		out = append(out, mapToolResponse(tool))
	}
	return out
}
