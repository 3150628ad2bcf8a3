package api

import (
	"context"
	"encoding/hex"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tooldexapp/tooldex-server/internal/auth"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/media/images"
	"github.com/tooldexapp/tooldex-server/internal/metadata/sitepreview"
	"github.com/tooldexapp/tooldex-server/internal/search"
	"github.com/tooldexapp/tooldex-server/internal/service"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/store/eventlog"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server with everything handler tests need.
type testServer struct {
	*Server
	api          humatest.TestAPI
	cleanup      func()
	tokenService *auth.TokenService
}

// setupTestServer creates a test server with the full service stack on
// temporary storage.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tooldex-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	events, err := eventlog.Open(filepath.Join(tmpDir, "analytics.db"), nil)
	require.NoError(t, err)

	index, err := search.NewIndex(search.Options{DataPath: tmpDir})
	require.NoError(t, err)

	storage, err := images.NewStorage(filepath.Join(tmpDir, "media"))
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	validator := validation.New()

	searchService := service.NewSearchService(index, st, logger)
	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, validator, logger)
	previewClient := sitepreview.New(logger)

	services := &Services{
		Auth:      authService,
		Session:   sessionService,
		Tool:      service.NewToolService(st, events, searchService, storage, validator, logger),
		Review:    service.NewReviewService(st, searchService, validator, logger),
		Category:  service.NewCategoryService(st, validator, logger),
		Search:    searchService,
		Analytics: service.NewAnalyticsService(st, events, logger),
		Media:     service.NewMediaService(st, images.NewProcessor(storage, logger), storage, logger),
		Preview:   service.NewPreviewService(previewClient, logger),
	}

	router := chi.NewRouter()
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Tooldex API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             humaAPI,
		logger:          logger,
		authRateLimiter: NewRateLimiter(100, time.Minute, 50),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerToolRoutes()
	s.registerSearchRoutes()
	s.registerReviewRoutes()
	s.registerCategoryRoutes()
	s.registerAnalyticsRoutes()
	s.registerMediaRoutes()
	s.registerPreviewRoutes()

	cleanup := func() {
		previewClient.Close()
		_ = index.Close()
		_ = events.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, humaAPI),
		cleanup:      cleanup,
		tokenService: tokenService,
	}
}

// registerUser creates a user via the API and returns its token and ID.
func (ts *testServer) registerUser(t *testing.T, email, displayName string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "SecurePassword123!",
		"display_name": displayName,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

// registerAdmin creates a user and promotes it to admin in the store.
func (ts *testServer) registerAdmin(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	token, userID = ts.registerUser(t, email, "Admin")

	ctx := context.Background()
	user, err := ts.store.Users.Get(ctx, userID)
	require.NoError(t, err)

	user.Role = domain.RoleAdmin
	require.NoError(t, ts.store.Users.Update(ctx, userID, user))

	return token, userID
}

// createTool creates a draft tool via the API.
func (ts *testServer) createTool(t *testing.T, token, name string) ToolResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/tools", map[string]any{
		"name":        name,
		"tagline":     "Does one thing well",
		"description": "A tiny AI tool used in handler tests.",
		"website_url": "https://example.com",
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "Create tool failed: %s", resp.Body.String())

	var envelope testEnvelope[ToolResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data
}

// publishTool walks a tool through submit, approval, and public visibility.
func (ts *testServer) publishTool(t *testing.T, ownerToken, adminToken, ref string) ToolResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/tools/"+ref+"/submit", "Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code, "Submit failed: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/tools/"+ref+"/approve", "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, "Approve failed: %s", resp.Body.String())

	resp = ts.api.Put("/api/v1/tools/"+ref, map[string]any{
		"visibility": "PUBLIC",
	}, "Authorization: Bearer "+ownerToken)
	require.Equal(t, http.StatusOK, resp.Code, "Publish failed: %s", resp.Body.String())

	var envelope testEnvelope[ToolResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data
}
