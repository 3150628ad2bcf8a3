package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tooldexapp/tooldex-server/internal/domain"
	"github.com/tooldexapp/tooldex-server/internal/service"
)

// publishReviewableTool creates a listed tool owned by a fresh user.
func publishReviewableTool(t *testing.T, ts *testServer) (ownerToken string, tool ToolResponse) {
	t.Helper()

	ownerToken, _ = ts.registerUser(t, "owner@example.com", "Owner")
	adminToken, _ := ts.registerAdmin(t, "admin@example.com")
	created := ts.createTool(t, ownerToken, "Brief Bot")
	return ownerToken, ts.publishTool(t, ownerToken, adminToken, created.ID)
}

func TestCreateReview_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 4,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateReview_UpdatesAggregates(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)
	reviewerToken, _ := ts.registerUser(t, "fan@example.com", "Fan")

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating":  4,
		"title":   "Solid",
		"comment": "Does what it says.",
	}, "Authorization: Bearer "+reviewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var reviewEnvelope testEnvelope[domain.Review]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reviewEnvelope))
	assert.Equal(t, 4, reviewEnvelope.Data.Rating)

	resp = ts.api.Get("/api/v1/tools/" + tool.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var toolEnvelope testEnvelope[ToolResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toolEnvelope))
	assert.Equal(t, 4.0, toolEnvelope.Data.RatingAverage)
	assert.Equal(t, 1, toolEnvelope.Data.RatingCount)
}

func TestCreateReview_SelfReviewForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ownerToken, tool := publishReviewableTool(t, ts)

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 5,
	}, "Authorization: Bearer "+ownerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCreateReview_DuplicateConflicts(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)
	reviewerToken, _ := ts.registerUser(t, "fan@example.com", "Fan")

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 4,
	}, "Authorization: Bearer "+reviewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 5,
	}, "Authorization: Bearer "+reviewerToken)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)
	reviewerToken, _ := ts.registerUser(t, "fan@example.com", "Fan")

	for _, rating := range []int{0, 6} {
		resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
			"rating": rating,
		}, "Authorization: Bearer "+reviewerToken)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "rating %d", rating)
	}
}

func TestUpdateAndDeleteReview(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)
	reviewerToken, _ := ts.registerUser(t, "fan@example.com", "Fan")

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 2,
	}, "Authorization: Bearer "+reviewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Put("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating": 5,
	}, "Authorization: Bearer "+reviewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var reviewEnvelope testEnvelope[domain.Review]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reviewEnvelope))
	assert.Equal(t, 5, reviewEnvelope.Data.Rating)

	resp = ts.api.Delete("/api/v1/tools/"+tool.ID+"/reviews", "Authorization: Bearer "+reviewerToken)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	// Aggregates return to zero once the only review is gone.
	resp = ts.api.Get("/api/v1/tools/" + tool.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var toolEnvelope testEnvelope[ToolResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toolEnvelope))
	assert.Equal(t, 0.0, toolEnvelope.Data.RatingAverage)
	assert.Equal(t, 0, toolEnvelope.Data.RatingCount)
}

func TestListReviews_WithAuthors(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	_, tool := publishReviewableTool(t, ts)
	reviewerToken, _ := ts.registerUser(t, "fan@example.com", "Fan")

	resp := ts.api.Post("/api/v1/tools/"+tool.ID+"/reviews", map[string]any{
		"rating":  4,
		"comment": "Good stuff.",
	}, "Authorization: Bearer "+reviewerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tools/" + tool.ID + "/reviews")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[[]service.ReviewWithAuthor]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Fan", envelope.Data[0].AuthorName)
	assert.Equal(t, 4, envelope.Data[0].Rating)
}
