package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "maker@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Maker",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "maker@example.com", envelope.Data.User.Email)
	assert.Equal(t, "user", envelope.Data.User.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "maker@example.com", "Maker")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "maker@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Copycat",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "CONFLICT", envelope.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing email",
			body: map[string]any{"password": "SecurePassword123!", "display_name": "Maker"},
		},
		{
			name: "invalid email",
			body: map[string]any{"email": "nope", "password": "SecurePassword123!", "display_name": "Maker"},
		},
		{
			name: "short password",
			body: map[string]any{"email": "maker@example.com", "password": "short", "display_name": "Maker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)
			assert.GreaterOrEqual(t, resp.Code, 400)
			assert.Less(t, resp.Code, 500)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "maker@example.com", "Maker")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "maker@example.com",
		"password": "WrongPassword123!",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ts.registerUser(t, "maker@example.com", "Maker")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "maker@example.com",
		"password": "SecurePassword123!",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
}

func TestRefresh_Rotation(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "maker@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Maker",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var refreshed testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.Data.RefreshToken)
	assert.NotEqual(t, registered.Data.RefreshToken, refreshed.Data.RefreshToken)

	// The old refresh token is dead after rotation.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.registerUser(t, "maker@example.com", "Maker")

	// Without a token the endpoint refuses.
	resp := ts.api.Get("/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/auth/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "maker@example.com", envelope.Data.Email)
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "maker@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Maker",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"session_id": registered.Data.SessionID,
	}, "Authorization: Bearer "+registered.Data.AccessToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	// The refresh token dies with the session.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": registered.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
