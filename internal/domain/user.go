package domain

import (
	"strings"
	"time"
)

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants catalog moderation access (approve/reject/suspend tools).
	RoleAdmin Role = "admin"
	// RoleUser grants standard access: submit tools, review, view own analytics.
	RoleUser Role = "user"
)

// User represents a registered account in the system.
type User struct {
	Record
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         Role      `json:"role"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// IsAdmin returns true if the user has moderation privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to the email local part.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// Session represents an active login with a refresh token.
// Each device gets its own session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
