package auth

import (
	"time"

	"github.com/google/uuid"
)

// Auth providers recorded on the user row.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// User represents an authenticated account.
type User struct {
	ID          uuid.UUID `json:"user_id"`
	Email       *string   `json:"email"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"auth_provider"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// OAuthUserInfo contains user data from OAuth provider.
type OAuthUserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}
