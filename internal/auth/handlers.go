package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc  *Service
	oauthSvc *OAuthService
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, oauthSvc *OAuthService, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc:  authSvc,
		oauthSvc: oauthSvc,
		logger:   logger.With().Str("component", "auth_http").Logger(),
	}
}

func tokenBody(user *User, tokens *TokenPair) map[string]interface{} {
	return map[string]interface{}{
		"user_id":       user.ID.String(),
		"display_name":  user.DisplayName,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	}
}

// Register handles POST /v1/auth/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Register(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmailTaken):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyExists, err.Error())
		return
	case errors.Is(err, ErrEmailRequired):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "email")
		return
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "password")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("registration failed")
		httperrors.RespondInternalError(w, "Registration failed")
		return
	}

	httperrors.RespondJSON(w, http.StatusCreated, tokenBody(user, tokens))
}

// Login handles POST /v1/auth/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	user, tokens, err := h.authSvc.Login(r.Context(), req)
	if errors.Is(err, ErrInvalidCredentials) {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("login failed")
		httperrors.RespondInternalError(w, "Login failed")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, tokenBody(user, tokens))
}

// RefreshToken handles POST /v1/auth/refresh
func (h *HTTPHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	tokens, err := h.authSvc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeRefreshFailed, "Invalid or expired refresh token")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

// OAuthStart handles GET /v1/oauth/{provider}/start
func (h *HTTPHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil || !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	authURL, state, err := h.oauthSvc.StartOAuthFlow(r.Context(), r.PathValue("provider"))
	if err != nil {
		if errors.Is(err, ErrUnsupportedProvider) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthStartFailed, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("oauth start failed")
		httperrors.RespondInternalError(w, "Failed to start sign-in")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"auth_url": authURL,
		"state":    state,
	})
}

// OAuthCallback handles GET /v1/oauth/{provider}/callback
func (h *HTTPHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauthSvc == nil || !h.oauthSvc.Configured() {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeOAuthNotConfigured, "OAuth is not configured")
		return
	}

	provider := r.PathValue("provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthMissingCode, "Authorization code required")
		return
	}

	info, err := h.oauthSvc.HandleOAuthCallback(r.Context(), provider, code, state)
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthInvalidState, "Invalid or missing state parameter")
			return
		}
		h.logger.Warn().Err(err).Str("provider", provider).Msg("oauth callback failed")
		httperrors.RespondBadRequest(w, httperrors.ErrCodeOAuthCallbackFailed, "Sign-in failed")
		return
	}

	user, tokens, err := h.authSvc.LoginWithOAuth(r.Context(), provider, info)
	if err != nil {
		h.logger.Error().Err(err).Msg("oauth user creation failed")
		httperrors.RespondInternalError(w, "Failed to create account")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, tokenBody(user, tokens))
}

// GetMe handles GET /v1/users/me (requires auth middleware)
func (h *HTTPHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.GetUser(r.Context(), UserID(r.Context()))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "User not found")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, user)
}

// ForgotPassword handles POST /v1/auth/forgot-password
func (h *HTTPHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Email == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Email required", "email")
		return
	}

	// The outcome is never revealed, to prevent account enumeration.
	if err := h.authSvc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Warn().Err(err).Msg("password reset request failed")
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "If an account exists with this email, a password reset link has been sent",
	})
}

// ResetPassword handles POST /v1/auth/reset-password
func (h *HTTPHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Token and new password required", "")
		return
	}

	err := h.authSvc.ResetPassword(r.Context(), req.Token, req.NewPassword)
	switch {
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong), errors.Is(err, ErrInvalidResetToken):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeResetFailed, err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("password reset failed")
		httperrors.RespondInternalError(w, "Password reset failed")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Password reset successfully",
	})
}
