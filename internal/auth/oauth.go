package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateKeyPrefix     = "oauth_state:"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultStateExpiry = 10 * time.Minute
)

var (
	ErrOAuthNotConfigured  = errors.New("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID)")
	ErrUnsupportedProvider = errors.New("unsupported OAuth provider")
	ErrInvalidState        = errors.New("invalid or expired OAuth state")
)

// OAuthConfig holds Google client credentials.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateTTL     time.Duration
}

// OAuthService handles Google sign-in with full token exchange.
// State values are single-use and stored in the KeyStore.
type OAuthService struct {
	googleConfig *oauth2.Config
	states       KeyStore
	stateTTL     time.Duration
	userInfoURL  string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewOAuthService creates an OAuth service with provider credentials.
func NewOAuthService(cfg OAuthConfig, states KeyStore, logger zerolog.Logger) *OAuthService {
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = defaultStateExpiry
	}
	return &OAuthService{
		googleConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		states:      states,
		stateTTL:    cfg.StateTTL,
		userInfoURL: googleUserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.With().Str("component", "oauth").Logger(),
	}
}

// Configured reports whether Google credentials are present.
func (s *OAuthService) Configured() bool {
	return s.googleConfig.ClientID != "" && s.states != nil
}

// StartOAuthFlow stores a fresh state and returns the consent URL.
func (s *OAuthService) StartOAuthFlow(ctx context.Context, provider string) (authURL, state string, err error) {
	if provider != ProviderGoogle {
		return "", "", ErrUnsupportedProvider
	}
	if !s.Configured() {
		return "", "", ErrOAuthNotConfigured
	}

	state = uuid.NewString()
	if err := s.states.Put(ctx, stateKeyPrefix+state, provider, s.stateTTL); err != nil {
		return "", "", fmt.Errorf("store state: %w", err)
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// HandleOAuthCallback consumes the state and exchanges the code for user info.
func (s *OAuthService) HandleOAuthCallback(ctx context.Context, provider, code, state string) (*OAuthUserInfo, error) {
	if provider != ProviderGoogle {
		return nil, ErrUnsupportedProvider
	}
	if !s.Configured() {
		return nil, ErrOAuthNotConfigured
	}

	stored, err := s.states.Take(ctx, stateKeyPrefix+state)
	if err != nil || stored != provider {
		return nil, ErrInvalidState
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth token exchange failed")
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info API returned status %d", resp.StatusCode)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderID: googleUser.ID,
		Email:      googleUser.Email,
		Name:       googleUser.Name,
		AvatarURL:  googleUser.Picture,
	}, nil
}
