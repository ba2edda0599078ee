package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth/jwt"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
)

var (
	ErrEmailRequired      = errors.New("valid email required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrResetUnavailable   = errors.New("password reset is not available")
)

const resetKeyPrefix = "password_reset:"

// Service handles authentication and user management.
type Service struct {
	userRepo *repository.UserRepository
	tokenMgr *jwt.Manager
	keys     KeyStore
	mailer   ResetMailer
	resetTTL time.Duration
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig   jwt.TokenConfig
	Keys          KeyStore
	Mailer        ResetMailer
	ResetTokenTTL time.Duration
}

// NewService creates an authentication service.
func NewService(userRepo *repository.UserRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &Service{
		userRepo: userRepo,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		keys:     opts.Keys,
		mailer:   opts.Mailer,
		resetTTL: opts.ResetTokenTTL,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", ErrEmailRequired
	}
	return strings.ToLower(addr.Address), nil
}

// Register creates a new password account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}

	dbUser, err := s.userRepo.Create(ctx, queries.CreateUserParams{
		Email:        pgtype.Text{String: email, Valid: true},
		PasswordHash: pgtype.Text{String: passwordHash, Valid: true},
		DisplayName:  displayName,
		AuthProvider: ProviderPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	user := toUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	dbUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}
	if !dbUser.PasswordHash.Valid {
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(dbUser.PasswordHash.String, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := toUser(dbUser)
	if err := s.userRepo.UpdateLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record login")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &user, tokens, nil
}

// LoginWithOAuth signs in the account matching the provider email, creating it on first use.
func (s *Service) LoginWithOAuth(ctx context.Context, provider string, info *OAuthUserInfo) (*User, *TokenPair, error) {
	email, err := normalizeEmail(info.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("OAuth provider did not return email")
	}

	dbUser, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.userRepo.UpdateLogin(ctx, repository.UUID(dbUser.UserID)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record login")
		}
	case errors.Is(err, repository.ErrNotFound):
		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = email
		}
		dbUser, err = s.userRepo.Create(ctx, queries.CreateUserParams{
			Email:        pgtype.Text{String: email, Valid: true},
			DisplayName:  name,
			AuthProvider: provider,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create OAuth user: %w", err)
		}
		s.logger.Info().Str("user_id", repository.UUID(dbUser.UserID).String()).Str("provider", provider).Msg("OAuth user created")
	default:
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	user := toUser(dbUser)
	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &user, tokens, nil
}

// RefreshToken issues a new token pair from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	dbUser, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	return s.generateTokenPair(toUser(dbUser))
}

// GetUser loads the account behind an access token.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	dbUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := toUser(dbUser)
	return &user, nil
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// RequestPasswordReset stores a single-use reset token and mails it.
// Unknown emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, rawEmail string) error {
	if s.keys == nil || s.mailer == nil {
		return ErrResetUnavailable
	}
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	dbUser, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup email: %w", err)
	}
	if !dbUser.PasswordHash.Valid {
		// OAuth-only accounts have no password to reset.
		return nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)

	userID := repository.UUID(dbUser.UserID)
	if err := s.keys.Put(ctx, resetKeyPrefix+token, userID.String(), s.resetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, email, token); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.keys == nil {
		return ErrResetUnavailable
	}
	if err := CheckPassword(newPassword); err != nil {
		return err
	}

	raw, err := s.keys.Take(ctx, resetKeyPrefix+token)
	if errors.Is(err, ErrKeyNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("get reset token: %w", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return ErrInvalidResetToken
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("password reset completed")
	return nil
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	jwtUser := jwt.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Provider:    user.Provider,
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(jwtUser)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenMgr.GenerateRefreshToken(jwtUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func toUser(u queries.User) User {
	user := User{
		ID:          repository.UUID(u.UserID),
		DisplayName: u.DisplayName,
		Provider:    u.AuthProvider,
		CreatedAt:   u.CreatedAt.Time,
	}
	if u.Email.Valid {
		email := u.Email.String
		user.Email = &email
	}
	return user
}
