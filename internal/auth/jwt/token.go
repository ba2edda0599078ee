package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Kind separates access tokens from refresh tokens. It is carried in the
// audience claim so one kind is never accepted in place of the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the payload of every VoiceMitra token.
type Claims struct {
	UserID      uuid.UUID `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"name"`
	Provider    string    `json:"provider"`
	jwt.RegisteredClaims
}

// TokenConfig configures signing. Zero values fall back to a one hour
// access lifetime, a seven day refresh lifetime and a refresh secret
// derived from the access secret.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	issuer string
	keys   map[Kind]signingKey
	now    func() time.Time
}

func NewManager(cfg TokenConfig) *Manager {
	access := signingKey{secret: cfg.AccessSecret, ttl: cfg.AccessTTL}
	if access.ttl <= 0 {
		access.ttl = time.Hour
	}
	refresh := signingKey{secret: cfg.RefreshSecret, ttl: cfg.RefreshTTL}
	if refresh.ttl <= 0 {
		refresh.ttl = 7 * 24 * time.Hour
	}
	if len(refresh.secret) == 0 {
		refresh.secret = append([]byte("refresh:"), cfg.AccessSecret...)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "voicemitra"
	}

	return &Manager{
		issuer: issuer,
		keys:   map[Kind]signingKey{KindAccess: access, KindRefresh: refresh},
		now:    time.Now,
	}
}

func (m *Manager) AccessTTL() time.Duration { return m.keys[KindAccess].ttl }

// User is the subset of an account embedded in a token.
type User struct {
	ID          uuid.UUID
	Email       *string
	DisplayName string
	Provider    string
}

func (m *Manager) GenerateAccessToken(user User) (string, error) {
	return m.Issue(KindAccess, user)
}

func (m *Manager) GenerateRefreshToken(user User) (string, error) {
	return m.Issue(KindRefresh, user)
}

// Issue signs a token of the given kind for user.
func (m *Manager) Issue(kind Kind, user User) (string, error) {
	key, ok := m.keys[kind]
	if !ok {
		return "", ErrInvalidToken
	}
	issuedAt := m.now()

	claims := &Claims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Provider:    user.Provider,
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}
	claims.Issuer = m.issuer
	claims.Subject = user.ID.String()
	claims.Audience = jwt.ClaimStrings{string(kind)}
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.NotBefore = claims.IssuedAt
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(key.ttl))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
}

func (m *Manager) ValidateAccessToken(raw string) (*Claims, error) {
	return m.Verify(KindAccess, raw)
}

func (m *Manager) ValidateRefreshToken(raw string) (*Claims, error) {
	return m.Verify(KindRefresh, raw)
}

// Verify checks signature, issuer, audience and lifetime. Expired tokens
// map to ErrExpiredToken; every other failure is ErrInvalidToken.
func (m *Manager) Verify(kind Kind, raw string) (*Claims, error) {
	key, ok := m.keys[kind]
	if !ok {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(string(kind)),
		jwt.WithTimeFunc(m.now),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.UserID == uuid.Nil:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
