// Package token issues and verifies signed session tokens and generates
// App API keys.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type distinguishes short-lived access tokens from long-lived refresh tokens.
type Type string

const (
	// TypeAccess authenticates ordinary API calls
	TypeAccess Type = "access"
	// TypeRefresh is only accepted by the refresh endpoint
	TypeRefresh Type = "refresh"
)

const (
	// DefaultAccessTTL время жизни access token
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL время жизни refresh token
	DefaultRefreshTTL = 7 * 24 * time.Hour
	// DefaultIssuer значение claim "iss"
	DefaultIssuer = "envdev"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expired, malformed, wrong algorithm or wrong type.
var ErrInvalidToken = errors.New("invalid token")

// Claims представляет JWT claims для нашего приложения
type Claims struct {
	UserID string `json:"user_id"`
	Type   Type   `json:"type"`
	jwt.RegisteredClaims
}

// Config содержит конфигурацию для JWT
type Config struct {
	Issuer     string
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service signs and verifies HS256 tokens.
type Service struct {
	now func() time.Time
	cfg Config
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a token service. Zero TTLs and an empty issuer fall back
// to the defaults; an empty secret is rejected.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}

	s := &Service{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// AccessTTL returns the configured lifetime of access tokens.
func (s *Service) AccessTTL() time.Duration {
	return s.cfg.AccessTTL
}

// IssueAccessToken создает новый access token для пользователя
func (s *Service) IssueAccessToken(userID string) (string, time.Time, error) {
	return s.issue(userID, TypeAccess, s.cfg.AccessTTL)
}

// IssueRefreshToken создает новый refresh token для пользователя
func (s *Service) IssueRefreshToken(userID string) (string, time.Time, error) {
	return s.issue(userID, TypeRefresh, s.cfg.RefreshTTL)
}

func (s *Service) issue(userID string, typ Type, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("user id cannot be empty")
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			// jti пригодится для deny-листа, если понадобится отзыв токенов
			ID: uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Verify checks signature, issuer, expiry and type of the token and returns
// the user id it was issued for. A refresh token is never accepted where an
// access token is expected, and vice versa.
func (s *Service) Verify(tokenString string, expected Type) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Type != expected {
		return "", fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, expected, claims.Type)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return claims.UserID, nil
}
