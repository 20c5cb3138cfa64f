package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/envdev/internal/crypto"
	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
	"github.com/iudanet/envdev/internal/server/token"
	"github.com/iudanet/envdev/internal/validation"
)

// AuthResult is returned by Register, Login and Refresh.
// RefreshToken is empty after Refresh: refresh tokens are not rotated.
type AuthResult struct {
	ExpiresAt    time.Time // срок действия access token
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Register creates a member account (admin for configured emails) and
// signs the user in.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, validationError(err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, validationError(err)
	}

	hash, err := crypto.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleMember
	if _, ok := s.adminEmails[email]; ok {
		role = models.RoleAdmin
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)))

	return s.signIn(user)
}

// Login checks the password and signs the user in. Unknown email and wrong
// password produce the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// сравниваем с фиктивным хешем, чтобы время ответа не выдавало email
			_ = crypto.VerifyPassword(password, s.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return s.signIn(user)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.loadTokenUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &AuthResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// Me returns the account of the calling user.
func (s *Service) Me(ctx context.Context, p Principal) (*models.User, error) {
	return s.loadTokenUser(ctx, p.UserID)
}

// AuthenticateAccessToken verifies an access token and builds the principal.
// The role is read from storage, so role changes apply to live tokens.
func (s *Service) AuthenticateAccessToken(ctx context.Context, accessToken string) (Principal, error) {
	userID, err := s.tokens.Verify(accessToken, token.TypeAccess)
	if err != nil {
		return Principal{}, err
	}

	user, err := s.loadTokenUser(ctx, userID)
	if err != nil {
		return Principal{}, err
	}

	return Principal{UserID: user.ID, Role: user.Role}, nil
}

// AuthenticateAPIKey resolves an App API key into a principal bound to that
// app. Such a principal never has the admin role.
func (s *Service) AuthenticateAPIKey(ctx context.Context, apiKey string) (Principal, error) {
	if !token.IsAPIKey(apiKey) {
		return Principal{}, ErrInvalidToken
	}

	app, err := s.store.GetAppByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return Principal{}, fmt.Errorf("%w: unknown api key", ErrInvalidToken)
		}
		return Principal{}, fmt.Errorf("failed to get app: %w", err)
	}

	return Principal{UserID: app.UserID, Role: models.RoleMember, AppID: app.ID}, nil
}

func (s *Service) signIn(user *models.User) (*AuthResult, error) {
	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, _, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// loadTokenUser loads the subject of a verified token; a deleted user makes
// the token unusable.
func (s *Service) loadTokenUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := crypto.HashPassword("envdev-dummy-password", s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to prepare dummy password hash", slog.Any("error", err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
