package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

// Principal is the authenticated caller of a vault operation.
type Principal struct {
	UserID string
	Role   models.Role
	// AppID непустой только для вызова по API key приложения
	AppID string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// IsAPIKey reports whether the principal was authenticated by an App API key.
func (p Principal) IsAPIKey() bool {
	return p.AppID != ""
}

type principalKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// authorizeAppAccess loads the app if the principal may act on it.
// Missing app, foreign owner and an API key of another app are
// indistinguishable to the caller.
func (s *Service) authorizeAppAccess(ctx context.Context, p Principal, appID string) (*models.App, error) {
	if p.IsAPIKey() && p.AppID != appID {
		return nil, ErrNotFound
	}

	app, err := s.store.GetAppByID(ctx, appID)
	if err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load app: %w", err)
	}

	if app.UserID != p.UserID {
		return nil, ErrNotFound
	}

	return app, nil
}

// authorizeSecretAccess applies the app rule first, then looks the secret up
// inside that app only.
func (s *Service) authorizeSecretAccess(ctx context.Context, p Principal, appID, name string) (*models.App, *models.Secret, error) {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, nil, err
	}

	secret, err := s.store.GetSecret(ctx, app.ID, name)
	if err != nil {
		if errors.Is(err, storage.ErrSecretNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load secret: %w", err)
	}

	return app, secret, nil
}

func authorizeAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

// requireSession rejects API key principals on account-level operations.
func requireSession(p Principal) error {
	if p.IsAPIKey() {
		return fmt.Errorf("%w: session token required", ErrInvalidToken)
	}
	return nil
}
