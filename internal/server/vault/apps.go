package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
	"github.com/iudanet/envdev/internal/server/token"
	"github.com/iudanet/envdev/internal/validation"
)

// apiKeyAttempts ограничивает повторы при коллизии api key
const apiKeyAttempts = 3

// AppDetails is an app together with the names of its secrets.
type AppDetails struct {
	App         *models.App
	SecretNames []string
}

// AppUpdate holds the fields to change; nil leaves a field as is.
// An empty Description clears it.
type AppUpdate struct {
	Name        *string
	Description *string
}

// ListApps returns the caller's apps with their secret counts.
func (s *Service) ListApps(ctx context.Context, p Principal) ([]*models.App, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}

	apps, err := s.store.ListAppsByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	return apps, nil
}

// GetApp returns an app owned by the caller together with its secret names.
func (s *Service) GetApp(ctx context.Context, p Principal, appID string) (*AppDetails, error) {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	secrets, err := s.store.ListSecrets(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	names := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		names = append(names, secret.Name)
	}

	return &AppDetails{App: app, SecretNames: names}, nil
}

// CreateApp creates an app owned by the caller and assigns it a fresh API key.
func (s *Service) CreateApp(ctx context.Context, p Principal, name string, description *string) (*models.App, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if err := validation.ValidateAppName(name); err != nil {
		return nil, validationError(err)
	}
	description, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &models.App{
		ID:          uuid.New().String(),
		UserID:      p.UserID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		app.APIKey, err = token.GenerateAPIKey()
		if err != nil {
			return nil, err
		}

		err = s.store.CreateApp(ctx, app)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrAPIKeyAlreadyExists) || attempt == apiKeyAttempts {
			return nil, fmt.Errorf("failed to create app: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "app created",
		slog.String("user_id", p.UserID),
		slog.String("app_id", app.ID))

	return app, nil
}

// UpdateApp renames an app or changes its description.
func (s *Service) UpdateApp(ctx context.Context, p Principal, appID string, upd AppUpdate) (*models.App, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}
	if upd.Name == nil && upd.Description == nil {
		return nil, validationError(errors.New("nothing to update"))
	}

	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := validation.ValidateAppName(name); err != nil {
			return nil, validationError(err)
		}
		app.Name = name
	}
	if upd.Description != nil {
		if app.Description, err = normalizeDescription(upd.Description); err != nil {
			return nil, err
		}
	}
	app.UpdatedAt = s.now()

	if err := s.store.UpdateApp(ctx, app); err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update app: %w", err)
	}

	return app, nil
}

// DeleteApp deletes an app and all of its secrets.
func (s *Service) DeleteApp(ctx context.Context, p Principal, appID string) error {
	if err := requireSession(p); err != nil {
		return err
	}

	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteApp(ctx, app.ID); err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete app: %w", err)
	}

	s.logger.InfoContext(ctx, "app deleted",
		slog.String("user_id", p.UserID),
		slog.String("app_id", app.ID))

	return nil
}

// RegenerateAPIKey replaces the app's API key; the old key stops working
// immediately.
func (s *Service) RegenerateAPIKey(ctx context.Context, p Principal, appID string) (*models.App, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}

	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		key, err := token.GenerateAPIKey()
		if err != nil {
			return nil, err
		}

		err = s.store.UpdateAPIKey(ctx, app.ID, key)
		if err == nil {
			app.APIKey = key
			break
		}
		if errors.Is(err, storage.ErrAppNotFound) {
			return nil, ErrNotFound
		}
		if !errors.Is(err, storage.ErrAPIKeyAlreadyExists) || attempt == apiKeyAttempts {
			return nil, fmt.Errorf("failed to update api key: %w", err)
		}
	}
	app.UpdatedAt = s.now()

	s.logger.InfoContext(ctx, "api key regenerated",
		slog.String("user_id", p.UserID),
		slog.String("app_id", app.ID))

	return app, nil
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}

	d := strings.TrimSpace(*description)
	if err := validation.ValidateDescription(d); err != nil {
		return nil, validationError(err)
	}
	if d == "" {
		return nil, nil
	}

	return &d, nil
}
