package storage

import (
	"context"

	"github.com/iudanet/envdev/internal/models"
)

// AppStorage defines interface for app persistence
type AppStorage interface {
	// CreateApp creates a new app
	// Returns ErrAPIKeyAlreadyExists if the api key collides
	CreateApp(ctx context.Context, app *models.App) error

	// GetAppByID retrieves app by ID with SecretCount filled
	// Returns ErrAppNotFound if app doesn't exist
	GetAppByID(ctx context.Context, appID string) (*models.App, error)

	// GetAppByAPIKey retrieves app by its api key
	// Returns ErrAppNotFound if no app has this key
	GetAppByAPIKey(ctx context.Context, apiKey string) (*models.App, error)

	// ListAppsByUser returns apps of the user, newest first
	ListAppsByUser(ctx context.Context, userID string) ([]*models.App, error)

	// UpdateApp updates name and description of the app
	// Returns ErrAppNotFound if app doesn't exist
	UpdateApp(ctx context.Context, app *models.App) error

	// UpdateAPIKey replaces the api key in a single statement
	// Returns ErrAppNotFound or ErrAPIKeyAlreadyExists
	UpdateAPIKey(ctx context.Context, appID, apiKey string) error

	// DeleteApp deletes app and its secrets
	// Returns ErrAppNotFound if app doesn't exist
	DeleteApp(ctx context.Context, appID string) error
}
