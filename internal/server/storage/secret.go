package storage

import (
	"context"

	"github.com/iudanet/envdev/internal/models"
)

// SecretStorage defines interface for secret persistence.
// Values are stored exactly as given (sealed blobs).
type SecretStorage interface {
	// CreateSecret creates a new secret in the app
	// Returns ErrSecretAlreadyExists if the name is taken within the app
	CreateSecret(ctx context.Context, secret *models.Secret) error

	// GetSecret retrieves secret by app and name
	// Returns ErrSecretNotFound if secret doesn't exist
	GetSecret(ctx context.Context, appID, name string) (*models.Secret, error)

	// ListSecrets returns all secrets of the app ordered by name
	ListSecrets(ctx context.Context, appID string) ([]*models.Secret, error)

	// UpdateSecret writes name and value of the secret identified by ID
	// Returns ErrSecretNotFound or ErrSecretAlreadyExists on rename collision
	UpdateSecret(ctx context.Context, secret *models.Secret) error

	// DeleteSecret deletes secret by app and name
	// Returns ErrSecretNotFound if secret doesn't exist
	DeleteSecret(ctx context.Context, appID, name string) error
}

// Storage объединяет все хранилища сервера
type Storage interface {
	UserStorage
	AppStorage
	SecretStorage

	// Ping checks that the storage is reachable
	Ping(ctx context.Context) error
}
