package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
	"github.com/iudanet/envdev/internal/validation"
)

// SecretValue is a decrypted secret. It lives only while a response is built.
type SecretValue struct {
	Name  string
	Value string
}

// SecretUpdate holds the fields to change; nil leaves a field as is.
type SecretUpdate struct {
	Name  *string
	Value *string
}

// ListSecrets returns the secrets of an app without their values.
func (s *Service) ListSecrets(ctx context.Context, p Principal, appID string) ([]*models.Secret, error) {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	secrets, err := s.store.ListSecrets(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	for _, secret := range secrets {
		secret.Value = ""
	}

	return secrets, nil
}

// CreateSecret encrypts the value and stores it under a name unique in the app.
func (s *Service) CreateSecret(ctx context.Context, p Principal, appID, name, value string) (*models.Secret, error) {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateSecretName(name); err != nil {
		return nil, validationError(err)
	}
	if err := validation.ValidateSecretValue(value); err != nil {
		return nil, validationError(err)
	}

	blob, err := s.sealer.Seal([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	now := s.now()
	secret := &models.Secret{
		ID:        uuid.New().String(),
		AppID:     app.ID,
		Name:      name,
		Value:     blob,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateSecret(ctx, secret); err != nil {
		if errors.Is(err, storage.ErrSecretAlreadyExists) {
			return nil, fmt.Errorf("%w: secret %q already exists in app", ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to create secret: %w", err)
	}

	s.logger.InfoContext(ctx, "secret created",
		slog.String("app_id", app.ID),
		slog.String("secret", name))

	secret.Value = ""
	return secret, nil
}

// ReadSecret returns the decrypted value of one secret.
func (s *Service) ReadSecret(ctx context.Context, p Principal, appID, name string) (*SecretValue, error) {
	_, secret, err := s.authorizeSecretAccess(ctx, p, appID, name)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.open(ctx, secret)
	if err != nil {
		return nil, err
	}

	return &SecretValue{Name: secret.Name, Value: plaintext}, nil
}

// ExportSecrets decrypts every secret of the app. One undecryptable value
// fails the whole export.
func (s *Service) ExportSecrets(ctx context.Context, p Principal, appID string) ([]SecretValue, error) {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return nil, err
	}

	secrets, err := s.store.ListSecrets(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	values := make([]SecretValue, 0, len(secrets))
	for _, secret := range secrets {
		plaintext, err := s.open(ctx, secret)
		if err != nil {
			return nil, err
		}
		values = append(values, SecretValue{Name: secret.Name, Value: plaintext})
	}

	return values, nil
}

// UpdateSecret renames a secret and/or replaces its value. Without a new
// value the stored ciphertext is kept as is.
func (s *Service) UpdateSecret(ctx context.Context, p Principal, appID, name string, upd SecretUpdate) (*models.Secret, error) {
	if upd.Name == nil && upd.Value == nil {
		return nil, validationError(errors.New("nothing to update"))
	}

	_, secret, err := s.authorizeSecretAccess(ctx, p, appID, name)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if err := validation.ValidateSecretName(*upd.Name); err != nil {
			return nil, validationError(err)
		}
		secret.Name = *upd.Name
	}

	if upd.Value != nil {
		if err := validation.ValidateSecretValue(*upd.Value); err != nil {
			return nil, validationError(err)
		}
		blob, err := s.sealer.Seal([]byte(*upd.Value))
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt secret: %w", err)
		}
		secret.Value = blob
	}
	secret.UpdatedAt = s.now()

	if err := s.store.UpdateSecret(ctx, secret); err != nil {
		switch {
		case errors.Is(err, storage.ErrSecretAlreadyExists):
			return nil, fmt.Errorf("%w: secret %q already exists in app", ErrConflict, secret.Name)
		case errors.Is(err, storage.ErrSecretNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update secret: %w", err)
	}

	secret.Value = ""
	return secret, nil
}

// DeleteSecret removes one secret from the app.
func (s *Service) DeleteSecret(ctx context.Context, p Principal, appID, name string) error {
	app, err := s.authorizeAppAccess(ctx, p, appID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSecret(ctx, app.ID, name); err != nil {
		if errors.Is(err, storage.ErrSecretNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	return nil
}

func (s *Service) open(ctx context.Context, secret *models.Secret) (string, error) {
	plaintext, err := s.sealer.Open(secret.Value)
	if err != nil {
		// значение не логируем, только координаты
		s.logger.ErrorContext(ctx, "failed to decrypt secret",
			slog.String("app_id", secret.AppID),
			slog.String("secret", secret.Name))
		return "", fmt.Errorf("%w: secret %q", ErrDecryption, secret.Name)
	}
	return string(plaintext), nil
}
