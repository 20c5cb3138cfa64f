package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

// CreateSecret creates a new secret in the app
func (s *Storage) CreateSecret(ctx context.Context, secret *models.Secret) error {
	query := `
		INSERT INTO secrets (id, app_id, name, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		secret.ID,
		secret.AppID,
		secret.Name,
		secret.Value,
		secret.CreatedAt,
		secret.UpdatedAt,
	)

	if err != nil {
		// (app_id, name) уникальны
		if isUniqueViolation(err) {
			return storage.ErrSecretAlreadyExists
		}
		return fmt.Errorf("failed to insert secret: %w", err)
	}

	return nil
}

// GetSecret retrieves secret by app and name
func (s *Storage) GetSecret(ctx context.Context, appID, name string) (*models.Secret, error) {
	query := `
		SELECT id, app_id, name, value, created_at, updated_at
		FROM secrets
		WHERE app_id = ? AND name = ?
	`

	secret, err := scanSecret(s.db.QueryRowContext(ctx, query, appID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to get secret: %w", err)
	}

	return secret, nil
}

// ListSecrets returns all secrets of the app ordered by name
func (s *Storage) ListSecrets(ctx context.Context, appID string) ([]*models.Secret, error) {
	query := `
		SELECT id, app_id, name, value, created_at, updated_at
		FROM secrets
		WHERE app_id = ?
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to query secrets: %w", err)
	}
	defer rows.Close()

	secrets := make([]*models.Secret, 0)
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secrets = append(secrets, secret)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating secrets: %w", err)
	}

	return secrets, nil
}

// UpdateSecret writes name and value of the secret in one statement
func (s *Storage) UpdateSecret(ctx context.Context, secret *models.Secret) error {
	query := `UPDATE secrets SET name = ?, value = ?, updated_at = ? WHERE id = ? AND app_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		secret.Name,
		secret.Value,
		secret.UpdatedAt,
		secret.ID,
		secret.AppID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrSecretAlreadyExists
		}
		return fmt.Errorf("failed to update secret: %w", err)
	}

	return checkAffected(result, storage.ErrSecretNotFound)
}

// DeleteSecret deletes secret by app and name
func (s *Storage) DeleteSecret(ctx context.Context, appID, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE app_id = ? AND name = ?`, appID, name)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	return checkAffected(result, storage.ErrSecretNotFound)
}

func scanSecret(row rowScanner) (*models.Secret, error) {
	secret := &models.Secret{}

	if err := row.Scan(
		&secret.ID,
		&secret.AppID,
		&secret.Name,
		&secret.Value,
		&secret.CreatedAt,
		&secret.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return secret, nil
}
