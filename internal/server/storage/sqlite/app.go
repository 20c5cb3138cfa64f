package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

const appColumns = `
	a.id, a.user_id, a.name, a.description, a.api_key, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM secrets s WHERE s.app_id = a.id) AS secret_count
`

// CreateApp creates a new app
func (s *Storage) CreateApp(ctx context.Context, app *models.App) error {
	query := `
		INSERT INTO apps (id, user_id, name, description, api_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.Name,
		nullString(app.Description),
		app.APIKey,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAPIKeyAlreadyExists
		}
		return fmt.Errorf("failed to insert app: %w", err)
	}

	return nil
}

// GetAppByID retrieves app by ID
func (s *Storage) GetAppByID(ctx context.Context, appID string) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps a WHERE a.id = ?`

	return s.getApp(ctx, query, appID)
}

// GetAppByAPIKey retrieves app by its api key
func (s *Storage) GetAppByAPIKey(ctx context.Context, apiKey string) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps a WHERE a.api_key = ?`

	return s.getApp(ctx, query, apiKey)
}

func (s *Storage) getApp(ctx context.Context, query string, arg string) (*models.App, error) {
	app, err := scanApp(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return app, nil
}

// ListAppsByUser returns apps owned by the user, newest first
func (s *Storage) ListAppsByUser(ctx context.Context, userID string) ([]*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps a WHERE a.user_id = ? ORDER BY a.created_at DESC, a.name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.App, 0)
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	return apps, nil
}

// UpdateApp updates name and description of the app
func (s *Storage) UpdateApp(ctx context.Context, app *models.App) error {
	query := `UPDATE apps SET name = ?, description = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		app.Name,
		nullString(app.Description),
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update app: %w", err)
	}

	return checkAffected(result, storage.ErrAppNotFound)
}

// UpdateAPIKey replaces the api key; the old key stops matching immediately
func (s *Storage) UpdateAPIKey(ctx context.Context, appID, apiKey string) error {
	query := `UPDATE apps SET api_key = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, apiKey, nowUTC(), appID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAPIKeyAlreadyExists
		}
		return fmt.Errorf("failed to update api key: %w", err)
	}

	return checkAffected(result, storage.ErrAppNotFound)
}

// DeleteApp deletes app by ID, secrets are removed by ON DELETE CASCADE
func (s *Storage) DeleteApp(ctx context.Context, appID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM apps WHERE id = ?`, appID)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}

	return checkAffected(result, storage.ErrAppNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (*models.App, error) {
	app := &models.App{}
	var description sql.NullString

	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Name,
		&description,
		&app.APIKey,
		&app.CreatedAt,
		&app.UpdatedAt,
		&app.SecretCount,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		app.Description = &description.String
	}

	return app, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
