package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Проверяем на duplicate email
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	return s.getUser(ctx, query, email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	return s.getUser(ctx, query, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var role string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = models.Role(role)

	return user, nil
}

// ListUsers returns all users with the number of apps each one owns
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
		       COUNT(a.id) AS app_count
		FROM users u
		LEFT JOIN apps a ON a.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at, u.email
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		var role string

		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&role,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.AppCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user.Role = models.Role(role)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUserRole changes the role of a user
func (s *Storage) UpdateUserRole(ctx context.Context, userID string, role models.Role) error {
	query := `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, string(role), nowUTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return checkAffected(result, storage.ErrUserNotFound)
}

// DeleteUser deletes user by ID; apps and secrets go with it via ON DELETE CASCADE
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return checkAffected(result, storage.ErrUserNotFound)
}
