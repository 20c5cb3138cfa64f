package storage

import (
	"context"

	"github.com/iudanet/envdev/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// ListUsers returns all users ordered by creation time, with AppCount filled
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUserRole changes the role of a user
	// Returns ErrUserNotFound if user doesn't exist
	UpdateUserRole(ctx context.Context, userID string, role models.Role) error

	// DeleteUser deletes user by ID together with its apps and secrets
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID string) error
}
