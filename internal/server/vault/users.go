package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

// UserDetails is a user together with the apps they own.
type UserDetails struct {
	User *models.User
	Apps []*models.App
}

// ListUsers returns all users with their app counts. Admin only.
func (s *Service) ListUsers(ctx context.Context, p Principal) ([]*models.User, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// GetUser returns a user and their apps. Admin only.
func (s *Service) GetUser(ctx context.Context, p Principal, userID string) (*UserDetails, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	apps, err := s.store.ListAppsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	user.AppCount = len(apps)

	return &UserDetails{User: user, Apps: apps}, nil
}

// SetRole changes the role of a user. Admin only.
func (s *Service) SetRole(ctx context.Context, p Principal, userID string, role models.Role) (*models.User, error) {
	if err := authorizeAdmin(p); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validationError(fmt.Errorf("unknown role %q", role))
	}

	if err := s.store.UpdateUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.InfoContext(ctx, "user role changed",
		slog.String("admin_id", p.UserID),
		slog.String("user_id", userID),
		slog.String("role", string(role)))

	return s.getUser(ctx, userID)
}

// DeleteUser deletes a user with all their apps and secrets. Admin only,
// and never the caller's own account.
func (s *Service) DeleteUser(ctx context.Context, p Principal, userID string) error {
	if userID == p.UserID {
		return ErrSelfDeleteRejected
	}
	if err := authorizeAdmin(p); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("admin_id", p.UserID),
		slog.String("user_id", userID))

	return nil
}

func (s *Service) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
