package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		wantError error
		user      *models.User
		name      string
	}{
		{
			name:      "create member",
			user:      newTestUser("alice@example.com", models.RoleMember),
			wantError: nil,
		},
		{
			name:      "create admin",
			user:      newTestUser("root@example.com", models.RoleAdmin),
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateUser(ctx, tt.user)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			// Verify user was created
			retrieved, err := s.GetUserByID(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, retrieved.ID)
			assert.Equal(t, tt.user.Email, retrieved.Email)
			assert.Equal(t, tt.user.PasswordHash, retrieved.PasswordHash)
			assert.Equal(t, tt.user.Role, retrieved.Role)
			assert.WithinDuration(t, tt.user.CreatedAt, retrieved.CreatedAt, time.Second)
		})
	}
}

func TestUserStorage_CreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.CreateUser(ctx, newTestUser("duplicate@example.com", models.RoleMember))
	require.NoError(t, err)

	// Тот же email, другой ID
	err = s.CreateUser(ctx, newTestUser("duplicate@example.com", models.RoleMember))
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	// Повтор ID - это не конфликт email, а обычная ошибка вставки
	user := newTestUser("other@example.com", models.RoleMember)
	require.NoError(t, s.CreateUser(ctx, user))
	clone := *user
	clone.Email = "third@example.com"
	err = s.CreateUser(ctx, &clone)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newTestUser("findme@example.com", models.RoleMember)
	require.NoError(t, s.CreateUser(ctx, user))

	tests := []struct {
		wantError error
		name      string
		email     string
	}{
		{
			name:      "get existing user",
			email:     "findme@example.com",
			wantError: nil,
		},
		{
			name:      "get non-existent user",
			email:     "notfound@example.com",
			wantError: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retrieved, err := s.GetUserByEmail(ctx, tt.email)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, retrieved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, retrieved.ID)
			assert.Equal(t, user.Email, retrieved.Email)
		})
	}
}

func TestUserStorage_GetUserByID_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	retrieved, err := s.GetUserByID(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Nil(t, retrieved)
}

func TestUserStorage_ListUsers(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	base := time.Now().UTC().Add(-time.Hour)
	alice := newTestUser("alice@example.com", models.RoleMember)
	alice.CreatedAt = base
	bob := newTestUser("bob@example.com", models.RoleAdmin)
	bob.CreatedAt = base.Add(time.Minute)
	require.NoError(t, s.CreateUser(ctx, alice))
	require.NoError(t, s.CreateUser(ctx, bob))

	createTestApp(t, ctx, s, alice.ID, "svc1")
	createTestApp(t, ctx, s, alice.ID, "svc2")

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, alice.ID, users[0].ID)
	assert.Equal(t, 2, users[0].AppCount)
	assert.Equal(t, bob.ID, users[1].ID)
	assert.Equal(t, 0, users[1].AppCount)
	assert.Equal(t, models.RoleAdmin, users[1].Role)
}

func TestUserStorage_UpdateUserRole(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newTestUser("bob@example.com", models.RoleMember)
	require.NoError(t, s.CreateUser(ctx, user))

	err := s.UpdateUserRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)

	retrieved, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, retrieved.Role)

	err = s.UpdateUserRole(ctx, "nonexistent-id", models.RoleAdmin)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	// CHECK constraint не пускает неизвестные роли
	err = s.UpdateUserRole(ctx, user.ID, models.Role("superuser"))
	assert.Error(t, err)
}

func TestUserStorage_DeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newTestUser("alice@example.com", models.RoleMember)
	require.NoError(t, s.CreateUser(ctx, user))
	app := createTestApp(t, ctx, s, user.ID, "svc1")
	createTestSecret(t, ctx, s, app.ID, "DB_PASS")

	err := s.DeleteUser(ctx, user.ID)
	require.NoError(t, err)

	_, err = s.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetAppByID(ctx, app.ID)
	assert.ErrorIs(t, err, storage.ErrAppNotFound)

	_, err = s.GetSecret(ctx, app.ID, "DB_PASS")
	assert.ErrorIs(t, err, storage.ErrSecretNotFound)

	err = s.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func newTestUser(email string, role models.Role) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
