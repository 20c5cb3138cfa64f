package vault

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/envdev/internal/server/token"
)

func strPtr(s string) *string {
	return &s
}

func TestService_CreateApp(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")

	tests := []struct {
		wantErr     error
		description *string
		name        string
		appName     string
	}{
		{name: "name only", appName: "svc1"},
		{name: "with description", appName: "svc2", description: strPtr("billing")},
		{name: "empty name", appName: "   ", wantErr: ErrValidation},
		{name: "long name", appName: strings.Repeat("a", 101), wantErr: ErrValidation},
		{name: "long description", appName: "svc3", description: strPtr(strings.Repeat("d", 501)), wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := env.svc.CreateApp(ctx, alice, tt.appName, tt.description)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.UserID, app.UserID)
			assert.Equal(t, tt.appName, app.Name)
			assert.True(t, token.IsAPIKey(app.APIKey))
			assert.Equal(t, tt.description, app.Description)
		})
	}

	apps, err := env.svc.ListApps(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, apps, 2)
}

func TestService_ListApps_OnlyOwn(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	_, err := env.svc.CreateApp(ctx, alice, "svc1", nil)
	require.NoError(t, err)

	apps, err := env.svc.ListApps(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestService_GetApp(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	app, err := env.svc.CreateApp(ctx, alice, "svc1", nil)
	require.NoError(t, err)
	_, err = env.svc.CreateSecret(ctx, alice, app.ID, "B", "2")
	require.NoError(t, err)
	_, err = env.svc.CreateSecret(ctx, alice, app.ID, "A", "1")
	require.NoError(t, err)

	details, err := env.svc.GetApp(ctx, alice, app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, details.SecretNames)
	assert.Equal(t, 2, details.App.SecretCount)

	_, foreign := env.svc.GetApp(ctx, bob, app.ID)
	_, missing := env.svc.GetApp(ctx, bob, "no-such-app")
	assert.Equal(t, ErrNotFound, foreign)
	assert.Equal(t, ErrNotFound, missing)
}

func TestService_UpdateApp(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	app, err := env.svc.CreateApp(ctx, alice, "svc1", strPtr("old"))
	require.NoError(t, err)

	updated, err := env.svc.UpdateApp(ctx, alice, app.ID, AppUpdate{Name: strPtr("svc1-renamed")})
	require.NoError(t, err)
	assert.Equal(t, "svc1-renamed", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "old", *updated.Description)
	assert.Equal(t, app.APIKey, updated.APIKey)

	// пустое описание очищает поле
	updated, err = env.svc.UpdateApp(ctx, alice, app.ID, AppUpdate{Description: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	_, err = env.svc.UpdateApp(ctx, alice, app.ID, AppUpdate{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.UpdateApp(ctx, alice, app.ID, AppUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.UpdateApp(ctx, bob, app.ID, AppUpdate{Name: strPtr("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteApp(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	app, err := env.svc.CreateApp(ctx, alice, "svc1", nil)
	require.NoError(t, err)
	_, err = env.svc.CreateSecret(ctx, alice, app.ID, "DB_PASS", "p@ss")
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DeleteApp(ctx, bob, app.ID), ErrNotFound)

	require.NoError(t, env.svc.DeleteApp(ctx, alice, app.ID))
	assert.ErrorIs(t, env.svc.DeleteApp(ctx, alice, app.ID), ErrNotFound)

	_, err = env.svc.ReadSecret(ctx, alice, app.ID, "DB_PASS")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.AuthenticateAPIKey(ctx, app.APIKey)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RegenerateAPIKey_Foreign(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	app, err := env.svc.CreateApp(ctx, alice, "svc1", nil)
	require.NoError(t, err)

	_, err = env.svc.RegenerateAPIKey(ctx, bob, app.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// ключ не изменился
	p, err := env.svc.AuthenticateAPIKey(ctx, app.APIKey)
	require.NoError(t, err)
	assert.Equal(t, app.ID, p.AppID)
}

func TestService_AccountOperationsRequireSession(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, Options{})
	alice := env.register(t, "alice@example.com")

	app, err := env.svc.CreateApp(ctx, alice, "svc1", nil)
	require.NoError(t, err)
	machine, err := env.svc.AuthenticateAPIKey(ctx, app.APIKey)
	require.NoError(t, err)

	_, err = env.svc.ListApps(ctx, machine)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.svc.CreateApp(ctx, machine, "svc2", nil)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.svc.UpdateApp(ctx, machine, app.ID, AppUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.svc.RegenerateAPIKey(ctx, machine, app.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, env.svc.DeleteApp(ctx, machine, app.ID), ErrInvalidToken)

	// а чтение своего приложения разрешено
	_, err = env.svc.GetApp(ctx, machine, app.ID)
	assert.NoError(t, err)
}
