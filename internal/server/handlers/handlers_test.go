package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/envdev/internal/crypto"
	"github.com/iudanet/envdev/internal/server/middleware"
	"github.com/iudanet/envdev/internal/server/storage/sqlite"
	"github.com/iudanet/envdev/internal/server/token"
	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

const testAdminEmail = "admin@example.com"

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// testServer собирает handlers поверх настоящего vault и in-memory SQLite
type testServer struct {
	store  *sqlite.Storage
	router chi.Router
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sealer, err := crypto.NewSealer(bytes.Repeat([]byte{0x07}, crypto.KeySize))
	require.NoError(t, err)

	tokens, err := token.NewService(token.Config{Secret: []byte("handlers-test-secret")})
	require.NoError(t, err)

	logger := setupTestLogger()
	svc := vault.New(store, sealer, tokens, logger, vault.Options{
		AdminEmails: []string{testAdminEmail},
		BcryptCost:  bcrypt.MinCost,
	})

	auth := NewAuthHandler(logger, svc)
	apps := NewAppHandler(logger, svc)
	secrets := NewSecretHandler(logger, svc)
	users := NewUserHandler(logger, svc)

	r := chi.NewRouter()
	r.Get("/health", NewHealthHandler(logger, store, "test").Health)
	r.Post("/api/auth/register", auth.Register)
	r.Post("/api/auth/login", auth.Login)
	r.Post("/api/auth/refresh", auth.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(logger, svc))

		r.Get("/api/auth/me", auth.Me)
		r.Get("/api/apps", apps.List)
		r.Post("/api/apps", apps.Create)
		r.Get("/api/apps/{appID}", apps.Get)
		r.Put("/api/apps/{appID}", apps.Update)
		r.Delete("/api/apps/{appID}", apps.Delete)
		r.Post("/api/apps/{appID}/regenerate-key", apps.RegenerateKey)

		r.Get("/api/apps/{appID}/secrets", secrets.List)
		r.Post("/api/apps/{appID}/secrets", secrets.Create)
		r.Get("/api/apps/{appID}/secrets/export", secrets.Export)
		r.Get("/api/apps/{appID}/secrets/{name}", secrets.Get)
		r.Put("/api/apps/{appID}/secrets/{name}", secrets.Update)
		r.Delete("/api/apps/{appID}/secrets/{name}", secrets.Delete)

		r.Get("/api/users", users.List)
		r.Get("/api/users/{userID}", users.Get)
		r.Put("/api/users/{userID}/role", users.SetRole)
		r.Delete("/api/users/{userID}", users.Delete)
	})

	return &testServer{store: store, router: r}
}

// do выполняет запрос; body сериализуется в JSON, строка отправляется как есть
func (s *testServer) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register регистрирует пользователя и возвращает ответ с токенами
func (s *testServer) register(t *testing.T, email string) api.TokenResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.TokenResponse
	decodeBody(t, w, &resp)
	return resp
}

// createApp создает приложение и возвращает его вместе с API key
func (s *testServer) createApp(t *testing.T, accessToken, name string) api.App {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/apps", accessToken, api.CreateAppRequest{Name: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var app api.App
	decodeBody(t, w, &app)
	return app
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp api.ErrorResponse
	decodeBody(t, w, &resp)
	return resp.Message
}
