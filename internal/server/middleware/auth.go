package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/envdev/internal/server/token"
	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

// Authenticator resolves bearer credentials into principals.
// *vault.Service implements it.
type Authenticator interface {
	AuthenticateAccessToken(ctx context.Context, accessToken string) (vault.Principal, error)
	AuthenticateAPIKey(ctx context.Context, apiKey string) (vault.Principal, error)
}

// AuthMiddleware создает middleware для проверки Bearer credentials.
// Значения с префиксом envdev_ считаются API key приложения, остальные - access token.
func AuthMiddleware(logger *slog.Logger, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "Missing Authorization header")
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				// сам заголовок не логируем: в нем может быть ключ
				logger.WarnContext(ctx, "Invalid Authorization header format")
				writeError(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			credential := parts[1]

			var (
				principal vault.Principal
				err       error
			)
			if token.IsAPIKey(credential) {
				principal, err = auth.AuthenticateAPIKey(ctx, credential)
			} else {
				principal, err = auth.AuthenticateAccessToken(ctx, credential)
			}

			if err != nil {
				if errors.Is(err, vault.ErrInvalidToken) {
					logger.WarnContext(ctx, "Invalid credentials", slog.Any("error", err))
					writeError(w, "invalid or expired token", http.StatusUnauthorized)
					return
				}
				logger.ErrorContext(ctx, "Authentication failed", slog.Any("error", err))
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			logger.DebugContext(ctx, "Principal authenticated",
				slog.String("user_id", principal.UserID),
				slog.Bool("api_key", principal.IsAPIKey()))

			recordPrincipal(ctx, principal)

			// Передаем запрос дальше с principal в контексте
			next.ServeHTTP(w, r.WithContext(vault.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireSession пропускает только запросы, аутентифицированные access token.
// Должен стоять после AuthMiddleware.
func RequireSession(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := vault.PrincipalFromContext(r.Context())
			if !ok || principal.IsAPIKey() {
				logger.WarnContext(r.Context(), "Session token required")
				writeError(w, "session token required", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError отправляет JSON ошибку в формате api.ErrorResponse
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
