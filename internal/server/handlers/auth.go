package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

// AuthService описывает операции аутентификации. *vault.Service реализует его.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*vault.AuthResult, error)
	Login(ctx context.Context, email, password string) (*vault.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*vault.AuthResult, error)
	Me(ctx context.Context, p vault.Principal) (*models.User, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	svc AuthService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, svc AuthService) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя, сразу выдает пару токенов
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, tokenResponse(res), http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, tokenResponse(res), http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh
// Обменивает refresh token на новый access token, refresh token не ротируется
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		h.sendError(w, "refresh token is required", http.StatusUnauthorized)
		return
	}

	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, tokenResponse(res), http.StatusOK)
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Me(r.Context(), p)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIUser(user), http.StatusOK)
}

func tokenResponse(res *vault.AuthResult) api.TokenResponse {
	user := toAPIUser(res.User)
	return api.TokenResponse{
		User:         &user,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    int64(time.Until(res.ExpiresAt).Round(time.Second) / time.Second),
	}
}
