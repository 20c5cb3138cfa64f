package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

// UserService описывает операции администратора. *vault.Service реализует его.
type UserService interface {
	ListUsers(ctx context.Context, p vault.Principal) ([]*models.User, error)
	GetUser(ctx context.Context, p vault.Principal, userID string) (*vault.UserDetails, error)
	SetRole(ctx context.Context, p vault.Principal, userID string, role models.Role) (*models.User, error)
	DeleteUser(ctx context.Context, p vault.Principal, userID string) error
}

// UserHandler обрабатывает запросы администрирования пользователей
type UserHandler struct {
	responder
	svc UserService
}

// NewUserHandler создает новый handler для пользователей
func NewUserHandler(logger *slog.Logger, svc UserService) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// List обрабатывает GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	users, err := h.svc.ListUsers(r.Context(), p)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]api.User, 0, len(users))
	for _, u := range users {
		resp = append(resp, toAPIUser(u))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/users/{userID}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	details, err := h.svc.GetUser(r.Context(), p, chi.URLParam(r, "userID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// API keys чужих приложений админу не показываем
	h.sendJSON(w, api.UserDetails{
		User: toAPIUser(details.User),
		Apps: toAPIApps(details.Apps, false),
	}, http.StatusOK)
}

// SetRole обрабатывает PUT /api/users/{userID}/role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.UpdateRoleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.SetRole(r.Context(), p, chi.URLParam(r, "userID"), models.Role(req.Role))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIUser(user), http.StatusOK)
}

// Delete обрабатывает DELETE /api/users/{userID}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(r.Context(), p, chi.URLParam(r, "userID")); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
