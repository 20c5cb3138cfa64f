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

// AppService описывает операции над приложениями. *vault.Service реализует его.
type AppService interface {
	ListApps(ctx context.Context, p vault.Principal) ([]*models.App, error)
	GetApp(ctx context.Context, p vault.Principal, appID string) (*vault.AppDetails, error)
	CreateApp(ctx context.Context, p vault.Principal, name string, description *string) (*models.App, error)
	UpdateApp(ctx context.Context, p vault.Principal, appID string, upd vault.AppUpdate) (*models.App, error)
	DeleteApp(ctx context.Context, p vault.Principal, appID string) error
	RegenerateAPIKey(ctx context.Context, p vault.Principal, appID string) (*models.App, error)
}

// AppHandler обрабатывает запросы к приложениям
type AppHandler struct {
	responder
	svc AppService
}

// NewAppHandler создает новый handler для приложений
func NewAppHandler(logger *slog.Logger, svc AppService) *AppHandler {
	return &AppHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// List обрабатывает GET /api/apps
func (h *AppHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	apps, err := h.svc.ListApps(r.Context(), p)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIApps(apps, true), http.StatusOK)
}

// Create обрабатывает POST /api/apps
func (h *AppHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.CreateAppRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	app, err := h.svc.CreateApp(r.Context(), p, req.Name, req.Description)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIApp(app, true), http.StatusCreated)
}

// Get обрабатывает GET /api/apps/{appID}
func (h *AppHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	details, err := h.svc.GetApp(r.Context(), p, chi.URLParam(r, "appID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, api.AppDetails{
		App:         toAPIApp(details.App, true),
		SecretNames: details.SecretNames,
	}, http.StatusOK)
}

// Update обрабатывает PUT /api/apps/{appID}
func (h *AppHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.UpdateAppRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	app, err := h.svc.UpdateApp(r.Context(), p, chi.URLParam(r, "appID"), vault.AppUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIApp(app, true), http.StatusOK)
}

// Delete обрабатывает DELETE /api/apps/{appID}
func (h *AppHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteApp(r.Context(), p, chi.URLParam(r, "appID")); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegenerateKey обрабатывает POST /api/apps/{appID}/regenerate-key
func (h *AppHandler) RegenerateKey(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	app, err := h.svc.RegenerateAPIKey(r.Context(), p, chi.URLParam(r, "appID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPIApp(app, true), http.StatusOK)
}
