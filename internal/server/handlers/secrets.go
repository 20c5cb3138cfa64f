package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

// SecretService описывает операции над секретами. *vault.Service реализует его.
type SecretService interface {
	ListSecrets(ctx context.Context, p vault.Principal, appID string) ([]*models.Secret, error)
	CreateSecret(ctx context.Context, p vault.Principal, appID, name, value string) (*models.Secret, error)
	ReadSecret(ctx context.Context, p vault.Principal, appID, name string) (*vault.SecretValue, error)
	ExportSecrets(ctx context.Context, p vault.Principal, appID string) ([]vault.SecretValue, error)
	UpdateSecret(ctx context.Context, p vault.Principal, appID, name string, upd vault.SecretUpdate) (*models.Secret, error)
	DeleteSecret(ctx context.Context, p vault.Principal, appID, name string) error
}

// SecretHandler обрабатывает запросы к секретам приложения.
// Доступен и по access token владельца, и по API key приложения.
type SecretHandler struct {
	responder
	svc SecretService
}

// NewSecretHandler создает новый handler для секретов
func NewSecretHandler(logger *slog.Logger, svc SecretService) *SecretHandler {
	return &SecretHandler{
		responder: responder{logger: logger},
		svc:       svc,
	}
}

// List обрабатывает GET /api/apps/{appID}/secrets
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	secrets, err := h.svc.ListSecrets(r.Context(), p, chi.URLParam(r, "appID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]api.Secret, 0, len(secrets))
	for _, s := range secrets {
		resp = append(resp, toAPISecret(s))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/apps/{appID}/secrets
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.CreateSecretRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	secret, err := h.svc.CreateSecret(r.Context(), p, chi.URLParam(r, "appID"), req.Name, req.Value)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPISecret(secret), http.StatusCreated)
}

// Get обрабатывает GET /api/apps/{appID}/secrets/{name}
func (h *SecretHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	name, ok := h.secretName(w, r)
	if !ok {
		return
	}

	value, err := h.svc.ReadSecret(r.Context(), p, chi.URLParam(r, "appID"), name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, api.SecretValue{Name: value.Name, Value: value.Value}, http.StatusOK)
}

// Export обрабатывает GET /api/apps/{appID}/secrets/export
func (h *SecretHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	values, err := h.svc.ExportSecrets(r.Context(), p, chi.URLParam(r, "appID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := api.ExportResponse{Secrets: make([]api.SecretValue, 0, len(values))}
	for _, v := range values {
		resp.Secrets = append(resp.Secrets, api.SecretValue{Name: v.Name, Value: v.Value})
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Update обрабатывает PUT /api/apps/{appID}/secrets/{name}
func (h *SecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	name, ok := h.secretName(w, r)
	if !ok {
		return
	}

	var req api.UpdateSecretRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	secret, err := h.svc.UpdateSecret(r.Context(), p, chi.URLParam(r, "appID"), name, vault.SecretUpdate{
		Name:  req.Name,
		Value: req.Value,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, toAPISecret(secret), http.StatusOK)
}

// Delete обрабатывает DELETE /api/apps/{appID}/secrets/{name}
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	name, ok := h.secretName(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteSecret(r.Context(), p, chi.URLParam(r, "appID"), name); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// secretName возвращает имя секрета из пути. chi матчит по RawPath, если он есть,
// и тогда сегмент приходит в escaped виде.
func (h *SecretHandler) secretName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			h.sendError(w, "invalid secret name", http.StatusBadRequest)
			return "", false
		}
		name = unescaped
	}
	if name == "" {
		h.sendError(w, "invalid secret name", http.StatusBadRequest)
		return "", false
	}
	return name, true
}
