package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/envdev/internal/server/vault"
	"github.com/iudanet/envdev/pkg/api"
)

// maxBodySize ограничивает размер JSON тела запроса
const maxBodySize = 1 << 20

// responder содержит общие для всех handlers методы ответа
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// principal достает вызывающего из контекста, положенного AuthMiddleware
func (h responder) principal(w http.ResponseWriter, r *http.Request) (vault.Principal, bool) {
	p, ok := vault.PrincipalFromContext(r.Context())
	if !ok {
		h.sendError(w, "missing token", http.StatusUnauthorized)
		return vault.Principal{}, false
	}
	return p, true
}

// handleError переводит ошибки vault в HTTP статусы.
// Сообщения стабильные, внутренние детали наружу не уходят.
func (h responder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, vault.ErrValidation):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, vault.ErrSelfDeleteRejected):
		h.sendError(w, "cannot delete own account", http.StatusBadRequest)
	case errors.Is(err, vault.ErrInvalidCredentials):
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, vault.ErrInvalidToken):
		h.sendError(w, "invalid or expired token", http.StatusUnauthorized)
	case errors.Is(err, vault.ErrAdminRequired):
		h.sendError(w, "admin role required", http.StatusForbidden)
	case errors.Is(err, vault.ErrNotFound):
		h.sendError(w, "not found", http.StatusNotFound)
	case errors.Is(err, vault.ErrUserNotFound):
		h.sendError(w, "user not found", http.StatusNotFound)
	case errors.Is(err, vault.ErrConflict):
		h.sendError(w, "already exists", http.StatusConflict)
	case errors.Is(err, vault.ErrDecryption):
		h.logger.ErrorContext(ctx, "stored secret cannot be decrypted", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}
