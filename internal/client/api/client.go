// Package api содержит HTTP клиент envdev сервера.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/envdev/pkg/api"
)

// ErrUnauthorized совпадает (errors.Is) с любым ответом 401
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound совпадает (errors.Is) с любым ответом 404
var ErrNotFound = errors.New("not found")

// ErrConflict совпадает (errors.Is) с любым ответом 409
var ErrConflict = errors.New("conflict")

// Error описывает неуспешный ответ сервера
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is сопоставляет статус ответа с sentinel ошибками пакета
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Bearer credential (access token или API key) передается в каждый вызов.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization переносим только в пределах того же хоста
				if len(via) > 0 && req.URL.Host == via[0].URL.Host && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL возвращает адрес сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новый access token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	req := api.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Me возвращает текущего пользователя
func (c *Client) Me(ctx context.Context, token string) (*api.User, error) {
	var resp api.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// ListApps возвращает приложения пользователя
func (c *Client) ListApps(ctx context.Context, token string) ([]api.App, error) {
	var resp []api.App
	if err := c.doRequest(ctx, http.MethodGet, "/api/apps", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list apps request failed: %w", err)
	}
	return resp, nil
}

// CreateApp создает приложение
func (c *Client) CreateApp(ctx context.Context, token string, req api.CreateAppRequest) (*api.App, error) {
	var resp api.App
	if err := c.doRequest(ctx, http.MethodPost, "/api/apps", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create app request failed: %w", err)
	}
	return &resp, nil
}

// GetApp возвращает приложение с именами секретов
func (c *Client) GetApp(ctx context.Context, token, appID string) (*api.AppDetails, error) {
	var resp api.AppDetails
	if err := c.doRequest(ctx, http.MethodGet, appPath(appID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get app request failed: %w", err)
	}
	return &resp, nil
}

// UpdateApp переименовывает приложение или меняет описание
func (c *Client) UpdateApp(ctx context.Context, token, appID string, req api.UpdateAppRequest) (*api.App, error) {
	var resp api.App
	if err := c.doRequest(ctx, http.MethodPut, appPath(appID), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update app request failed: %w", err)
	}
	return &resp, nil
}

// DeleteApp удаляет приложение вместе с секретами
func (c *Client) DeleteApp(ctx context.Context, token, appID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, appPath(appID), token, nil, nil); err != nil {
		return fmt.Errorf("delete app request failed: %w", err)
	}
	return nil
}

// RegenerateAPIKey выпускает новый API key приложения
func (c *Client) RegenerateAPIKey(ctx context.Context, token, appID string) (*api.App, error) {
	var resp api.App
	if err := c.doRequest(ctx, http.MethodPost, appPath(appID)+"/regenerate-key", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("regenerate key request failed: %w", err)
	}
	return &resp, nil
}

// ListSecrets возвращает секреты приложения без значений
func (c *Client) ListSecrets(ctx context.Context, token, appID string) ([]api.Secret, error) {
	var resp []api.Secret
	if err := c.doRequest(ctx, http.MethodGet, appPath(appID)+"/secrets", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list secrets request failed: %w", err)
	}
	return resp, nil
}

// CreateSecret сохраняет новый секрет
func (c *Client) CreateSecret(ctx context.Context, token, appID string, req api.CreateSecretRequest) (*api.Secret, error) {
	var resp api.Secret
	if err := c.doRequest(ctx, http.MethodPost, appPath(appID)+"/secrets", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create secret request failed: %w", err)
	}
	return &resp, nil
}

// GetSecret возвращает расшифрованное значение секрета
func (c *Client) GetSecret(ctx context.Context, token, appID, name string) (*api.SecretValue, error) {
	var resp api.SecretValue
	if err := c.doRequest(ctx, http.MethodGet, secretPath(appID, name), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get secret request failed: %w", err)
	}
	return &resp, nil
}

// ExportSecrets возвращает все расшифрованные секреты приложения
func (c *Client) ExportSecrets(ctx context.Context, token, appID string) (*api.ExportResponse, error) {
	var resp api.ExportResponse
	if err := c.doRequest(ctx, http.MethodGet, appPath(appID)+"/secrets/export", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("export secrets request failed: %w", err)
	}
	return &resp, nil
}

// UpdateSecret меняет имя и/или значение секрета
func (c *Client) UpdateSecret(ctx context.Context, token, appID, name string, req api.UpdateSecretRequest) (*api.Secret, error) {
	var resp api.Secret
	if err := c.doRequest(ctx, http.MethodPut, secretPath(appID, name), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update secret request failed: %w", err)
	}
	return &resp, nil
}

// DeleteSecret удаляет секрет
func (c *Client) DeleteSecret(ctx context.Context, token, appID, name string) error {
	if err := c.doRequest(ctx, http.MethodDelete, secretPath(appID, name), token, nil, nil); err != nil {
		return fmt.Errorf("delete secret request failed: %w", err)
	}
	return nil
}

// ListUsers возвращает всех пользователей (admin)
func (c *Client) ListUsers(ctx context.Context, token string) ([]api.User, error) {
	var resp []api.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/users", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list users request failed: %w", err)
	}
	return resp, nil
}

// GetUser возвращает пользователя и его приложения (admin)
func (c *Client) GetUser(ctx context.Context, token, userID string) (*api.UserDetails, error) {
	var resp api.UserDetails
	if err := c.doRequest(ctx, http.MethodGet, userPath(userID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	return &resp, nil
}

// SetRole меняет роль пользователя (admin)
func (c *Client) SetRole(ctx context.Context, token, userID, role string) (*api.User, error) {
	var resp api.User
	req := api.UpdateRoleRequest{Role: role}
	if err := c.doRequest(ctx, http.MethodPut, userPath(userID)+"/role", token, req, &resp); err != nil {
		return nil, fmt.Errorf("set role request failed: %w", err)
	}
	return &resp, nil
}

// DeleteUser удаляет пользователя (admin)
func (c *Client) DeleteUser(ctx context.Context, token, userID string) error {
	if err := c.doRequest(ctx, http.MethodDelete, userPath(userID), token, nil, nil); err != nil {
		return fmt.Errorf("delete user request failed: %w", err)
	}
	return nil
}

func appPath(appID string) string {
	return "/api/apps/" + url.PathEscape(appID)
}

// secretPath экранирует имя: в нем допустимы пробелы, '%', ',' и т.п.
func secretPath(appID, name string) string {
	return appPath(appID) + "/secrets/" + url.PathEscape(name)
}

func userPath(userID string) string {
	return "/api/users/" + url.PathEscape(userID)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	// Декодируем успешный ответ
	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
