// Package auth управляет сессией CLI клиента: вход, выход и обновление
// access token по сохраненному refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/envdev/internal/client/api"
	"github.com/iudanet/envdev/internal/client/storage"
	"github.com/iudanet/envdev/internal/validation"
	pkgapi "github.com/iudanet/envdev/pkg/api"
)

var (
	// ErrNotLoggedIn возвращается, если локальной сессии нет
	ErrNotLoggedIn = errors.New("not logged in, run 'envdev login' first")

	// ErrSessionExpired возвращается, когда refresh token тоже не принят сервером
	ErrSessionExpired = errors.New("session expired, run 'envdev login' again")
)

// Service предоставляет функции авторизации
type Service struct {
	apiClient API
	store     storage.SessionStorage
	now       func() time.Time
	serverURL string
}

// NewService создает новый сервис авторизации.
// serverURL привязывает сессию к серверу, на котором она получена.
func NewService(apiClient API, store storage.SessionStorage, serverURL string) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		now:       time.Now,
		serverURL: serverURL,
	}
}

// Register регистрирует нового пользователя и сохраняет сессию
func (s *Service) Register(ctx context.Context, email, password string) (*storage.Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return s.saveSession(ctx, resp)
}

// Login выполняет аутентификацию пользователя и сохраняет сессию
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.saveSession(ctx, resp)
}

// Logout удаляет локальную сессию.
// Токены stateless, поэтому сервер не уведомляется.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("failed to delete local session: %w", err)
	}
	return nil
}

// Session возвращает сохраненную сессию для текущего сервера
func (s *Service) Session(ctx context.Context) (*storage.Session, error) {
	session, err := s.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.ServerURL != s.serverURL {
		return nil, fmt.Errorf("%w (session belongs to %s)", ErrNotLoggedIn, session.ServerURL)
	}

	return session, nil
}

// WithAccessToken вызывает fn с действующим access token.
// Просроченный token обновляется заранее; на ответ 401 token обновляется
// один раз и fn вызывается повторно.
func (s *Service) WithAccessToken(ctx context.Context, fn func(token string) error) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}

	refreshed := false
	if session.AccessExpired(s.now()) {
		if err := s.refresh(ctx, session); err != nil {
			return err
		}
		refreshed = true
	}

	err = fn(session.AccessToken)
	if err == nil || refreshed || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	slog.DebugContext(ctx, "access token rejected, refreshing")
	if err := s.refresh(ctx, session); err != nil {
		return err
	}

	return fn(session.AccessToken)
}

func (s *Service) refresh(ctx context.Context, session *storage.Session) error {
	resp, err := s.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return ErrSessionExpired
		}
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	session.AccessToken = resp.AccessToken
	session.ExpiresAt = s.now().Unix() + resp.ExpiresIn
	if resp.User != nil {
		session.Role = resp.User.Role
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save refreshed session: %w", err)
	}

	return nil
}

func (s *Service) saveSession(ctx context.Context, resp *pkgapi.TokenResponse) (*storage.Session, error) {
	session := &storage.Session{
		ServerURL:    s.serverURL,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.now().Unix() + resp.ExpiresIn,
	}
	if resp.User != nil {
		session.UserID = resp.User.ID
		session.Email = resp.User.Email
		session.Role = resp.User.Role
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}
