// Package storage описывает локальное хранилище CLI клиента.
package storage

import (
	"context"
	"time"
)

//go:generate moq -out session_mock.go . SessionStorage

// SessionStorage хранит текущую сессию клиента.
// Токены хранятся как есть: файл создается с правами 0600.
type SessionStorage interface {
	// SaveSession сохраняет (перезаписывает) сессию
	SaveSession(ctx context.Context, session *Session) error

	// GetSession возвращает сессию или ErrSessionNotFound
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout); ErrSessionNotFound если ее нет
	DeleteSession(ctx context.Context) error
}

// Session represents a logged in user on this machine
type Session struct {
	ServerURL    string `json:"server_url"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix время истечения access token
}

// AccessExpired reports whether the access token is past its expiry.
func (s *Session) AccessExpired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}
