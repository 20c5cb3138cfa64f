// Package api содержит DTO, общие для сервера и клиента.
package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email, он же логин
	Password string `json:"password"` // пароль в открытом виде, только по TLS
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest представляет запрос на обновление access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// User представляет пользователя без секретных полей
type User struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`                // member | admin
	AppCount  int       `json:"app_count,omitempty"` // только в списках для admin
}

// TokenResponse представляет ответ с токенами доступа.
// RefreshToken пуст в ответе на refresh: токен не ротируется.
type TokenResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token"`            // JWT access token
	RefreshToken string `json:"refresh_token,omitempty"` // JWT refresh token
	ExpiresIn    int64  `json:"expires_in"`              // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
