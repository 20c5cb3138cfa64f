package api

import "time"

// App представляет приложение владельца
type App struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Description *string   `json:"description,omitempty"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	APIKey      string    `json:"api_key,omitempty"` // только владельцу
	SecretCount int       `json:"secret_count"`
}

// AppDetails представляет приложение вместе с именами его секретов
type AppDetails struct {
	App
	SecretNames []string `json:"secret_names"`
}

// CreateAppRequest представляет запрос на создание приложения
type CreateAppRequest struct {
	Description *string `json:"description,omitempty"`
	Name        string  `json:"name"`
}

// UpdateAppRequest представляет частичное обновление приложения.
// Пустая строка в Description очищает описание.
type UpdateAppRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
