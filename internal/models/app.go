package models

import "time"

// App groups secrets of one service and carries its own API key.
// Ownership (UserID) never changes after creation.
type App struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`          // UUID приложения
	UserID      string    `json:"user_id"`     // владелец
	Name        string    `json:"name"`        // человекочитаемое имя
	Description *string   `json:"description"` // опциональное описание
	APIKey      string    `json:"api_key"`     // envdev_<hex>
	SecretCount int       `json:"secret_count"`
}
