package api

import "time"

// Secret представляет секрет без значения
type Secret struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// SecretValue представляет расшифрованный секрет
type SecretValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CreateSecretRequest представляет запрос на создание секрета
type CreateSecretRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UpdateSecretRequest представляет частичное обновление секрета
type UpdateSecretRequest struct {
	Name  *string `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

// ExportResponse содержит все расшифрованные секреты приложения
type ExportResponse struct {
	Secrets []SecretValue `json:"secrets"`
}
