package models

import "time"

// Secret is a named value scoped to one App.
// Value always holds the sealed blob, never the plaintext.
type Secret struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`     // UUID секрета
	AppID     string    `json:"app_id"` // приложение-владелец
	Name      string    `json:"name"`   // уникально в пределах приложения, case-sensitive
	Value     string    `json:"-"`      // sealed blob: v1:<nonce>:<tag>:<ciphertext>
}
