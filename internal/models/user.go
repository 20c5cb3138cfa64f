package models

import "time"

// Role is the access level of a user.
type Role string

const (
	// RoleMember is the default role of every registered user
	RoleMember Role = "member"
	// RoleAdmin may list, inspect, re-role and delete other users
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	UpdatedAt    time.Time `json:"updated_at"` // время последнего обновления
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // уникальный login identifier
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля, наружу не отдаем
	Role         Role      `json:"role"`       // member | admin
	AppCount     int       `json:"app_count"`  // заполняется только в ListUsers
}
