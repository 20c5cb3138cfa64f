package api

// UserDetails представляет пользователя и его приложения (для admin).
// API keys чужих приложений не отдаются.
type UserDetails struct {
	User
	Apps []App `json:"apps"`
}

// UpdateRoleRequest представляет запрос на смену роли
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
