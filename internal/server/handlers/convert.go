package handlers

import (
	"github.com/iudanet/envdev/internal/models"
	"github.com/iudanet/envdev/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		AppCount:  u.AppCount,
	}
}

// toAPIApp конвертирует приложение; withKey=false скрывает api key
func toAPIApp(a *models.App, withKey bool) api.App {
	app := api.App{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		SecretCount: a.SecretCount,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if withKey {
		app.APIKey = a.APIKey
	}
	return app
}

func toAPIApps(apps []*models.App, withKey bool) []api.App {
	out := make([]api.App, 0, len(apps))
	for _, a := range apps {
		out = append(out, toAPIApp(a, withKey))
	}
	return out
}

func toAPISecret(s *models.Secret) api.Secret {
	return api.Secret{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
