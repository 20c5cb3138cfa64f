package auth

import (
	"context"

	pkgapi "github.com/iudanet/envdev/pkg/api"
)

//go:generate moq -out api_mock.go . API

// API описывает вызовы сервера, нужные для управления сессией.
// *api.Client реализует его.
type API interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
}
