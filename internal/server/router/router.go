// Package router собирает HTTP API сервера на chi.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/envdev/internal/server/handlers"
	"github.com/iudanet/envdev/internal/server/middleware"
)

// Service объединяет все операции, нужные handlers и middleware.
// *vault.Service реализует его.
type Service interface {
	middleware.Authenticator
	handlers.AuthService
	handlers.AppService
	handlers.SecretService
	handlers.UserService
}

// New строит http.Handler со всеми маршрутами API.
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP
//  2. RecoveryMiddleware: panic -> JSON 500
//  3. LoggingWithSkip: request log без /health
//  4. AuthMiddleware на /api, кроме /api/auth/register|login|refresh
//  5. RequireSession на маршрутах уровня аккаунта
func New(logger *slog.Logger, svc Service, db handlers.Pinger, version string) http.Handler {
	auth := handlers.NewAuthHandler(logger, svc)
	apps := handlers.NewAppHandler(logger, svc)
	secrets := handlers.NewSecretHandler(logger, svc)
	users := handlers.NewUserHandler(logger, svc)
	health := handlers.NewHealthHandler(logger, db, version)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))

	r.Get("/health", health.Health)

	r.Route("/api", func(r chi.Router) {
		// тела запросов только JSON; запросы без тела пропускаются
		r.Use(chimiddleware.AllowContentType("application/json"))

		// Public endpoints
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/refresh", auth.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(logger, svc))

			// App-scoped: access token владельца или API key приложения
			r.Get("/apps/{appID}", apps.Get)
			r.Route("/apps/{appID}/secrets", func(r chi.Router) {
				r.Get("/", secrets.List)
				r.Post("/", secrets.Create)
				r.Get("/export", secrets.Export)
				r.Get("/{name}", secrets.Get)
				r.Put("/{name}", secrets.Update)
				r.Delete("/{name}", secrets.Delete)
			})

			// Account-level: только access token
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(logger))

				r.Get("/auth/me", auth.Me)

				r.Get("/apps", apps.List)
				r.Post("/apps", apps.Create)
				r.Put("/apps/{appID}", apps.Update)
				r.Delete("/apps/{appID}", apps.Delete)
				r.Post("/apps/{appID}/regenerate-key", apps.RegenerateKey)

				r.Get("/users", users.List)
				r.Get("/users/{userID}", users.Get)
				r.Put("/users/{userID}/role", users.SetRole)
				r.Delete("/users/{userID}", users.Delete)
			})
		})
	})

	return r
}
