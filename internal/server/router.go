// Package server собирает HTTP маршруты сервиса синхронизации сцен.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/objectivehq/scenesync/internal/server/handlers"
	"github.com/objectivehq/scenesync/internal/server/middleware"
)

// Handlers группирует обработчики, нужные роутеру
type Handlers struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Scenes   *handlers.ScenesHandler
	Elements *handlers.ElementsHandler
	Files    *handlers.FilesHandler
}

// RouterOptions параметры сборки роутера
type RouterOptions struct {
	Logger         *slog.Logger
	JWTConfig      handlers.JWTConfig
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter собирает chi-роутер со всеми маршрутами и middleware
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Глобальный стек middleware
	r.Use(middleware.RecoveryMiddleware(opts.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingWithSkip(opts.Logger, []string{"/api/v2/health"}))
	r.Use(middleware.RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst, opts.Logger))

	// Health check без авторизации
	r.Get("/api/v2/health", h.Health.Health)

	// Авторизация без JWT
	r.Route("/api/v2/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	// Всё остальное требует валидный access token
	r.Route("/api/v2/scenes", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(opts.Logger, opts.JWTConfig))

		r.Post("/", h.Scenes.Create)

		r.Route("/{sceneID}", func(r chi.Router) {
			r.Get("/", h.Scenes.Get)
			r.Delete("/", h.Scenes.Delete)

			r.Get("/elements", h.Elements.HandleGet)
			r.Post("/elements", h.Elements.HandlePost)

			r.Get("/render", h.Scenes.GetRender)
			r.Post("/render", h.Scenes.PutRender)

			r.Post("/files", h.Files.Create)
			r.Get("/files/{fileID}", h.Files.Get)
		})
	})

	return r
}
