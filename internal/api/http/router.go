package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/anamaak-service/internal/api/http/handlers"
	"github.com/spec-kit/anamaak-service/internal/auth"
	"github.com/spec-kit/anamaak-service/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Config         *config.Config
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.Middleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/api/health", cfg.Health.Check)

	// Uploaded photos are served as-is from the upload root.
	app.Static("/uploads", cfg.UploadDir)

	// Auth endpoints get a stricter limiter; only failed attempts count.
	authGroup := app.Group("/api/auth", NewRateLimiter(
		cfg.Config.RateLimit.AuthMax,
		cfg.Config.RateLimit.Window(),
		true,
		"Trop de tentatives de connexion, veuillez réessayer dans 15 minutes.",
	))
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)
	authGroup.Put("/change-password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)
	authGroup.Get("/verify", cfg.AuthMiddleware.Handle, cfg.Auth.Verify)

	reports := app.Group("/api/signalements")
	reports.Post("", cfg.AuthMiddleware.Optional, cfg.Reports.Create)
	reports.Get("", cfg.AuthMiddleware.Optional, cfg.Reports.List)
	reports.Get("/statistiques", cfg.Reports.Statistics)
	reports.Get("/code/:code", cfg.Reports.GetByCode)

	admin := reports.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/:id", cfg.Reports.GetByID)
	admin.Put("/:id/statut", cfg.Reports.UpdateStatus)
	admin.Post("/:id/restaurer", cfg.Reports.Restore)
	admin.Delete("/:id", cfg.Reports.Hide)
}
