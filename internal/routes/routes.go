package routes

import (
	"time"

	"github.com/fra-atlas/atlas-backend/internal/config"
	"github.com/fra-atlas/atlas-backend/internal/handlers"
	"github.com/fra-atlas/atlas-backend/internal/middleware"
	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	claimHandler *handlers.ClaimHandler,
	dashboardHandler *handlers.DashboardHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth: stricter limit on credential endpoints
	auth := api.Group("/auth")
	credentialLimit := limiter.New(limiter.Config{
		Max:               cfg.AuthRateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	auth.Post("/register", credentialLimit, authHandler.Register)
	auth.Post("/login", credentialLimit, authHandler.Login)

	// Protected routes: token check first, then load the acting user
	jwt := middleware.JWTProtected(cfg)
	actor := middleware.CurrentUser(authService)

	api.Get("/auth/me", jwt, actor, authHandler.Me)

	api.Post("/claims", jwt, actor, claimHandler.Create)
	api.Get("/claims", jwt, actor, claimHandler.List)
	api.Get("/claims/:id", jwt, actor, claimHandler.Get)
	api.Put("/claims/:id/status", jwt, actor, claimHandler.UpdateStatus)
	api.Post("/claims/:id/upload", jwt, actor, claimHandler.Upload)

	api.Get("/dashboard/stats", jwt, actor, dashboardHandler.Stats)
	api.Get("/dashboard/map-data", jwt, actor, dashboardHandler.MapData)

	api.Get("/reports/summary", jwt, actor, dashboardHandler.Summary)
	api.Get("/reports/summary/export", jwt, actor, dashboardHandler.ExportSummary)
}
