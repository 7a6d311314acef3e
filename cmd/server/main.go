package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/fra-atlas/atlas-backend/internal/ai"
	"github.com/fra-atlas/atlas-backend/internal/analysis"
	"github.com/fra-atlas/atlas-backend/internal/config"
	"github.com/fra-atlas/atlas-backend/internal/database"
	"github.com/fra-atlas/atlas-backend/internal/handlers"
	"github.com/fra-atlas/atlas-backend/internal/insights"
	"github.com/fra-atlas/atlas-backend/internal/logging"
	"github.com/fra-atlas/atlas-backend/internal/middleware"
	"github.com/fra-atlas/atlas-backend/internal/routes"
	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/fra-atlas/atlas-backend/internal/storage"
	"github.com/fra-atlas/atlas-backend/internal/store"
	"github.com/fra-atlas/atlas-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// persistence bundles the stores and the shutdown hooks that go with them.
type persistence struct {
	users  store.UserStore
	claims store.ClaimStore
	ping   handlers.PingFunc
	close  func()
}

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	validation.SetPhoneRegion(cfg.PhoneRegion)

	p := openPersistence(cfg)

	// Documents
	docs, err := openDocumentStore(cfg)
	if err != nil {
		slog.Error("document store init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// AI analyzer and insights cache
	analyzer := ai.NewFromConfig(cfg)
	_, aiDisabled := analyzer.(ai.Disabled)

	var cache insights.Cache
	if cfg.RedisAddr != "" {
		redisCache := insights.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.InsightsCacheTTL)
		defer redisCache.Close()
		cache = redisCache
		slog.Info("insights cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.InsightsCacheTTL.String())
	}

	// Services
	pipeline := analysis.NewPipeline(docs, p.claims, analyzer, cfg.AITimeout)
	authService := services.NewAuthService(p.users, cfg)
	claimService := services.NewClaimService(p.claims, pipeline)
	dashboardService := services.NewDashboardService(p.claims, insights.NewEngine(analyzer, cfg.AITimeout, cache))
	reportService := services.NewReportService(p.claims)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	claimHandler := handlers.NewClaimHandler(claimService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, reportService)
	healthHandler := handlers.NewHealthHandler(p.ping, !aiDisabled)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, authService, authHandler, claimHandler, dashboardHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "storage", cfg.StorageDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	sentry.Flush(2 * time.Second)
	p.close()

	slog.Info("server stopped")
}

func openPersistence(cfg *config.Config) *persistence {
	if cfg.StoreDriver == "memory" {
		slog.Warn("using in-memory store; data is lost on restart")
		s := store.NewMemoryStore()
		return &persistence{users: s, claims: s, close: func() {}}
	}

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(logging.StdoutHandler(), pgLogHandler)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	s := store.NewGormStore(database.DB)
	return &persistence{
		users:  s,
		claims: s,
		ping:   database.Ping,
		close: func() {
			close(cleanupDone)
			pgLogHandler.Stop()
			if err := database.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		},
	}
}

func openDocumentStore(cfg *config.Config) (storage.DocumentStore, error) {
	if cfg.StorageDriver == "minio" {
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return storage.NewLocalStore(cfg.UploadDir)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
