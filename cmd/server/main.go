package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tiptravel/tip-web/internal/adapter/backend"
	"github.com/tiptravel/tip-web/internal/adapter/cache"
	"github.com/tiptravel/tip-web/internal/adapter/store"
	"github.com/tiptravel/tip-web/internal/handler"
	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/service"
	"github.com/tiptravel/tip-web/internal/session"
	"github.com/tiptravel/tip-web/pkg/config"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.IsProduction() {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(logger)

	slog.Info("🚀 Starting TIP web",
		"port", cfg.Port,
		"env", cfg.Env,
		"api_base_url", cfg.APIBaseURL,
		"access_token_ttl", cfg.AccessTokenTTL(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Audit store ──────────────────────────────────────────────────────
	var (
		auditWriter port.AuditWriter
		auditReader port.AuditReader
	)
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		auditWriter, auditReader = pgStore, pgStore
	} else {
		slog.Warn("DATABASE_URL not set, audit records are kept in memory only")
		logStore := store.NewLogStore(logger, 0)
		auditWriter, auditReader = logStore, logStore
	}

	// ── Catalog cache ────────────────────────────────────────────────────
	var catalogCache port.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, catalog caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			catalogCache = redisCache
		}
	}

	// ── Session lifecycle ────────────────────────────────────────────────
	api := backend.NewClient(cfg.APIBaseURL, cfg.BackendTimeout)
	api.SetLanguage(cfg.DefaultLanguage)

	codec, err := session.NewCodec(cfg.SessionSecret, cfg.SessionIssuer)
	if err != nil {
		slog.Error("failed to create session codec", "error", err)
		os.Exit(1)
	}
	refresher := session.NewRefresher(api, cfg.AccessTokenTTL(), cfg.BackendTimeout)
	gate := session.NewGate(codec, refresher, logger)
	cookies := middleware.NewCookies(middleware.CookieConfig{
		SessionName:  cfg.SessionCookie,
		DeviceName:   cfg.DeviceCookie,
		Secure:       cfg.CookieSecure || cfg.IsProduction(),
		DeviceMaxAge: cfg.DeviceIDMaxAge,
	}, codec)

	// ── Services ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(api, refresher, cfg)
	catalogService := service.NewCatalogService(api, catalogCache, cfg.CatalogCacheTTL, cfg.S3Endpoint)
	tripService := service.NewTripService(api)
	chatService := service.NewChatService(api)
	mediaService := service.NewMediaService(api)
	dashboardService := service.NewDashboardService(api, tripService)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Language", "Accept-Language"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowCredentials: true,
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(auditWriter))

	// Session gate runs before every page and API route.
	app.Use(middleware.SessionGate(gate, cookies, auditWriter))

	// ── API Routes ───────────────────────────────────────────────────────
	apiGroup := app.Group("/api")

	// Health check
	apiGroup.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	handler.NewAuthHandler(authService, cookies, auditWriter).Register(apiGroup)
	handler.NewHotelHandler(catalogService).Register(apiGroup)
	handler.NewTripHandler(tripService).Register(apiGroup)
	handler.NewChatHandler(chatService).Register(apiGroup)
	handler.NewMediaHandler(mediaService).Register(apiGroup)
	handler.NewDashboardHandler(dashboardService).Register(apiGroup)
	handler.NewAuditHandler(auditReader).Register(apiGroup)

	// ── Pages ────────────────────────────────────────────────────────────
	handler.NewPageHandler(cfg.AppName).Register(app)

	// ── Start ────────────────────────────────────────────────────────────
	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// errorHandler renders unhandled errors in the API's response shape.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		slog.Error("unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
}
