package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"trendscribe/internal/cache"
	"trendscribe/internal/config"
	"trendscribe/internal/database"
	"trendscribe/internal/handlers"
	"trendscribe/internal/jobs"
	"trendscribe/internal/logging"
	"trendscribe/internal/middleware"
	"trendscribe/internal/providers"
	"trendscribe/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting trendscribe server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err == nil {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// Result cache: Redis when configured, in-process otherwise. The
	// server always runs; without Redis, recovery only works within one
	// process lifetime.
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (falling back to in-process cache)", err)
			store = cache.NewMemoryStore(cfg.CacheTTL)
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	} else {
		log.Println("⚠️  REDIS_URL not set - using in-process result cache")
		store = cache.NewMemoryStore(cfg.CacheTTL)
	}

	// Research history (optional)
	var history *services.HistoryService
	if cfg.HistoryDBPath != "" {
		db, err := database.New(cfg.HistoryDBPath)
		if err != nil {
			log.Printf("⚠️  Failed to open history database: %v (history disabled)", err)
		} else {
			defer db.Close()
			if err := db.Initialize(); err != nil {
				log.Printf("⚠️  Failed to initialize history schema: %v (history disabled)", err)
			} else {
				history = services.NewHistoryService(db)
				log.Println("✅ Research history enabled")
			}
		}
	}

	metrics := services.InitMetrics()

	provider := providers.NewOpenAIProvider(cfg.ResearchBaseURL, cfg.ResearchAPIKey, cfg.ResearchModel, cfg.ResearchTimeout)
	researchService := services.NewResearchService(provider, store, history, metrics, cfg.CacheTTL)
	recoveryService := services.NewRecoveryService(store, metrics)

	// Trend sources: YAML registry with hot reload
	registry := services.NewSourceRegistry(cfg.TrendSourcesFile)
	if err := registry.Watch(); err != nil {
		log.Printf("⚠️  Source hot-reload disabled: %v", err)
	}
	defer registry.Close()

	fetchLimiter := services.NewFetchLimiter(10, 2)
	trendService := services.NewTrendService(registry, fetchLimiter, metrics, cfg.TrendCacheTTL)

	// Background trend refresh
	if cfg.TrendRefreshInterval > 0 && len(cfg.TrendRefreshTypes) > 0 {
		scheduler, err := jobs.NewScheduler()
		if err != nil {
			log.Printf("⚠️  Scheduler disabled: %v", err)
		} else {
			refresh := jobs.NewTrendRefresh(trendService, cfg.TrendRefreshTypes)
			if err := scheduler.Register("trend-refresh", cfg.TrendRefreshInterval, refresh.Run); err != nil {
				log.Printf("⚠️  Failed to register trend refresh: %v", err)
			}
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "trendscribe",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("trendscribe")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	rateLimits := middleware.LoadRateLimitConfig()

	// Routes
	app.Get("/health", handlers.NewHealthHandler(store).Handle)

	api := app.Group("/api", rateLimits.GlobalLimiter())
	api.Post("/research", rateLimits.ResearchLimiter(), handlers.NewResearchHandler(researchService).Handle)
	api.Post("/research/recover", rateLimits.ReadLimiter(), handlers.NewRecoveryHandler(recoveryService).Handle)
	api.Post("/research/questions", rateLimits.ResearchLimiter(), handlers.NewQuestionsHandler(provider).Handle)
	if history != nil {
		api.Get("/research/history", rateLimits.ReadLimiter(), handlers.NewHistoryHandler(history).Handle)
	}
	api.Get("/trends", rateLimits.ReadLimiter(), handlers.NewTrendsHandler(trendService).Handle)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Shutdown error: %v", err)
		}
	}()

	log.Printf("✅ Server listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("👋 Server stopped")
}
