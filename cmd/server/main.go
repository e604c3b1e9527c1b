package main

import (
	"context"
	"log"

	"github.com/dzuokumor/Civic-voice/internal/auth"
	"github.com/dzuokumor/Civic-voice/internal/cache"
	"github.com/dzuokumor/Civic-voice/internal/config"
	"github.com/dzuokumor/Civic-voice/internal/database"
	"github.com/dzuokumor/Civic-voice/internal/files"
	"github.com/dzuokumor/Civic-voice/internal/handler"
	"github.com/dzuokumor/Civic-voice/internal/middleware"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/notify"
	"github.com/dzuokumor/Civic-voice/internal/payment"
	"github.com/dzuokumor/Civic-voice/internal/scheduler"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	st := store.NewStore(db)

	// Seed settings from configuration once at startup; idempotent, and
	// existing rows win over the environment.
	seeds := store.BootstrapSettings(cfg.DataPriceCents, cfg.DownloadExpiryHrs,
		cfg.ReportsPerPage, cfg.MaxReportsPerPage)
	if err := st.EnsureDefaults(seeds); err != nil {
		log.Fatalf("Failed to ensure default settings: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis (fail-open: no rate limiting, no stats cache)
	}

	// Initialize notification publisher
	notifier, err := notify.NewPublisher(cfg.AMQPURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to message broker: %v", err)
		// Continue without notifications (fire-and-forget contract)
	}
	defer notifier.Close()

	fileStorage := files.NewStorage(cfg.UploadFolder)
	processor := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey)
	googleConfig := auth.NewGoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	// Initialize handlers
	reportHandler := handler.NewReportHandler(st, fileStorage)
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret, googleConfig, cfg.FrontendURL, notifier)
	moderationHandler := handler.NewModerationHandler(st, redisCache)
	publicHandler := handler.NewPublicHandler(st)
	purchaseHandler := handler.NewPurchaseHandler(st, processor, notifier)

	// Start background purchase-token sweeper
	if cfg.CleanupEnabled {
		sweeper := scheduler.NewCleanupScheduler(st, 0)
		go sweeper.Start(context.Background())
	}

	// Setup router
	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", publicHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Anonymous submission and tracking
		api.POST("/reports", middleware.RateLimit(redisCache, "submit"), reportHandler.Submit)
		api.POST("/reports/track", middleware.RateLimit(redisCache, "track"), reportHandler.Track)

		// Public corpus
		api.GET("/public/reports", publicHandler.Reports)
		api.GET("/categories", publicHandler.Categories)

		// Auth
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register/researcher", authHandler.RegisterResearcher)
		api.GET("/auth/verify-email", authHandler.VerifyEmail)
		api.GET("/auth/google", authHandler.GoogleAuth)
		api.GET("/auth/google/callback", authHandler.GoogleCallback)

		// Moderation
		moderator := api.Group("/moderator",
			middleware.AuthMiddleware(cfg.JWTSecret),
			middleware.RequireRole(model.RoleModerator))
		{
			moderator.GET("/reports", moderationHandler.List)
			moderator.POST("/reports/:id/verify", moderationHandler.Decide)
			moderator.GET("/stats", moderationHandler.Stats)
		}

		// Purchase and export
		data := api.Group("/data",
			middleware.AuthMiddleware(cfg.JWTSecret),
			middleware.RequireRole(model.RoleResearcher))
		{
			data.POST("/purchase", middleware.RateLimit(redisCache, "purchase"), purchaseHandler.Purchase)
			data.POST("/confirm-purchase", purchaseHandler.Confirm)
			data.GET("/download/:token", purchaseHandler.Download)
		}
	}

	log.Printf("API server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
