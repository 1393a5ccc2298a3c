package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"caixa/internal/config"
	"caixa/internal/database"
	"caixa/internal/docstore"
	"caixa/internal/handlers"
	"caixa/internal/logger"
	"caixa/internal/middleware"
	"caixa/internal/services"
	"caixa/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Open the backing database
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Document store with per-call timeout and bounded retry
	store := docstore.NewGormStore(dbManager.DB(), docstore.Options{
		Timeout:     cfg.StorageTimeout,
		MaxAttempts: cfg.StorageRetries,
	})

	// Initialize services
	authService := services.NewAuthService(store, cfg.JWTSecret, cfg.JWTExpirationDur)
	profileService := services.NewProfileService(store)
	entryService := services.NewEntryService(store, cfg.FetchLimit)
	dashboardService := services.NewDashboardService(entryService, profileService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	entryHandler := handlers.NewEntryHandler(entryService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.Auth(authService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", profileHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.GET("", profileHandler.GetProfile)
	categories.POST("", profileHandler.AddCategory)
	categories.DELETE("", profileHandler.RemoveCategory)

	entries := protected.Group("/entries")
	entries.PUT("", entryHandler.Upsert)
	entries.PUT("/batch", entryHandler.UpsertBatch)
	entries.GET("", entryHandler.List)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/monthly", dashboardHandler.Monthly)
	dashboard.GET("/annual", dashboardHandler.Annual)
	dashboard.GET("/breakdown", dashboardHandler.Breakdown)
	dashboard.GET("/expenses", dashboardHandler.Expenses)

	log.Infof("Starting caixa backend server on port %s", cfg.Port)
	return router.Run(":" + cfg.Port)
}
