package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/handlers"
	auth_handlers "github.com/internship-hub/placement-api/handlers/auth"
	request_handlers "github.com/internship-hub/placement-api/handlers/request"
	stats_handlers "github.com/internship-hub/placement-api/handlers/stats"
	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/services"
	"github.com/internship-hub/placement-api/utils/auth"
	"github.com/internship-hub/placement-api/utils/cache"
	"github.com/internship-hub/placement-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "placement-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	requestService := services.NewRequestService(store)
	queryService := services.NewQueryService(store)
	requestHandler := request_handlers.NewRequestHandler(requestService, queryService)
	statsHandler := stats_handlers.NewStatsHandler(queryService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/health", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Request lifecycle routes (all protected, scoping happens in the services)
	requests := api.Group("/requests", authMiddleware.Required())
	requests.Get("/", requestHandler.List)
	requests.Post("/", authMiddleware.RequireRole(lifecycle.RoleStudent, lifecycle.RoleAdmin), requestHandler.Create)
	requests.Get("/:id", requestHandler.Get)
	requests.Get("/:id/history", requestHandler.History)
	requests.Post("/:id/transition", authMiddleware.RequireRole(lifecycle.RoleAdvisor, lifecycle.RoleAdmin), requestHandler.Transition)

	// Dashboard statistics
	api.Get("/stats", authMiddleware.Required(), statsHandler.Get)
}
