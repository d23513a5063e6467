package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallacworks/titan-crm/config"
	"github.com/tallacworks/titan-crm/pkg/api/handlers"
	"github.com/tallacworks/titan-crm/pkg/database"
	"github.com/tallacworks/titan-crm/pkg/logger"
	"github.com/tallacworks/titan-crm/pkg/metrics"
	custommiddleware "github.com/tallacworks/titan-crm/pkg/middleware"
	"github.com/tallacworks/titan-crm/pkg/storage"
)

// errorHandler converts errors that escape the handlers into the nested
// catch-all JSON shape. Stack traces are attached outside production only.
func errorHandler(cfg *config.Config) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		inner := map[string]any{"message": message}
		if !cfg.IsProduction() {
			inner["stack"] = fmt.Sprintf("%+v", err)
		}
		if jsonErr := c.JSON(code, map[string]any{"error": inner}); jsonErr != nil {
			log.Printf("⚠️  Failed to write error response: %v", jsonErr)
		}
	}
}

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.APIEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.APIEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Apply migrations
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatalf("❌ Failed to apply migrations: %v", err)
	}
	log.Printf("✅ Database migrations applied")

	// Initialize S3 object storage
	store, err := storage.NewS3Store(storage.Config{
		AWSAccessKeyID:     cfg.AWSAccessKeyID,
		AWSSecretAccessKey: cfg.AWSSecretAccessKey,
		Region:             cfg.AWSRegion,
		Bucket:             cfg.S3Bucket,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize object storage: %v", err)
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(cfg)

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2) // 5 req/min for login

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	// CORS with restricted origins
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())

	// Global rate limiting
	e.Use(globalRateLimiter.Middleware())

	// Health check endpoint (public)
	e.GET("/health", handlers.Health(db))

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db.DB, cfg)
	leadHandler := handlers.NewLeadHandler(db.DB)
	activityHandler := handlers.NewActivityHandler(db.DB)
	territoryHandler := handlers.NewTerritoryHandler(db.DB)
	companyHandler := handlers.NewCompanyHandler(db.DB)
	userHandler := handlers.NewUserHandler(db.DB)
	kbHandler := handlers.NewKnowledgeBaseHandler(db.DB, store, appLogger)
	dashboardHandler := handlers.NewDashboardHandler(db.DB)

	api := e.Group("/api")
	authed := custommiddleware.Authenticate(cfg.JWTSecret)

	corporateOnly := custommiddleware.RequireRole(handlers.RoleCorporateAdmin)
	adminOnly := custommiddleware.RequireRole(handlers.RoleCorporateAdmin, handlers.RoleTerritoryAdmin)
	managersUp := custommiddleware.RequireRole(handlers.RoleCorporateAdmin, handlers.RoleTerritoryAdmin, handlers.RoleTerritoryManager)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login, authRateLimiter.Middleware())
	authGroup.POST("/register", authHandler.Register, authRateLimiter.Middleware())
	authGroup.GET("/me", authHandler.Me, authed)
	authGroup.POST("/change-password", authHandler.ChangePassword, authed)
	authGroup.POST("/logout", authHandler.Logout, authed)

	// Lead routes
	leadGroup := api.Group("/leads", authed)
	leadGroup.GET("", leadHandler.List)
	leadGroup.GET("/pipeline-counts", leadHandler.PipelineCounts)
	leadGroup.POST("", leadHandler.Create)
	leadGroup.POST("/bulk/assign", leadHandler.BulkAssign)
	leadGroup.POST("/bulk/status", leadHandler.BulkStatus)
	leadGroup.POST("/bulk/delete", leadHandler.BulkDelete)
	leadGroup.GET("/:id", leadHandler.Get)
	leadGroup.PUT("/:id", leadHandler.Update)
	leadGroup.PATCH("/:id", leadHandler.Update)
	leadGroup.POST("/:id/assign", leadHandler.Assign)
	leadGroup.DELETE("/:id", leadHandler.Delete)

	// Activity routes
	activityGroup := api.Group("/activities", authed)
	activityGroup.GET("", activityHandler.List)
	activityGroup.GET("/timeline", activityHandler.Timeline)
	activityGroup.POST("", activityHandler.Create)
	activityGroup.PUT("/:id", activityHandler.Update)
	activityGroup.PATCH("/:id", activityHandler.Update)
	activityGroup.DELETE("/:id", activityHandler.Delete)

	// Note and call-log routes
	api.POST("/notes", activityHandler.CreateNote, authed)
	api.POST("/call-logs", activityHandler.CreateCallLog, authed)

	// Territory routes
	territoryGroup := api.Group("/territories", authed)
	territoryGroup.GET("", territoryHandler.List)
	territoryGroup.GET("/:id", territoryHandler.Get)
	territoryGroup.POST("", territoryHandler.Create, adminOnly)
	territoryGroup.PUT("/:id", territoryHandler.Update, adminOnly)
	territoryGroup.DELETE("/:id", territoryHandler.Delete, corporateOnly)

	// Company routes
	companyGroup := api.Group("/companies", authed)
	companyGroup.GET("", companyHandler.List)
	companyGroup.GET("/:id", companyHandler.Get)
	companyGroup.POST("", companyHandler.Create, adminOnly)
	companyGroup.PUT("/bulk/territory", companyHandler.BulkTerritory, adminOnly)
	companyGroup.PUT("/:id", companyHandler.Update, adminOnly)
	companyGroup.DELETE("/:id", companyHandler.Delete, corporateOnly)

	// Admin user management routes
	userGroup := api.Group("/users", authed)
	userGroup.GET("", userHandler.List, managersUp)
	userGroup.GET("/:id", userHandler.Get, managersUp)
	userGroup.POST("", userHandler.Create, adminOnly)
	userGroup.PUT("/:id", userHandler.Update, adminOnly)
	userGroup.POST("/:id/reset-password", userHandler.ResetPassword, adminOnly)
	userGroup.DELETE("/:id", userHandler.Delete, corporateOnly)

	// Knowledge base routes
	kbGroup := api.Group("/knowledge-base", authed)
	kbGroup.GET("", kbHandler.List)
	kbGroup.GET("/all", kbHandler.ListAll, adminOnly)
	kbGroup.POST("/upload", kbHandler.Upload)
	kbGroup.PUT("/:id/roles", kbHandler.UpdateRoles)
	kbGroup.GET("/:id/download", kbHandler.Download)
	kbGroup.DELETE("/:id", kbHandler.Delete)

	// Dashboard routes
	api.GET("/dashboard/stats", dashboardHandler.Stats, authed)

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Titan CRM API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d days", cfg.JWTExpirationDays)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
