package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/herland/laundry-backend/internal/config"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/handlers"
	"github.com/herland/laundry-backend/internal/metrics"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/herland/laundry-backend/internal/models"
	"github.com/herland/laundry-backend/internal/services"
	"github.com/herland/laundry-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Herland Laundry Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize services and repositories
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(db)
	exportService := services.NewExportService()

	profileRepo := database.NewProfileRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	catalogRepo := database.NewCatalogRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		profileRepo,
		refreshTokenRepo,
		jwtService,
		auditService,
		cfg.Security.BcryptCost,
		logger,
	)
	adminBookingHandler := handlers.NewAdminBookingHandler(bookingRepo, auditService, exportService, logger)
	adminUserHandler := handlers.NewAdminUserHandler(profileRepo, logger)
	adminServiceHandler := handlers.NewAdminServiceHandler(catalogRepo, logger)
	staffHandler := handlers.NewStaffHandler(bookingRepo, logger)
	customerHandler := handlers.NewCustomerHandler(bookingRepo, profileRepo, notificationRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}
	router.Use(metrics.Middleware())

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check and metrics endpoints (public)
	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", metrics.Handler())

	authRequired := middleware.AuthMiddleware(jwtService, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh-token", authHandler.RefreshToken)

			protected := auth.Group("")
			protected.Use(authRequired)
			{
				protected.POST("/logout", authHandler.Logout)
			}
		}

		// Admin dashboard routes. Staff can work the booking queue; user and
		// catalog management is admin-only. Admin passes every role check.
		admin := v1.Group("/admin")
		admin.Use(authRequired)
		{
			bookings := admin.Group("")
			bookings.Use(middleware.RequireRole(profileRepo, models.RoleStaff))
			{
				bookings.GET("/bookings", adminBookingHandler.ListBookings)
				bookings.GET("/bookings/export", adminBookingHandler.ExportBookings)
				bookings.PUT("/bookings/:id/status", adminBookingHandler.UpdateStatus)
				bookings.PUT("/bookings/:id/amount", adminBookingHandler.UpdateAmount)
				bookings.GET("/dashboard-stats", adminBookingHandler.DashboardStats)
			}

			users := admin.Group("/users")
			users.Use(middleware.RequireRole(profileRepo, models.RoleAdmin))
			{
				users.GET("", adminUserHandler.ListUsers)
				users.PUT("/:id", adminUserHandler.UpdateUser)
				users.DELETE("/:id", adminUserHandler.DeleteUser)
			}

			servicesGroup := admin.Group("/services")
			servicesGroup.Use(middleware.RequireRole(profileRepo, models.RoleAdmin))
			{
				servicesGroup.GET("", adminServiceHandler.GetServices)
				servicesGroup.POST("/items", adminServiceHandler.CreateItem)
				servicesGroup.PUT("/items/:id", adminServiceHandler.UpdateItem)
				servicesGroup.DELETE("/items/:id", adminServiceHandler.DeleteItem)
				servicesGroup.PUT("/schedule", adminServiceHandler.UpdateSchedule)
				servicesGroup.GET("/faqs", adminServiceHandler.GetFAQs)
				servicesGroup.POST("/faqs", adminServiceHandler.SaveFAQ)
				servicesGroup.PUT("/faqs/reorder", adminServiceHandler.ReorderFAQs)
				servicesGroup.DELETE("/faqs/:id", adminServiceHandler.DeleteFAQ)
			}
		}

		// Staff dashboard routes (staff and riders)
		staff := v1.Group("/staff")
		staff.Use(authRequired)
		staff.Use(middleware.RequireRole(profileRepo, models.RoleStaff, models.RoleRider))
		{
			staff.GET("/bookings", staffHandler.ListBookings)
			staff.PATCH("/update-status/:id", staffHandler.UpdateStatus)
		}

		// Customer routes (any authenticated user)
		customer := v1.Group("/customer")
		customer.Use(authRequired)
		{
			customer.POST("/book", customerHandler.CreateBooking)
			customer.GET("/my-bookings", customerHandler.MyBookings)
			customer.GET("/my-bookings/:id", customerHandler.MyBooking)
			customer.POST("/my-bookings/:id/payment-reference", customerHandler.SubmitPaymentReference)
			customer.GET("/notifications", customerHandler.Notifications)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
