package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/controllers"
	"github.com/kendall-kelly/kendalls-studio-api/metrics"
	"github.com/kendall-kelly/kendalls-studio-api/middleware"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"gorm.io/gorm"
)

// application holds the wired services and the resources to release on
// shutdown
type application struct {
	deps         controllers.Dependencies
	verification *services.VerificationService
	closers      []io.Closer
}

func (a *application) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// buildApplication wires storage, mail, token store and every service
func buildApplication(ctx context.Context, cfg *config.Config, db *gorm.DB, mailer services.Mailer, storage services.FileStorage) (*application, error) {
	app := &application{}
	if c, ok := mailer.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	store, err := services.NewVerificationTokenStore(cfg, db)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	tokenValidator, err := utils.NewTokenValidator(cfg.SigningKey(), cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("failed to set up token validator: %w", err)
	}

	images := services.NewImageService(storage)
	users := services.NewUserService(db)
	verification := services.NewVerificationService(store, users, mailer,
		time.Duration(cfg.VerificationExpirationMinutes)*time.Minute)
	auth, err := services.NewAuthService(cfg, users, verification)
	if err != nil {
		return nil, err
	}

	app.verification = verification
	app.deps = controllers.Dependencies{
		Validator:    tokenValidator,
		Auth:         auth,
		Verification: verification,
		Users:        users,
		Categories:   services.NewCategoryService(db),
		Appointments: services.NewAppointmentService(db),
		Products:     services.NewProductService(db, images),
		Courses:      services.NewCourseService(db, images),
		Carts:        services.NewCartService(db),
		Invoices:     services.NewInvoiceService(db),
		LineItems:    services.NewLineItemService(db),
		Addresses:    services.NewAddressService(db),
		Storage:      storage,
	}
	return app, nil
}

// setupRouter builds the gin engine with middleware and every route
func setupRouter(cfg *config.Config, deps controllers.Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}
	controllers.RegisterRoutes(v1, deps)

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Kendall's Studio API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
