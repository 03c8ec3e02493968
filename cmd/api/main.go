package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/tenderwatch/backend/docs"
	"github.com/tenderwatch/backend/internal/cache"
	"github.com/tenderwatch/backend/internal/handlers"
	"github.com/tenderwatch/backend/internal/repositories"
	"github.com/tenderwatch/backend/internal/scheduler"
	"github.com/tenderwatch/backend/internal/scrapers"
	"github.com/tenderwatch/backend/internal/services"
	"github.com/tenderwatch/backend/libs/auth/middleware"
	"github.com/tenderwatch/backend/libs/auth/service"
	"github.com/tenderwatch/backend/libs/config"
	"github.com/tenderwatch/backend/libs/logger"
	loggerMiddleware "github.com/tenderwatch/backend/libs/logger/middleware"
	sharedMiddleware "github.com/tenderwatch/backend/libs/middlewares"
	"go.uber.org/zap"
)

// @title TenderWatch Task API
// @version 1.0
// @description API for scheduling and monitoring tender scraping tasks
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting TenderWatch API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize repositories
	scheduledTaskRepo := repositories.NewScheduledTaskRepository(db)
	taskLogRepo := repositories.NewTaskLogRepository(db)
	tenderRepo := repositories.NewTenderRepository(db)
	searchTermRepo := repositories.NewSearchTermRepository(db)

	searchTermCache := cache.NewSearchTermCache(rdb)

	// Initialize scrapers
	scraperCfg := scrapers.Config{
		HTTPTimeout: cfg.Scraper.HTTPTimeout,
		UserAgent:   cfg.Scraper.UserAgent,
	}
	registry := scrapers.NewRegistry(
		scrapers.NewUNDPScraper(cfg.Scraper.UNDPBaseURL, cfg.Scraper.CountryFilter, scraperCfg, logger.Logger),
		scrapers.NewReliefWebScraper(cfg.Scraper.ReliefWebBaseURL, scraperCfg, logger.Logger),
	)

	// Initialize the job engine; completed runs are written to the task logs
	engine := scheduler.New(logger.Logger)
	defer engine.Stop()
	engine.Subscribe(services.NewTaskLogListener(taskLogRepo, logger.Logger))

	// Initialize services
	searchTermService := services.NewSearchTermService(searchTermRepo, searchTermCache, logger.Logger)
	scrapeService := services.NewScrapeService(registry, tenderRepo, searchTermService, logger.Logger)
	scheduleService := services.NewScheduleService(scheduledTaskRepo, taskLogRepo, engine, scrapeService, logger.Logger)
	taskLogService := services.NewTaskLogService(taskLogRepo, scheduledTaskRepo, logger.Logger)

	// Re-register jobs for tasks that were enabled before the last shutdown
	if err := scheduleService.RestoreJobs(ctx); err != nil {
		logger.Logger.Error("Failed to restore scheduled jobs", zap.Error(err))
	}

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(scheduleService, taskLogService, logger.Logger)
	searchTermHandler := handlers.NewSearchTermHandler(searchTermService, logger.Logger)
	tenderHandler := handlers.NewTenderHandler(scrapeService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api, JWT protected
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(tokenGenerator))
			taskHandler.RegisterRoutes(r)
			searchTermHandler.RegisterRoutes(r)
			tenderHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	engine.Stop()

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
