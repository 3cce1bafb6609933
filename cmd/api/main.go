package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/gymflow-api/docs" // Swagger docs
	"github.com/sjperalta/gymflow-api/internal/config"
	"github.com/sjperalta/gymflow-api/internal/database"
	"github.com/sjperalta/gymflow-api/internal/handlers"
	"github.com/sjperalta/gymflow-api/internal/jobs"
	"github.com/sjperalta/gymflow-api/internal/middleware"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/services"
	"github.com/sjperalta/gymflow-api/pkg/logger"
	"github.com/sjperalta/gymflow-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const reconcileJobName = "reconcile_contracts"

// @title GymFlow API
// @version 1.0
// @description REST API for gym membership contracts
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database schema migrated")
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker and cron scheduler
	worker := jobs.NewWorker(cfg.WorkerCount)
	scheduler := jobs.NewScheduler(worker)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	observer, err := metrics.NewReconciliationObserver("gymflow", nil)
	if err != nil {
		logger.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Initialize services
	svcs := services.NewServices(repos, worker, scheduler, observer, cfg)

	// Schedule recurring jobs
	if err := scheduleJobs(scheduler, worker, svcs, cfg); err != nil {
		logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// Initialize handlers
	h := handlers.NewHandlers(svcs, db)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stop firing new runs, then drain the worker
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Scheduler did not stop in time")
	}
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.AuditContext())

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Gym scoped routes; access is checked per gym by the services
			gym := protected.Group("/gyms/:gym_id")
			{
				gym.GET("/contracts", h.Contract.Index)
				gym.GET("/contracts/export", h.Contract.Export)
				gym.POST("/contracts", h.Contract.Create)
				gym.GET("/contracts/:contract_id", h.Contract.Show)
				gym.GET("/contracts/:contract_id/chain", h.Contract.Chain)
				gym.POST("/contracts/:contract_id/renew", h.Contract.Renew)
				gym.POST("/contracts/:contract_id/freeze", h.Contract.Freeze)
				gym.POST("/contracts/:contract_id/cancel", h.Contract.Cancel)
				gym.GET("/clients/:client_id/contracts", h.Contract.ClientHistory)
			}

			// Admin-only routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/contracts/reconcile", h.Reconciliation.Reconcile)
				admin.GET("/contracts/status_stats", h.Reconciliation.StatusStats)
				admin.GET("/audits", h.Audit.Index)
				admin.GET("/jobs/status", h.Job.Status)
			}
		}
	}

	return router
}

func scheduleJobs(scheduler *jobs.Scheduler, worker *jobs.Worker, svcs *services.Services, cfg *config.Config) error {
	// Expire contracts past their end date
	if err := scheduler.Register(reconcileJobName, cfg.ReconcileSchedule, func(ctx context.Context) error {
		_, err := svcs.Reconciliation.Run(ctx, models.ReconcileTriggerScheduled)
		return err
	}); err != nil {
		return err
	}

	// Catch up on anything that expired while the service was down
	if cfg.ReconcileOnStartup {
		worker.EnqueueAsync(func(ctx context.Context) error {
			logger.Info("[Job] Running startup reconciliation...")
			_, err := svcs.Reconciliation.Run(ctx, models.ReconcileTriggerStartup)
			return err
		})
	}

	logger.Info("Scheduled recurring jobs", "reconcile_schedule", cfg.ReconcileSchedule)
	return nil
}
