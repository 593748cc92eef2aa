package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/laboserve/laboserve-api/api/swagger"
	"github.com/laboserve/laboserve-api/internal/handler"
	"github.com/laboserve/laboserve-api/internal/middleware"
	"github.com/laboserve/laboserve-api/internal/models"
	"github.com/laboserve/laboserve-api/internal/repository"
	"github.com/laboserve/laboserve-api/internal/service"
	"github.com/laboserve/laboserve-api/pkg/cache"
	"github.com/laboserve/laboserve-api/pkg/config"
	"github.com/laboserve/laboserve-api/pkg/database"
	"github.com/laboserve/laboserve-api/pkg/jobs"
	"github.com/laboserve/laboserve-api/pkg/logger"
	corsmiddleware "github.com/laboserve/laboserve-api/pkg/middleware/cors"
	reqidmiddleware "github.com/laboserve/laboserve-api/pkg/middleware/requestid"
	"github.com/laboserve/laboserve-api/pkg/storage"
)

// @title LaboServe API
// @version 1.0.0
// @description University laboratory reservation portal
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Storage.UploadsDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init uploads dir", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	labRepo := repository.NewLabRepository(db)
	facultyRepo := repository.NewFacultyScheduleRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	tokenRepo := repository.NewDeviceTokenRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Cross-cutting services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Schedule.CacheTTL, logr, cfg.Schedule.CacheEnabled && redisClient != nil)

	// Notification queue. The worker is the only consumer; delivery goes
	// through the configured dispatcher.
	notificationWorker := service.NewNotificationWorker(service.NewLogDispatcher(logr), logr)
	notificationQueue := jobs.NewQueue("notifications", notificationWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerConcurrency,
		MaxRetries: cfg.Notifications.WorkerRetries,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationQueue.Start(ctx)
	defer notificationQueue.Stop()

	// Domain services.
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:         cfg.JWT.Secret,
		Expiry:         cfg.JWT.Expiration,
		Issuer:         cfg.JWT.Issuer,
		AllowedDomains: cfg.Booking.AllowedEmailDomains,
	})
	availabilitySvc := service.NewAvailabilityService(reservationRepo, cfg.Booking.DailyCapacity, logr)
	notificationSvc := service.NewNotificationService(tokenRepo, notificationQueue, nil, logr, cfg.Notifications.Enabled)
	scheduleSvc := service.NewScheduleService(facultyRepo, reservationRepo, overrideRepo, labRepo, cacheSvc, logr)
	reservationSvc := service.NewReservationService(reservationRepo, labRepo, availabilitySvc, notificationSvc, userRepo, uploads, cacheSvc, nil, logr, cfg.Storage.MaxFileSizeBytes)
	overrideSvc := service.NewOverrideService(overrideRepo, labRepo, userRepo, cacheSvc, nil, logr)
	importSvc := service.NewImportService(facultyRepo, labRepo, userRepo, cacheSvc, logr)
	labSvc := service.NewLabService(labRepo, availabilitySvc, cacheSvc, logr)
	exportSvc := service.NewExportService(reservationRepo, logr)
	auditSvc := service.NewAuditService(userRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc, availabilitySvc)
	overrideHandler := handler.NewOverrideHandler(overrideSvc)
	importHandler := handler.NewImportHandler(importSvc)
	labHandler := handler.NewLabHandler(labSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, reservationSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	fileHandler := handler.NewFileHandler(reservationSvc, signer, uploads)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface. Schedule views stay anonymous-readable.
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/schedules/week", scheduleHandler.Week)
	api.GET("/schedules/day", scheduleHandler.Day)
	api.GET("/schedules/grid", scheduleHandler.Grid)
	api.GET("/labs", labHandler.List)
	api.GET("/labs/:id", labHandler.GetByID)
	api.GET("/reservations/booked-slots", reservationHandler.BookedSlots)
	api.GET("/files/download", fileHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/reservations", reservationHandler.Create)
	authed.GET("/reservations/mine", reservationHandler.Mine)
	authed.GET("/reservations/:id", reservationHandler.GetByID)
	authed.GET("/reservations/:id/file-url", fileHandler.SignURL)
	authed.POST("/notifications/tokens", notificationHandler.RegisterToken)
	authed.DELETE("/notifications/tokens", notificationHandler.UnregisterToken)
	authed.POST("/notifications/relay/new-booking", notificationHandler.NotifyAdminNewBooking)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/reservations", reservationHandler.History)
	admin.GET("/reservations/pending", reservationHandler.Pending)
	admin.PATCH("/reservations/:id/approve", reservationHandler.Approve)
	admin.PATCH("/reservations/:id/reject", reservationHandler.Reject)
	admin.GET("/reservations/export", exportHandler.History)
	admin.POST("/overrides", overrideHandler.Create)
	admin.GET("/overrides", overrideHandler.List)
	admin.DELETE("/overrides/:id", overrideHandler.Delete)
	admin.POST("/schedules/import", importHandler.Import)
	admin.PATCH("/labs/:id/status", labHandler.UpdateStatus)
	admin.POST("/notifications/relay/booking-status", notificationHandler.NotifyUserBookingStatus)
	admin.GET("/audit-logs", auditHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
