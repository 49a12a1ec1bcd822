package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/synapse-edu/scholarflow-api/api/swagger"
	"github.com/synapse-edu/scholarflow-api/internal/extractor"
	"github.com/synapse-edu/scholarflow-api/internal/handler"
	"github.com/synapse-edu/scholarflow-api/internal/middleware"
	"github.com/synapse-edu/scholarflow-api/internal/notifier"
	"github.com/synapse-edu/scholarflow-api/internal/repository"
	"github.com/synapse-edu/scholarflow-api/internal/service"
	"github.com/synapse-edu/scholarflow-api/pkg/cache"
	"github.com/synapse-edu/scholarflow-api/pkg/config"
	"github.com/synapse-edu/scholarflow-api/pkg/database"
	"github.com/synapse-edu/scholarflow-api/pkg/jobs"
	"github.com/synapse-edu/scholarflow-api/pkg/logger"
	corsmiddleware "github.com/synapse-edu/scholarflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/synapse-edu/scholarflow-api/pkg/middleware/requestid"
	"github.com/synapse-edu/scholarflow-api/pkg/storage"
)

// @title ScholarFlow API
// @version 0.1.0
// @description Medical leave document intake and substitute matching for schools
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without roster cache", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	leaveRepo := repository.NewLeaveRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)

	validate := validator.New()
	metrics := service.NewMetricsService()

	var matcher *service.SubstituteService
	if cfg.Matching.Enabled {
		matcher = service.NewSubstituteService(professorRepo, logr)
	}

	sender := notifier.NewWhatsAppSender(cfg.Notifications, logr)
	var notificationQueue *jobs.Queue
	if cfg.Notifications.Enabled {
		notificationQueue = jobs.NewQueue("substitute-notifications", notificationHandler(sender, logr), jobs.QueueConfig{
			Workers:    cfg.Notifications.WorkerConcurrency,
			MaxRetries: cfg.Notifications.WorkerRetries,
			Logger:     logr,
		})
	}

	geminiClient := extractor.New(cfg.Extractor, logr)

	var exportService *service.ExportService
	if cfg.Exports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewExportService(leaveRepo, exportStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
	}

	leaveService := service.NewLeaveService(
		leaveRepo, organizationRepo, geminiClient,
		serviceMatcher(matcher), serviceQueue(notificationQueue),
		validate, logr, metrics, cfg.Extractor.MaxFileSize,
	)
	professorService := service.NewProfessorService(professorRepo, cacheRepo, cfg.Matching.PoolCacheTTL, validate, logr, metrics)
	organizationService := service.NewOrganizationService(organizationRepo, validate, logr)

	licenseHandler := handler.NewLicenseHandler(leaveService, exportService)
	professorHandler := handler.NewProfessorHandler(professorService)
	organizationHandler := handler.NewOrganizationHandler(organizationService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/organizations", organizationHandler.List)
		api.POST("/organizations", organizationHandler.Create)
		api.GET("/organizations/:orgId", organizationHandler.Get)

		org := api.Group("/organizations/:orgId")
		{
			org.POST("/licenses/extract", licenseHandler.Extract)
			org.POST("/licenses", licenseHandler.Create)
			org.GET("/licenses", licenseHandler.List)
			org.GET("/licenses/export", licenseHandler.Export)
			org.GET("/licenses/:id", licenseHandler.Get)
			org.PUT("/licenses/:id", licenseHandler.Update)

			org.GET("/professors", professorHandler.List)
			org.POST("/professors", professorHandler.Create)
			org.GET("/professors/:id", professorHandler.Get)
			org.PUT("/professors/:id", professorHandler.Update)
			org.PUT("/professors/:id/availability", professorHandler.SetAvailability)
		}

		api.GET("/export/:token", licenseHandler.Download)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if notificationQueue != nil {
		notificationQueue.Start(ctx)
		defer notificationQueue.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

// notificationHandler decodes queued notification payloads and hands them to
// the sender.
func notificationHandler(sender notifier.Sender, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(service.NotificationPayload)
		if !ok {
			// Jobs replayed from external producers arrive as raw JSON.
			raw, err := json.Marshal(job.Payload)
			if err != nil {
				return fmt.Errorf("unexpected payload for job %s: %w", job.ID, err)
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode payload for job %s: %w", job.ID, err)
			}
		}
		if err := sender.Send(ctx, payload.Phone, payload.Message); err != nil {
			return err
		}
		logr.Sugar().Infow("substitute notification sent", "job_id", job.ID, "phone", payload.Phone)
		return nil
	}
}

// serviceMatcher adapts a possibly-nil concrete matcher to the interface the
// leave service accepts; a typed nil would defeat its nil check.
func serviceMatcher(matcher *service.SubstituteService) service.Matcher {
	if matcher == nil {
		return nil
	}
	return matcher
}

func serviceQueue(queue *jobs.Queue) service.NotificationQueue {
	if queue == nil {
		return nil
	}
	return queue
}
