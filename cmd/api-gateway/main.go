package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fitdesk/trainer-api/api/swagger"
	"github.com/fitdesk/trainer-api/internal/handler"
	"github.com/fitdesk/trainer-api/internal/middleware"
	"github.com/fitdesk/trainer-api/internal/repository"
	"github.com/fitdesk/trainer-api/internal/service"
	redisCache "github.com/fitdesk/trainer-api/pkg/cache"
	"github.com/fitdesk/trainer-api/pkg/config"
	"github.com/fitdesk/trainer-api/pkg/database"
	"github.com/fitdesk/trainer-api/pkg/jobs"
	"github.com/fitdesk/trainer-api/pkg/logger"
	corsmiddleware "github.com/fitdesk/trainer-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fitdesk/trainer-api/pkg/middleware/requestid"
	"github.com/fitdesk/trainer-api/pkg/storage"
)

// @title FitDesk Trainer API
// @version 1.0.0
// @description Schedule optimization service for fitness trainers
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	trainerRepo := repository.NewTrainerRepository(db)
	prefRepo := repository.NewTrainerPreferenceRepository(db)
	requestRepo := repository.NewBookingRequestRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := redisCache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	authSvc := service.NewAuthService(trainerRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	prefSvc := service.NewTrainerPreferenceService(trainerRepo, prefRepo, validate, logr).WithCache(cacheSvc)
	requestSvc := service.NewBookingRequestService(trainerRepo, requestRepo, validate, logr)
	optimizerSvc := service.NewScheduleOptimizerService(trainerRepo, prefRepo, requestRepo, bookingRepo, db, validate, logr, metricsSvc, service.ScheduleOptimizerConfig{
		ProposalTTL:        cfg.Scheduler.ProposalTTL,
		PlanningWindowDays: cfg.Scheduler.PlanningWindowDays,
		SlotUnitMinutes:    cfg.Scheduler.SlotUnitMinutes,
		TypeWeights:        cfg.Scheduler.TypeWeights,
		LocationWeights:    cfg.Scheduler.LocationWeights,
	})

	var exportSvc *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		localStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignSecret, cfg.Exports.ResultTTL)
		exportSvc = service.NewExportService(bookingRepo, requestRepo, localStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.ResultTTL,
		}, logr, nil, nil)
		exportQueue = jobs.NewQueue("exports", exportSvc.Handle, jobs.QueueConfig{
			Workers: cfg.Exports.Workers,
			Logger:  logr,
		})
		exportQueue.Start(context.Background())
		defer exportQueue.Stop()
		exportSvc.AttachQueue(exportQueue)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	prefHandler := handler.NewTrainerPreferenceHandler(prefSvc)
	requestHandler := handler.NewBookingRequestHandler(requestSvc)
	optimizerHandler := handler.NewScheduleOptimizerHandler(optimizerSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/metrics/summary", metricsHandler.Snapshot)

	protected.POST("/booking-requests", requestHandler.Create)
	protected.GET("/booking-requests", requestHandler.List)
	protected.GET("/booking-requests/:id", requestHandler.Get)
	protected.DELETE("/booking-requests/:id", requestHandler.Cancel)

	protected.GET("/trainers/:id/preferences", prefHandler.Get)
	protected.PUT("/trainers/:id/preferences", prefHandler.Upsert)
	protected.DELETE("/trainers/:id/preferences", prefHandler.Reset)

	if cfg.Scheduler.Enabled {
		protected.POST("/scheduler/optimize", optimizerHandler.Optimize)
		protected.GET("/scheduler/proposals/:id", optimizerHandler.GetProposal)
		protected.POST("/scheduler/apply", optimizerHandler.Apply)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		protected.POST("/exports", exportHandler.Create)
		protected.GET("/exports/:id", exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
