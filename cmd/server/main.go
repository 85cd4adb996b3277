package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepkart/prepkart-api/internal/cache"
	"github.com/prepkart/prepkart-api/internal/config"
	"github.com/prepkart/prepkart-api/internal/handlers"
	"github.com/prepkart/prepkart-api/internal/jobs"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories/postgres"
	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
	"github.com/prepkart/prepkart-api/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	slogger := utils.NewSlog(cfg.Environment)
	logger := utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Exam{},
		&models.Question{},
		&models.Result{},
		&models.Order{},
		&models.Coupon{},
	); err != nil {
		logger.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	// Cache is optional: run without it rather than refuse to start.
	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, logger)
		defer redisClient.Close()
	}

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Event publisher init failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()
	payments := services.NewMidtransPayment(cfg.MidtransServerKey, cfg.MidtransProduction, logger)
	serviceManager := services.NewServiceManager(repo, cacheService, publisher, payments, logger, v)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, cfg.CronSecret, logger)
	handlerManager.SetupRoutes(router)

	if cfg.SweepSchedule != "" {
		sweeper := jobs.NewExpirySweeper(serviceManager.Order(), cfg.SweepSchedule, logger)
		if err := sweeper.Start(); err != nil {
			logger.Error("Expiry sweeper init failed", "error", err, "schedule", cfg.SweepSchedule)
			os.Exit(1)
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
