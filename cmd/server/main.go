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

	"github.com/eppp-prep/exam-service/internal/cache"
	"github.com/eppp-prep/exam-service/internal/config"
	"github.com/eppp-prep/exam-service/internal/handlers"
	"github.com/eppp-prep/exam-service/internal/models"
	"github.com/eppp-prep/exam-service/internal/repositories/postgres"
	"github.com/eppp-prep/exam-service/internal/services"
	"github.com/eppp-prep/exam-service/internal/utils"
	"github.com/eppp-prep/exam-service/internal/validator"
	"github.com/eppp-prep/exam-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Question{},
		&models.ExamSession{},
		&models.AnswerRecord{},
		&models.ActivityEvent{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)

	var sessionCache cache.SessionCache = cache.NoopSessionCache{}
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, resume lookups fall back to the database", "error", err)
		} else {
			sessionCache = cache.NewRedisSessionCache(redisClient, slogger)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	clock := services.SystemClock{}
	sampler := services.NewStratifiedSampler(repo, services.NewTimeRand(), slogger)

	sessionService := services.NewSessionService(repo, sampler, sessionCache, publisher, clock, cfg.Exam, slogger, v)
	reportService := services.NewReportService(repo, cfg.Report, slogger)
	questionService := services.NewQuestionService(repo, publisher, clock, slogger, v)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(sessionService, reportService, questionService, repo, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting exam service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	if err := sessionCache.Close(); err != nil {
		logger.Warn("Failed to close session cache", "error", err)
	}
	if err := repo.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}
