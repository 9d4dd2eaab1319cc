package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coachkit/roster-system/config"
	"github.com/coachkit/roster-system/db"
	"github.com/coachkit/roster-system/handlers"
	"github.com/coachkit/roster-system/notify"
	"github.com/coachkit/roster-system/repositories"
	"github.com/coachkit/roster-system/routes"
	"github.com/coachkit/roster-system/services"
	"github.com/coachkit/roster-system/storage"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := notify.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	cardRepo := repositories.NewPostgresCardRepository(dbConn)
	characteristicRepo := repositories.NewPostgresCharacteristicRepository(dbConn)
	questionnaireRepo := repositories.NewPostgresQuestionnaireRepository(dbConn)
	referenceRepo := repositories.NewPostgresReferenceRepository(dbConn)
	exerciseRepo := repositories.NewPostgresExerciseRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	referenceService := services.NewReferenceService(referenceRepo)
	playerService := services.NewPlayerService(
		playerRepo,
		cardRepo,
		characteristicRepo,
		questionnaireRepo,
		referenceRepo,
		teamRepo,
		authService,
		cloudflareUploader,
		wsHub,
		logger,
	)
	exerciseService := services.NewExerciseService(exerciseRepo, referenceRepo, authService)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Player:    handlers.NewPlayerHandler(playerService),
		Reference: handlers.NewReferenceHandler(referenceService),
		Exercise:  handlers.NewExerciseHandler(exerciseService),
		WebSocket: handlers.NewWebSocketHandler(wsHub),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := routes.InitRoutes([]byte(cfg.JWTSecretKey), h)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
