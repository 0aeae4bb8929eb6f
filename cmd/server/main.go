package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/proposalpilot/backend/internal/ai"
	"github.com/proposalpilot/backend/internal/config"
	"github.com/proposalpilot/backend/internal/db"
	httpHandlers "github.com/proposalpilot/backend/internal/http/handlers"
	httpRouter "github.com/proposalpilot/backend/internal/http/router"
	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/repository"
	"github.com/proposalpilot/backend/internal/service"
	"github.com/proposalpilot/backend/internal/storage"
	"github.com/proposalpilot/backend/internal/templates"
	"github.com/proposalpilot/backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug", true)
	} else {
		logger.Init("info", false)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	logoStorage, err := storage.NewLogoStorage(cfg.LogoStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	registry := templates.NewRegistry()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	proposalService := service.NewProposalService(proposalRepo)
	portalService := service.NewPortalService(proposalRepo, userRepo, hub)
	draftService := service.NewDraftService(registry, ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel))

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userRepo)
	logoHandler := httpHandlers.NewLogoHandler(userRepo, logoStorage)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService, draftService)
	portalHandler := httpHandlers.NewPortalHandler(portalService)
	templateHandler := httpHandlers.NewTemplateHandler(registry)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		logoHandler,
		proposalHandler,
		portalHandler,
		templateHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
