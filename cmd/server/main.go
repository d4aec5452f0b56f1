package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigwork-backend/internal/config"
	"github.com/ignatzorin/gigwork-backend/internal/db"
	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/goroutine"
	httpRouter "github.com/ignatzorin/gigwork-backend/internal/http/router"
	"github.com/ignatzorin/gigwork-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/gigwork-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/gigwork-backend/internal/infrastructure/predictor"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/handler"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
	"github.com/ignatzorin/gigwork-backend/internal/service"
	"github.com/ignatzorin/gigwork-backend/internal/storage"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/analytics"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
	"github.com/ignatzorin/gigwork-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка загрузки конфигурации")
	}

	logLevel := "info"
	if cfg.IsDevelopment() {
		logLevel = "debug"
	}
	logger.Init(logLevel, cfg.Env)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка миграций")
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("main: применены миграции")
	}

	// Репозитории.
	workerRepo := persistence.NewWorkerRepository(dbConn)
	taskRepo := persistence.NewTaskRepository(dbConn)
	transactor := persistence.NewTransactor(dbConn)

	// Кэш рекомендаций: Redis, если задан адрес, иначе память процесса.
	var (
		matchCache  repository.MatchCache
		cacheStatus handler.CacheStatus
	)
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, logger.Log)
		defer func() { _ = redisCache.Close() }()
		matchCache = redisCache
		cacheStatus = redisCache
	} else {
		memCache := cache.NewMemory()
		defer memCache.Close()
		matchCache = memCache
	}

	var hoursPredictor repository.HoursPredictor = predictor.NewLocal()
	if cfg.PredictorURL != "" {
		hoursPredictor = predictor.NewHTTPClient(cfg.PredictorURL, cfg.PredictorTimeout)
		logger.Log.WithField("url", cfg.PredictorURL).Info("main: используется внешний сервис прогноза часов")
	}

	engine := matching.NewEngine(cfg.MatchTimezone)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить файловое хранилище")
	}

	// Сценарии.
	predictUC := worker.NewPredictHoursUseCase(workerRepo, hoursPredictor)
	getWorkerUC := worker.NewGetWorkerUseCase(workerRepo)
	createTaskUC := task.NewCreateTaskUseCase(taskRepo, matchCache)

	workerHandler := handler.NewWorkerHandler(
		worker.NewRegisterWorkerUseCase(workerRepo, photoStorage),
		worker.NewLoginWorkerUseCase(workerRepo, tokenManager),
		getWorkerUC,
		worker.NewSessionUseCase(workerRepo, matchCache),
		predictUC,
		task.NewRecommendTasksUseCase(taskRepo, workerRepo, engine, matchCache, cfg.MatchCacheTTL),
		task.NewWorkerTasksUseCase(taskRepo),
		cfg.MaxUploadSizeMB<<20,
	)

	adminHandler := handler.NewAdminHandler(
		worker.NewAdminLoginUseCase(cfg.AdminUsername, cfg.AdminPassword, tokenManager),
		worker.NewListWorkersUseCase(workerRepo),
		getWorkerUC,
		worker.NewChangeStatusUseCase(workerRepo, matchCache, hub),
		predictUC,
		analytics.NewOverviewUseCase(workerRepo, taskRepo, predictUC),
		task.NewSeedTasksUseCase(createTaskUC),
	)

	taskHandler := handler.NewTaskHandler(handler.TaskUseCases{
		Create:     createTaskUC,
		Get:        task.NewGetTaskUseCase(taskRepo),
		List:       task.NewListTasksUseCase(taskRepo),
		Publish:    task.NewPublishTaskUseCase(taskRepo, matchCache),
		Cancel:     task.NewCancelTaskUseCase(taskRepo, matchCache),
		Accept:     task.NewAcceptTaskUseCase(taskRepo, workerRepo, matchCache, hub),
		Assign:     task.NewAssignTaskUseCase(taskRepo, workerRepo, engine, matchCache, hub),
		Start:      task.NewStartTaskUseCase(taskRepo),
		Complete:   task.NewCompleteTaskUseCase(taskRepo, workerRepo, transactor, matchCache, hub),
		Rate:       task.NewRateTaskUseCase(taskRepo, workerRepo, transactor, matchCache, hub),
		Candidates: task.NewCandidatesUseCase(taskRepo, workerRepo, engine),
	})

	// Роутер.
	router := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Worker: workerHandler,
		Admin:  adminHandler,
		Task:   taskHandler,
		Health: handler.NewHealthHandler(dbConn, cacheStatus),
		WS:     handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
