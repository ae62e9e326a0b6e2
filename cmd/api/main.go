package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/anamaak-service/internal/api/http"
	"github.com/spec-kit/anamaak-service/internal/api/http/handlers"
	"github.com/spec-kit/anamaak-service/internal/auth"
	"github.com/spec-kit/anamaak-service/internal/config"
	"github.com/spec-kit/anamaak-service/internal/events"
	"github.com/spec-kit/anamaak-service/internal/observability"
	"github.com/spec-kit/anamaak-service/internal/persistence"
	"github.com/spec-kit/anamaak-service/internal/repository"
	"github.com/spec-kit/anamaak-service/internal/service"
	"github.com/spec-kit/anamaak-service/internal/upload"
	"github.com/spec-kit/anamaak-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	storage, err := upload.NewStorage(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	blacklistRepo := repository.NewTokenBlacklistRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	txManager := repository.NewTxManager(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:      userRepo,
		BlacklistRepo: blacklistRepo,
		StatsRepo:     statsRepo,
		Redis:         redis,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		HistoryRepo: historyRepo,
		UserRepo:    userRepo,
		StatsRepo:   statsRepo,
		TxManager:   txManager,
		Dispatcher:  dispatcher,
	})

	mailer := service.NewMailer(cfg.SMTP)
	notificationService := service.NewNotificationService(dispatcher, logger, mailer)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, authService)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// Multipart submissions carry the photo plus form fields.
		BodyLimit: int(cfg.Upload.MaxSizeBytes) + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Env, pg, redis)
	authHandler := handlers.NewAuthHandler(authService)
	reportsHandler := handlers.NewReportsHandler(reportService, storage)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Config:         cfg,
		Health:         healthHandler,
		Auth:           authHandler,
		Reports:        reportsHandler,
		AuthMiddleware: authMiddleware,
		UploadDir:      storage.BaseDir(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
