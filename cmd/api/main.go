package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/movie-catalog/internal/api/http"
	"github.com/spec-kit/movie-catalog/internal/api/http/handlers"
	"github.com/spec-kit/movie-catalog/internal/auth"
	"github.com/spec-kit/movie-catalog/internal/config"
	"github.com/spec-kit/movie-catalog/internal/events"
	"github.com/spec-kit/movie-catalog/internal/observability"
	"github.com/spec-kit/movie-catalog/internal/persistence"
	"github.com/spec-kit/movie-catalog/internal/repository"
	"github.com/spec-kit/movie-catalog/internal/service"
	"github.com/spec-kit/movie-catalog/internal/swapi"
	"github.com/spec-kit/movie-catalog/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, redisErr := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	movieRepo := repository.NewMovieRepository(pg.Pool)
	userRepo := repository.NewUserRepository(pg.Pool)
	var statusRepo repository.SyncStatusRepository
	if redisErr != nil {
		logger.Warn("redis unavailable; sync status will not be recorded", zap.Error(redisErr))
	} else {
		statusRepo = repository.NewSyncStatusRepository(redis.Client, cfg.Sync.StatusKey)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartCatalogWorkers(
		service.NewNotificationService(dispatcher, logger, cfg.Notification),
		service.NewSyncStatusRecorder(dispatcher, statusRepo, logger),
	)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	movieService := service.NewMovieService(movieRepo, dispatcher, logger)
	syncService := service.NewSyncService(service.SyncDependencies{
		Source:     swapi.NewClient(cfg.Swapi, logger, metrics),
		MovieRepo:  movieRepo,
		StatusRepo: statusRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		TxTimeout:  cfg.Sync.TxTimeout(),
	})
	authMiddleware := auth.NewMiddleware(auth.NewGate(authService.TokenManager(), userRepo))

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	loginThrottle := httptransport.NewLoginThrottle(cfg.Auth.LoginRatePerMinute, 10*time.Minute)
	go loginThrottle.StartCleanup(time.Minute)
	defer loginThrottle.Stop()

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:           handlers.NewUsersHandler(authService),
		Movies:          handlers.NewMoviesHandler(movieService, syncService),
		AuthMiddleware:  authMiddleware,
		MetricsGatherer: registry,
		LoginThrottle:   loginThrottle,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
