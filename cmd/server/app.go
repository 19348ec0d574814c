package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhub/taskhub-api/internal/cache"
	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/notify"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Redis connections. The cache and the notification channel use
	// separate clients so a slow queue never stalls cache reads.
	cacheClient *redis.Client
	queueClient *redis.Client

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	taskStore     store.TaskStore
	categoryStore store.CategoryStore

	// Service interfaces
	jwtService auth.JWTService
	hasher     *auth.BcryptHasher

	cacheGateway *cache.Gateway
	dispatcher   *notify.Dispatcher

	userService     *service.UserService
	taskService     *service.TaskService
	categoryService *service.CategoryService
}

// newApplication creates an application instance with all dependencies
// initialized. It accepts core dependencies (configuration, logger,
// database connection) that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewUserStore(db)
	app.taskStore = postgres.NewTaskStore(db)
	app.categoryStore = postgres.NewCategoryStore(db)

	app.cacheClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// The cache is optional infrastructure: when Redis is unreachable at
	// startup the API still serves every request from the database.
	cacheStore, err := cache.NewRedisStore(ctx, app.cacheClient)
	if err != nil {
		logger.Warn("Cache unavailable, serving without read caching", "error", err)
		app.cacheGateway = cache.NewGateway(nil, logger)
	} else {
		logger.Info("Cache connection established", "addr", cfg.Redis.Addr)
		app.cacheGateway = cache.NewGateway(cacheStore, logger)
	}

	app.queueClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	channel := notify.NewRedisChannel(app.queueClient, cfg.Queue.Queue)
	app.dispatcher = notify.NewDispatcher(channel, logger,
		notify.WithPublishTimeout(time.Duration(cfg.Queue.PublishTimeoutSeconds)*time.Second),
		notify.WithConnectAttempts(cfg.Queue.ConnectAttempts),
	)
	// Connection attempts run in the background; until they succeed the
	// dispatcher drops notifications, which is the degraded mode the API
	// is designed to survive.
	go app.dispatcher.Start(ctx)

	app.userService = service.NewUserService(
		app.userStore,
		app.jwtService,
		app.hasher,
		app.hasher,
		logger,
	)
	app.taskService = service.NewTaskService(
		app.taskStore,
		app.cacheGateway,
		app.dispatcher,
		logger,
	)
	app.categoryService = service.NewCategoryService(
		app.categoryStore,
		app.cacheGateway,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.dispatcher != nil {
		if err := app.dispatcher.Close(); err != nil {
			app.logger.Error("Error closing notification dispatcher", "error", err)
		}
	}

	if app.cacheClient != nil {
		if err := app.cacheClient.Close(); err != nil {
			app.logger.Error("Error closing cache connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
