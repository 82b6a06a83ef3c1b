// Package app assembles the task repository and handler from configuration.
// Both the Lambda and the HTTP entry points start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"serverless-todo/backend/internal/cache"
	"serverless-todo/backend/internal/config"
	"serverless-todo/backend/internal/database"
	"serverless-todo/backend/internal/handlers"
	"serverless-todo/backend/internal/repositories"
	"serverless-todo/backend/internal/schema"
	"serverless-todo/backend/internal/store/dynamo"
	"serverless-todo/backend/internal/store/memory"
	"serverless-todo/backend/internal/store/sqlstore"

	"gorm.io/gorm/logger"
)

type HealthCheck func(ctx context.Context) error

type App struct {
	Config  *config.Config
	Handler *handlers.TodoHandler
	Repo    *repositories.TaskRepository

	// Checks and CacheMetrics feed the HTTP server's health and metrics
	// endpoints.
	Checks       map[string]HealthCheck
	CacheMetrics *cache.CacheMetrics

	logger  *slog.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	a := &App{
		Config: cfg,
		Checks: make(map[string]HealthCheck),
		logger: log,
	}

	store, err := a.buildStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(&cache.CacheConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisCache.Health(ctx); err != nil {
			log.Warn("redis unavailable at startup, list cache will fall through", "addr", cfg.GetRedisAddr(), "error", err)
		}

		cached := cache.NewTaskStore(store, redisCache, cfg.Redis.CacheTTL)
		store = cached
		a.CacheMetrics = cached.Metrics()
		a.Checks["redis"] = redisCache.Health
		a.closers = append(a.closers, redisCache.Close)
	}

	validator, err := schema.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load request schemas: %w", err)
	}

	a.Repo = repositories.NewTaskRepository(store,
		repositories.WithClearConcurrency(cfg.Repository.ClearConcurrency))
	a.Handler = handlers.NewTodoHandler(a.Repo, validator, log)

	log.Info("application assembled",
		"store", cfg.Store.Driver,
		"cache", cfg.Redis.Enabled,
		"clear_concurrency", cfg.Repository.ClearConcurrency)

	return a, nil
}

func (a *App) buildStore(ctx context.Context) (repositories.Store, error) {
	cfg := a.Config

	switch cfg.Store.Driver {
	case config.StoreDynamoDB:
		awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		var opts []dynamo.Option
		if cfg.DynamoDB.Endpoint != "" {
			opts = append(opts, dynamo.WithEndpoint(cfg.DynamoDB.Endpoint))
		}
		return dynamo.New(&awsCfg, cfg.Store.Table, opts...), nil

	case config.StorePostgres, config.StoreSQLite:
		poolCfg := &database.PoolConfig{
			Driver:          database.DriverPostgres,
			DSN:             cfg.GetDatabaseDSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			LogLevel:        logger.Warn,
		}
		if cfg.Store.Driver == config.StoreSQLite {
			poolCfg.Driver = database.DriverSQLite
		}

		db, err := database.NewDatabasePool(poolCfg)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", cfg.Store.Driver, err)
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })

		store := sqlstore.New(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate tasks table: %w", err)
		}

		a.Checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return store, nil

	case config.StoreMemory:
		a.logger.Warn("using in-memory task store, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
