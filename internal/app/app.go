// Package app wires storage, the AI collaborator and the task board from
// configuration. Both the HTTP server and the CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskwise/internal/config"
	"github.com/fastygo/taskwise/internal/infrastructure/boltdb"
	"github.com/fastygo/taskwise/internal/infrastructure/gemini"
	"github.com/fastygo/taskwise/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskwise/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskwise/internal/infrastructure/redis"
	"github.com/fastygo/taskwise/internal/services"
	"github.com/fastygo/taskwise/internal/services/lifecycle"
	"github.com/fastygo/taskwise/repository"
	boltRepo "github.com/fastygo/taskwise/repository/bolt"
	"github.com/fastygo/taskwise/repository/postgres"
	redisRepo "github.com/fastygo/taskwise/repository/redis"
	"github.com/fastygo/taskwise/usecase"
	taskUC "github.com/fastygo/taskwise/usecase/task"
)

// App holds the wired components. Shutdown hooks are registered on Manager
// in dependency order.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Manager     *lifecycle.Manager
	Store       repository.TaskStore
	Credentials repository.CredentialStore
	Suggester   usecase.Suggester
	Board       *taskUC.UseCase
	Checks      []monitor.Check
}

// Build opens storage, loads the board and returns the wired application.
// A load failure is logged and the board starts empty.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, manager *lifecycle.Manager) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Manager: manager}

	db, err := boltdb.Open(cfg.Storage.BoltPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	manager.Register("boltdb", func(context.Context) error { return db.Close() })

	a.Credentials = boltRepo.NewCredentialStore(db, cfg.AI.APIKey)
	a.Checks = append(a.Checks, monitor.Check{
		Name: "ai_credential",
		Probe: func(ctx context.Context) error {
			_, err := a.Credentials.APIKey(ctx)
			return err
		},
	})

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres connection: %w", err)
		}
		manager.Register("postgres", lifecycle.Closer(pool.Close))
		a.Store = postgres.NewTaskStore(pool)
	default:
		a.Store = boltRepo.NewTaskStore(db)
	}
	a.Checks = append(a.Checks, monitor.Check{
		Name:     "store",
		Required: true,
		Probe:    a.Store.Ping,
	})

	a.Suggester = a.buildSuggester(ctx)

	a.Board = taskUC.New(a.Store, a.Suggester, logger.Named("board"))
	manager.Register("board", lifecycle.Closer(a.Board.Close))
	_, _ = a.Board.Load(ctx)

	return a, nil
}

func (a *App) buildSuggester(ctx context.Context) usecase.Suggester {
	cfg := a.Config
	client := gemini.New(gemini.Config{
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Timeout:     cfg.AI.RequestTimeout,
		Temperature: cfg.AI.Temperature,
	}, a.Credentials, nil, a.Logger.Named("gemini"))

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
	switch {
	case errors.Is(err, redisInfra.ErrDisabled):
		return client
	case err != nil:
		a.Logger.Warn("suggestion cache unavailable", zap.Error(err))
		return client
	}
	a.Manager.Register("redis", func(context.Context) error { return redisClient.Close() })
	a.Checks = append(a.Checks, monitor.Check{
		Name: "redis",
		Probe: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	return services.NewCachedSuggester(client, redisRepo.NewSuggestionCache(redisClient, cfg.Redis.CacheTTL), cfg.Redis.CacheTTL, a.Logger.Named("cache"))
}

// Shutdown runs the registered hooks.
func (a *App) Shutdown() error {
	return a.Manager.Shutdown(context.Background())
}
