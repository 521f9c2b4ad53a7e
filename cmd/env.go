package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/engine"
	"github.com/sells-group/suggest-cli/internal/model"
	"github.com/sells-group/suggest-cli/internal/store"
	"github.com/sells-group/suggest-cli/pkg/grid"
)

// env bundles the initialized subsystems a command needs.
type env struct {
	Store   store.Store
	Grid    grid.Client
	Metrics *model.MetricRegistry
	Engine  *engine.Engine
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "suggest.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initMetrics() (*model.MetricRegistry, error) {
	reg := model.DefaultMetrics()
	if cfg.Metrics.OverridesPath == "" {
		return reg, nil
	}
	return model.ApplyOverrides(reg, cfg.Metrics.OverridesPath)
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	metrics, err := initMetrics()
	if err != nil {
		st.Close()
		return nil, err
	}

	gc := grid.NewClient(cfg.Grid.BaseURL, cfg.Grid.APIKey, grid.WithRateLimit(cfg.Grid.RPS))

	return &env{
		Store:   st,
		Grid:    gc,
		Metrics: metrics,
		Engine:  engine.New(st, gc, metrics, engine.WithPolicy(cfg.Sanity)),
	}, nil
}
