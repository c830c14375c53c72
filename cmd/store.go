package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

// openStore builds the configured Store backend.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case "postgres":
		poolCfg := &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolCfg)
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "dealflow.db"
		}
		return store.NewSQLite(dsn)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// effectiveBenchmarks resolves the benchmark config: industry defaults,
// then the config-file overlay, then the --benchmarks flag.
func effectiveBenchmarks() (benchmark.Config, error) {
	path := cfg.Benchmarks.File
	if benchmarksFile != "" {
		path = benchmarksFile
	}
	if path == "" {
		return benchmark.Defaults(), nil
	}
	return benchmark.LoadFile(path)
}
