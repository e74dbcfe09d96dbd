package app

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/sole_searcher/internal/config"
	"github.com/Skotchmaster/sole_searcher/internal/db"
	"github.com/Skotchmaster/sole_searcher/internal/storage"
)

// OpenStore builds the storage backend named by cfg.StorageDriver. The
// returned close func releases its connections.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case "", config.DriverMemory:
		return storage.NewMemory(), noop, nil

	case config.DriverRedis:
		client, err := storage.ConnectRedis(ctx, storage.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, noop, err
		}
		return storage.NewRedis(client), client.Close, nil

	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.DatabaseURL
		if cfg.StorageDriver == config.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		gdb, err := db.Open(ctx, cfg.StorageDriver, dsn)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() error { return db.Close(gdb) }
		store, err := storage.NewGorm(ctx, gdb)
		if err != nil {
			_ = closeDB()
			return nil, noop, err
		}
		return store, closeDB, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
