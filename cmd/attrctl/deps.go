// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/yumeengine/attrcore/internal/store"
)

// Deps contains injectable dependencies for store-backed commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// RepositoryFactory opens the attribute repository described by cfg.
	// Default: openRepository
	RepositoryFactory func(ctx context.Context, cfg *Config, logger *slog.Logger) (store.Repository, func(), error)

	// MigratorFactory opens a migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)
}

// Migrator wraps the methods used by the migrate command from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.RepositoryFactory == nil {
		out.RepositoryFactory = openRepository
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	return &out
}

// openRepository connects to Postgres and, when redis_addr is set, puts
// a Redis read-through cache in front of it.
func openRepository(ctx context.Context, cfg *Config, logger *slog.Logger) (store.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errDatabaseRequired()
	}
	pool, err := store.Connect(ctx, cfg.DatabaseURL, store.ConnectOptions{})
	if err != nil {
		return nil, nil, err
	}
	var repo store.Repository = store.NewPostgresRepository(pool)
	closers := []func(){pool.Close}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { _ = client.Close() })
		cache := store.NewRedisCache(store.RedisOptions{Client: client, TTL: cfg.CacheTTL})
		repo = store.NewCachedRepository(repo, cache, logger)
		logger.DebugContext(ctx, "attribute cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return repo, cleanup, nil
}
