package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"crudrouter/internal/adapters/driven/filestore"
	"crudrouter/internal/adapters/driven/mongostore"
	"crudrouter/internal/adapters/driven/sqlstore"
	"crudrouter/internal/config"

	"go.uber.org/zap"
)

// OpenBackends connects the backends the resources need. The returned func releases them.
func OpenBackends(ctx context.Context, cfg *config.Config, resources []config.Resource, logger *zap.Logger) (Backends, func(), error) {
	var backends Backends
	var closers []func()

	closeAll := func() {
		for _, c := range slices.Backward(closers) {
			c()
		}
	}

	fail := func(err error) (Backends, func(), error) {
		closeAll()
		return Backends{}, nil, err
	}

	uses := func(backend string) bool {
		return slices.ContainsFunc(resources, func(r config.Resource) bool { return r.Backend == backend })
	}

	if uses(config.BackendSQL) {
		if cfg.DatabaseURL == "" {
			return fail(errors.New("resources use the sql backend but DATABASE_URL is not set"))
		}

		pool, err := sqlstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pool.Close)

		backends.SQL = sqlstore.New(pool, logger.Named("sqlstore")).Constructor()
		logger.Info("sql backend connected")
	}

	if uses(config.BackendMongo) {
		if cfg.MongoURI == "" {
			return fail(errors.New("resources use the mongo backend but MONGO_URI is not set"))
		}

		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("failed to disconnect from mongo", zap.Error(err))
			}
		})

		backends.Mongo = mongostore.New(client.Database(cfg.MongoDatabase), logger.Named("mongostore")).Constructor()
		logger.Info("mongo backend connected", zap.String("database", cfg.MongoDatabase))
	}

	if uses(config.BackendFile) {
		store, err := filestore.Open(cfg.DataDir, logger.Named("filestore"))
		if err != nil {
			return fail(fmt.Errorf("failed to open file store: %w", err))
		}

		if cfg.Watch {
			if err := store.Watch(ctx); err != nil {
				logger.Warn("data directory will not be watched", zap.Error(err))
			}
		}

		backends.File = store.Constructor()
		logger.Info("file backend opened", zap.String("dir", cfg.DataDir), zap.Strings("collections", store.Collections()))
	}

	return backends, closeAll, nil
}
