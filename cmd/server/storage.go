package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellybox/bellybox-api/internal/core/ports"
	mongostore "github.com/bellybox/bellybox-api/internal/infrastructure/db/mongo"
	"github.com/bellybox/bellybox-api/internal/infrastructure/db/sqlstore"
	"github.com/bellybox/bellybox-api/internal/pkg/config"
)

// storage is the credential store and audit sink selected by STORE_DRIVER.
type storage struct {
	name  string
	users ports.UserRepository
	audit ports.AuditRepository
	ping  func(ctx context.Context) error
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	case config.StorePostgres, config.StoreSQLite:
		return openSQL(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	store, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	users := mongostore.NewUserRepository(store.Database())
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	return &storage{
		name:  "mongodb",
		users: users,
		audit: mongostore.NewAuditRepository(store.Database()),
		ping:  store.Ping,
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(ctx); err != nil {
				log.Error().Err(err).Msg("mongodb disconnect failed")
			}
		},
	}, nil
}

func openSQL(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	driver := sqlstore.DriverPostgres
	if cfg.StoreDriver == config.StoreSQLite {
		driver = sqlstore.DriverSQLite
	}

	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:       driver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("sql store connected")

	return &storage{
		name:  driver,
		users: sqlstore.NewUserRepository(store.DB()),
		audit: sqlstore.NewAuditRepository(store.DB()),
		ping:  store.Ping,
		close: func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("sql store close failed")
			}
		},
	}, nil
}
