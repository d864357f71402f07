package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/database"
	"github.com/osse101/LaunchPass_Go/internal/database/postgres"
	"github.com/osse101/LaunchPass_Go/internal/repository"
	"github.com/osse101/LaunchPass_Go/internal/sheets"
)

// OpenStore creates the record store selected by STORE_BACKEND.
// The returned close function releases its resources and is never nil.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Creator, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pool, err := OpenPool(ctx, cfg)
		if err != nil {
			return nil, func() {}, fmt.Errorf("%s: %w", ErrMsgOpenStore, err)
		}
		applied, err := database.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("%s: %w", ErrMsgMigrate, err)
		}
		slog.Info(LogMsgMigrationsApplied, "version", applied)
		slog.Info(LogMsgStoreReady, "backend", cfg.StoreBackend, "host", cfg.DBHost, "database", cfg.DBName)
		return postgres.NewCreatorRepository(pool, cfg.ExternalCallTimeout), pool.Close, nil

	default:
		store, err := sheets.NewStore(ctx, sheets.Config{
			CredentialsJSON: cfg.SheetsCredentialsJSON,
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			Worksheet:       cfg.SheetsWorksheet,
			Timeout:         cfg.ExternalCallTimeout,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("%s: %w", ErrMsgOpenStore, err)
		}
		slog.Info(LogMsgStoreReady, "backend", cfg.StoreBackend, "worksheet", cfg.SheetsWorksheet)
		return store, func() {}, nil
	}
}

// OpenPool connects to the postgres database named by the DB_* settings
func OpenPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return database.NewPool(ctx, cfg.GetDBConnString(), database.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MaxIdle:     cfg.DBMaxConnIdleTime,
		MaxLifetime: cfg.DBMaxConnLifetime,
	})
}
