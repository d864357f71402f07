// Package database owns the postgres connection pool and the creators schema.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/osse101/LaunchPass_Go/internal/database/schema"
)

// PoolOptions sizes and ages pooled connections. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns    int
	MaxIdle     time.Duration
	MaxLifetime time.Duration
}

func (o PoolOptions) apply(pc *pgxpool.Config) {
	conns := o.MaxConns
	if conns > math.MaxInt32 {
		conns = math.MaxInt32
	}
	if conns < minPoolConns {
		conns = minPoolConns
	}
	pc.MaxConns = int32(conns)
	pc.MinConns = minPoolConns
	pc.HealthCheckPeriod = defaultHealthInterval
	if o.MaxIdle > 0 {
		pc.MaxConnIdleTime = o.MaxIdle
	}
	if o.MaxLifetime > 0 {
		pc.MaxConnLifetime = o.MaxLifetime
	}
}

// NewPool connects to postgres and verifies the server answers before returning
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgBadDSN, err)
	}
	opts.apply(pc)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgPoolCreate, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgPoolPing, err)
	}

	slog.Default().Info(LogMsgPoolReady,
		"host", pc.ConnConfig.Host,
		"database", pc.ConnConfig.Database,
		"max_conns", pc.MaxConns)
	return pool, nil
}

// withProvider hands fn a goose provider over the embedded creators migrations
func withProvider(pool *pgxpool.Pool, fn func(*goose.Provider) error) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, schema.Migrations)
	if err != nil {
		return err
	}
	return fn(provider)
}

// Migrate applies every pending migration and returns the resulting schema version
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var version int64
	err := withProvider(pool, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return err
		}
		for _, r := range results {
			slog.Default().Info(LogMsgMigrationApplied,
				"version", r.Source.Version,
				"file", r.Source.Path,
				"duration", r.Duration)
		}
		version, err = p.GetDBVersion(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgMigrate, err)
	}
	return version, nil
}

// SchemaStatus summarises the migrations known to the binary
type SchemaStatus struct {
	Version int64
	Applied int
	Pending []int64
}

// Status reports the current schema version and any migrations not yet applied
func Status(ctx context.Context, pool *pgxpool.Pool) (*SchemaStatus, error) {
	st := &SchemaStatus{}
	err := withProvider(pool, func(p *goose.Provider) error {
		all, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, m := range all {
			if m.State == goose.StateApplied {
				st.Applied++
				continue
			}
			st.Pending = append(st.Pending, m.Source.Version)
		}
		st.Version, err = p.GetDBVersion(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSchemaStatus, err)
	}
	return st, nil
}
