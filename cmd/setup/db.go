package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/osse101/LaunchPass_Go/internal/bootstrap"
	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/database"
)

const dbCommandTimeout = 2 * time.Minute

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the postgres record store",
	}
	cmd.AddCommand(dbCreateCmd())
	cmd.AddCommand(dbMigrateCmd())
	cmd.AddCommand(dbStatusCmd())
	return cmd
}

func dbCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create DB_NAME if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), dbCommandTimeout)
			defer cancel()

			created, err := createDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created database %s\n", cfg.DBName)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Database %s already exists\n", cfg.DBName)
			}
			return nil
		},
	}
}

func dbMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), dbCommandTimeout)
			defer cancel()

			pool, err := bootstrap.OpenPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			version, err := database.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		},
	}
}

func dbStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), dbCommandTimeout)
			defer cancel()

			pool, err := bootstrap.OpenPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			st, err := database.Status(ctx, pool)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version: %d (%d applied)\n", st.Version, st.Applied)
			if len(st.Pending) == 0 {
				fmt.Fprintln(out, "Up to date")
				return nil
			}
			fmt.Fprintf(out, "Pending: %v\n", st.Pending)
			return nil
		},
	}
}

// createDatabase connects to the maintenance database and creates DB_NAME when missing
func createDatabase(ctx context.Context, cfg *config.Config) (bool, error) {
	maintenance := *cfg
	maintenance.DBName = "postgres"

	conn, err := pgx.Connect(ctx, maintenance.GetDBConnString())
	if err != nil {
		return false, fmt.Errorf("unable to connect to postgres database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return false, fmt.Errorf("failed to create database: %w", err)
	}
	return true, nil
}
