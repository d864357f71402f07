// Command setup prepares the record store: the worksheet for the sheets
// backend, or the database and its schema for the postgres backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/osse101/LaunchPass_Go/internal/config"
	"github.com/osse101/LaunchPass_Go/internal/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "setup",
		Short:         "Prepare the LaunchPass record store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sheetCmd())
	rootCmd.AddCommand(dbCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs a text logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadForTooling()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, logger.FormatText, cfg.ServiceName, cfg.Version, cfg.Environment))
	return cfg, nil
}
