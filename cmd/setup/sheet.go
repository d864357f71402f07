package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osse101/LaunchPass_Go/internal/sheets"
)

func sheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Manage the creators worksheet",
	}
	cmd.AddCommand(sheetInitCmd())
	return cmd
}

func sheetInitCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the creators worksheet with a formatted header row",
		Long:  `Create the creators worksheet in GOOGLE_SHEETS_SPREADSHEET_ID.

An existing worksheet is left untouched unless --reset is given, which
clears every row and rewrites the header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ExternalCallTimeout*3)
			defer cancel()

			store, err := sheets.NewStore(ctx, sheets.Config{
				CredentialsJSON: cfg.SheetsCredentialsJSON,
				SpreadsheetID:   cfg.SheetsSpreadsheetID,
				Worksheet:       cfg.SheetsWorksheet,
				Timeout:         cfg.ExternalCallTimeout,
			})
			if err != nil {
				return err
			}

			res, err := store.InitWorksheet(ctx, reset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case res.Created:
				fmt.Fprintf(out, "Created worksheet %q (sheet id %d)\n", cfg.SheetsWorksheet, res.SheetID)
			case res.Reset:
				fmt.Fprintf(out, "Reset worksheet %q\n", cfg.SheetsWorksheet)
			default:
				fmt.Fprintf(out, "Worksheet %q already exists, use --reset to clear it\n", cfg.SheetsWorksheet)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear an existing worksheet and rewrite its header")
	return cmd
}
