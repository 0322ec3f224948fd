package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nccpresi/attendance-backend/internal/config"
	"github.com/nccpresi/attendance-backend/internal/database/postgres"
	"github.com/nccpresi/attendance-backend/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import the cadet roster from an xlsx workbook",
	Long: `Reads the unit roster workbook (one worksheet per study year)
and inserts every cadet that is not in the database yet. Existing
cadets are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		pool, err := postgres.NewPool(cfg.Database)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pool.Migrate(ctx); err != nil {
			return fmt.Errorf("could not migrate database: %w", err)
		}

		bar := progressbar.Default(-1, "importing cadets")
		report, err := importer.Import(cmd.Context(), args[0], postgres.NewCadetRepository(pool), func() {
			_ = bar.Add(1)
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("\nimported %d new cadets, %d already present, %d rows skipped\n",
			report.Imported, report.Existing, report.Skipped)
		for sheet, rows := range report.Sheets {
			fmt.Printf("  %s: %d rows\n", sheet, rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
