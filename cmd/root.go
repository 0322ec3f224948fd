// Package cmd contains the CLI commands of the attendance backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-backend",
	Short: "Attendance backend for the unit's face-recognition kiosk",
	Long: `Backend service for cadet attendance tracking. Registers and
recognizes faces, keeps the event and attendance ledger, archives
recognized photos and imports the cadet roster.`,
}

func init() {
	cobra.OnInitialize(func() {
		// Missing .env is fine, the environment may be set elsewhere.
		_ = godotenv.Load()
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
