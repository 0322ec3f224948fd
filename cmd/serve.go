package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nccpresi/attendance-backend/internal/archive"
	"github.com/nccpresi/attendance-backend/internal/config"
	"github.com/nccpresi/attendance-backend/internal/database/postgres"
	"github.com/nccpresi/attendance-backend/internal/facenet"
	"github.com/nccpresi/attendance-backend/internal/recognizer"
	"github.com/nccpresi/attendance-backend/internal/registry"
	"github.com/nccpresi/attendance-backend/internal/sheets"
	"github.com/nccpresi/attendance-backend/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Env overrides let deployments skip the flags.
		if h := os.Getenv("SERVER_HOST"); h != "" && !cmd.Flags().Changed("host") {
			serveHost = h
		}
		if p := os.Getenv("SERVER_PORT"); p != "" && !cmd.Flags().Changed("port") {
			if n, err := strconv.Atoi(p); err == nil {
				servePort = n
			}
		}

		cfg := config.Load()

		pool, err := postgres.NewPool(cfg.Database)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer pool.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pool.Migrate(migrateCtx); err != nil {
			return fmt.Errorf("could not migrate database: %w", err)
		}

		store := registry.New(cfg.Registry.Path)
		if err := store.Load(); err != nil {
			log.Printf("starting with empty face registry: %v", err)
		}
		log.Printf("face registry loaded, %d encodings", store.Count())

		if cfg.Facenet.URL == "" {
			return fmt.Errorf("FACENET_URL is required")
		}
		extractor, err := facenet.New(cfg.Facenet.URL, cfg.Facenet.Dim)
		if err != nil {
			return fmt.Errorf("could not create facenet client: %w", err)
		}

		deps := web.Deps{
			Cadets:     postgres.NewCadetRepository(pool),
			Events:     postgres.NewEventRepository(pool),
			Attendance: postgres.NewAttendanceRepository(pool),
			Registry:   store,
			Matcher:    recognizer.New(store, cfg.Facenet.Tolerance),
			Extractor:  extractor,
		}

		if cfg.Archive.URL != "" {
			archiver, err := archive.New(cfg.Archive.URL, cfg.Archive.Token, cfg.Archive.RootFolder)
			if err != nil {
				return fmt.Errorf("could not create archive client: %w", err)
			}
			deps.Archiver = archiver
		} else {
			log.Printf("photo archival disabled, ARCHIVE_URL not set")
		}

		if cfg.Sheets.URL != "" {
			auth, err := sheets.New(cfg.Sheets.URL, cfg.Sheets.SpreadsheetID, cfg.Sheets.Token)
			if err != nil {
				return fmt.Errorf("could not create sheets client: %w", err)
			}
			deps.Auth = auth
		} else {
			log.Printf("staff login disabled, SHEETS_URL not set")
		}

		server := web.NewServer(deps)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(serveHost, servePort)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Printf("received %s, shutting down", sig)
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "host to bind")
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
