package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/fieldsync/internal/catalog"
	"github.com/jonathan/fieldsync/internal/db"
	"github.com/jonathan/fieldsync/internal/metrics"
	"github.com/jonathan/fieldsync/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveCatalog string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the diagnosis and jobs API.

Data is read from PostgreSQL (DATABASE_URL) unless --catalog points at a
catalog JSON file, in which case everything is served from memory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "Serve from a catalog JSON file instead of the database")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.DatabaseURL, serveCatalog)
	if err != nil {
		return err
	}
	defer closeStore()

	if serveCatalog != "" {
		logger.Info("serving from catalog file", zap.String("path", serveCatalog))
	}

	srv, err := server.New(cfg, store,
		server.WithLogger(logger),
		server.WithMetrics(metrics.New()),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}

// openStore opens the catalog file when path is set, otherwise the database.
func openStore(ctx context.Context, databaseURL, catalogPath string) (server.Store, func(), error) {
	if catalogPath != "" {
		c, err := catalog.Open(catalogPath)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}

	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required (or pass --catalog)")
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database, database.Close, nil
}
