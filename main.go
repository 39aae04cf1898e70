package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/blogs-service/api"
	"github.com/rpupo63/blogs-service/config"
	"github.com/rpupo63/blogs-service/database"
	"github.com/rpupo63/blogs-service/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 30 * time.Second

// CLI flags
var (
	configPath string
	verbosity  int
	report     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blogs",
		Short:         "Blogs - CRUD service for blog posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  serve,
	})

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and exit",
		RunE:  migrate,
	}
	migrateCmd.Flags().BoolVar(&report, "report", false, "Print a column mismatch report instead of migrating")
	rootCmd.AddCommand(migrateCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blogs %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Exiting")
		os.Exit(1)
	}
}

// bootstrap loads .env and the config, sets up logging and opens the database.
func bootstrap() (*config.Config, database.Database, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, database.Database{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, database.Database{}, err
	}

	switch {
	case verbosity == 1:
		cfg.Log.Level = "debug"
	case verbosity > 1:
		cfg.Log.Level = "trace"
	}
	logging.Setup(cfg.Log)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, database.Database{}, err
	}
	return cfg, db, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	server, err := api.NewServer(cfg, db)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	log.Info().
		Str("version", version).
		Str("address", cfg.Address()).
		Str("database", cfg.Database.Type).
		Msg("Starting blogs service")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, shutdownTimeout)
}

func migrate(cmd *cobra.Command, args []string) error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if !report {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
		log.Info().Msg("Migrations complete")
		return nil
	}

	reports, err := db.ColumnReport()
	if err != nil {
		return fmt.Errorf("generate column report: %w", err)
	}
	for _, r := range reports {
		fmt.Printf("--- Table: %s ---\n", r.Table)
		switch {
		case !r.Exists:
			fmt.Println("Table does not exist")
		case len(r.Mismatches) == 0:
			fmt.Println("All columns accounted for")
		default:
			fmt.Printf("Found %d columns not accounted for in model:\n", len(r.Mismatches))
			for _, column := range r.Mismatches {
				fmt.Printf("  - %s\n", column)
			}
		}
	}
	return nil
}
