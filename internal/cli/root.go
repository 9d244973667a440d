package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/config"
	"github.com/validateiq/validateiq/internal/logger"
)

var (
	dbPath string
	cfg    *config.Config
	log    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "validateiq",
	Short: "ValidateIQ - a self-hosted waitlist landing page with visitor analytics",
	Long: `ValidateIQ serves a waitlist landing page, tracks how visitors engage
with it and reports which traffic converts.
Single Go binary, embedded SQLite.

Running without a subcommand starts the server (same as 'validateiq serve').`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe, // Default action is to start server
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default from VIQ_DB_PATH)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from VIQ_PORT)")
}

// loadConfig reads .env and the environment, then applies global flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	if log == nil {
		log = logger.NewLogger()
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	dbPath = cfg.DBPath
	return nil
}
