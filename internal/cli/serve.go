package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/server"
	"github.com/validateiq/validateiq/internal/site"
	"github.com/validateiq/validateiq/internal/store"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the ValidateIQ HTTP server.

The server provides:
  - The landing page at / and its tracker script at /vq.js
  - Analytics and waitlist APIs under /api
  - A token-protected dashboard at /dashboard
  - Prometheus metrics at /metrics

Example:
  validateiq serve --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from VIQ_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if port != 0 {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	content := site.DefaultContent()
	if cfg.ContentPath != "" {
		loaded, err := site.LoadContent(cfg.ContentPath)
		if err != nil {
			return err
		}
		content = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withStore(func(s *store.SQLiteStore) error {
		srv := server.New(server.Options{
			Store:   s,
			Config:  cfg,
			Content: content,
			Logger:  log,
		})

		printStartup(srv)
		return srv.Start(ctx)
	})
}

func printStartup(srv *server.Server) {
	fmt.Println()
	fmt.Printf("ValidateIQ running on http://localhost:%d\n", cfg.Port)
	fmt.Printf("Dashboard: %s\n", srv.DashboardURL())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}
