package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show dashboard URL with access token",
	Long: `Show the dashboard URL with your access token.

Use this when you've scrolled past the startup message or need to
share the dashboard link.

Example:
  validateiq token`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := readToken()
	if err != nil {
		return err
	}

	fmt.Printf("Dashboard: %s/dashboard?token=%s\n", cfg.BaseURL(), token)
	fmt.Println()
	fmt.Println("Tip: Bookmark this URL or run 'validateiq token' anytime.")
	return nil
}

// readToken prefers the configured token over the one the server wrote.
func readToken() (string, error) {
	if cfg.DashboardToken != "" {
		return cfg.DashboardToken, nil
	}

	data, err := os.ReadFile(cfg.TokenFile())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("no server running. Start with: validateiq serve")
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty. Restart the server with: validateiq serve")
	}
	return token, nil
}
