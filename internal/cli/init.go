package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .env file interactively",
	Long: `Ask for the server settings and write them to .env in the current
directory. The server and every other command read it on startup.

Leave the dashboard token empty to have one generated each time the
server starts.

Example:
  validateiq init`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// setup holds the answers of the init wizard.
type setup struct {
	Port           int
	DBPath         string
	WaitlistCap    int
	DashboardToken string
	ServerURL      string
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.EnvFile); err == nil {
		ok, err := confirm(fmt.Sprintf("%s exists. Overwrite", config.EnvFile))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing written.")
			return nil
		}
	}

	answers, err := promptSetup(setup{
		Port:        cfg.Port,
		DBPath:      cfg.DBPath,
		WaitlistCap: cfg.WaitlistCap,
		ServerURL:   cfg.ServerURL,
	})
	if err != nil {
		return err
	}

	if err := config.WriteEnvFile(config.EnvFile, answers.envValues()); err != nil {
		return err
	}

	printNextSteps(answers)
	return nil
}

func promptSetup(defaults setup) (setup, error) {
	var out setup
	var err error

	if out.Port, err = promptInt("Port", defaults.Port, 1, 65535); err != nil {
		return out, err
	}
	if out.DBPath, err = promptString("Database path", defaults.DBPath, true); err != nil {
		return out, err
	}
	if out.WaitlistCap, err = promptInt("Early-access spots", defaults.WaitlistCap, 0, 1_000_000); err != nil {
		return out, err
	}
	if out.ServerURL, err = promptString("Public URL (optional)", defaults.ServerURL, false); err != nil {
		return out, err
	}

	tokenPrompt := promptui.Prompt{
		Label: "Dashboard token (empty to generate)",
		Mask:  '*',
	}
	if out.DashboardToken, err = tokenPrompt.Run(); err != nil {
		return out, promptError(err)
	}

	return out, nil
}

func promptInt(label string, def, lo, hi int) (int, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: strconv.Itoa(def),
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return errors.New("must be a number")
			}
			if n < lo || n > hi {
				return fmt.Errorf("must be between %d and %d", lo, hi)
			}
			return nil
		},
	}

	result, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return strconv.Atoi(strings.TrimSpace(result))
}

func promptString(label, def string, required bool) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
	}
	if required {
		prompt.Validate = func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("required")
			}
			return nil
		}
	}

	result, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimSpace(result), nil
}

func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptError(err)
	}
	return true, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		os.Exit(0)
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// envValues maps the answers to the variables config.Load reads.
func (s setup) envValues() map[string]string {
	values := map[string]string{
		"VIQ_PORT":         strconv.Itoa(s.Port),
		"VIQ_DB_PATH":      s.DBPath,
		"VIQ_WAITLIST_CAP": strconv.Itoa(s.WaitlistCap),
	}
	if s.DashboardToken != "" {
		values["VIQ_DASHBOARD_TOKEN"] = s.DashboardToken
	}
	if s.ServerURL != "" {
		values["VIQ_SERVER_URL"] = s.ServerURL
	}
	return values
}

func printNextSteps(s setup) {
	fmt.Println()
	fmt.Printf("Wrote %s\n", config.EnvFile)
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()
	fmt.Println("1. Start the server")
	fmt.Println()
	fmt.Println("   validateiq serve")
	fmt.Println()
	fmt.Println("2. Open the landing page")
	fmt.Println()
	fmt.Printf("   http://localhost:%d/\n", s.Port)
	fmt.Println()
	fmt.Println("3. Share it and watch the dashboard")
	fmt.Println()
	fmt.Println("   validateiq token")
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  stats            Show the dashboard numbers")
	fmt.Println("  sources          Compare conversion by traffic source")
	fmt.Println("  export           Export signups or events")
	fmt.Println("  seed             Fill the database with demo data")
	fmt.Println("  visit            Simulate a visitor against a running server")
	fmt.Println()
}
