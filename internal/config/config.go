package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded by a .env file in the working directory.
type Config struct {
	Port   int    `env:"VIQ_PORT" envDefault:"8080"`
	DBPath string `env:"VIQ_DB_PATH" envDefault:"./validateiq.db"`

	// WaitlistCap is the number of early-access spots on offer.
	WaitlistCap int `env:"VIQ_WAITLIST_CAP" envDefault:"100"`

	// DashboardToken protects /dashboard and /api/stats. Generated at
	// startup when empty.
	DashboardToken string `env:"VIQ_DASHBOARD_TOKEN"`

	// ContentPath overrides the embedded landing page copy.
	ContentPath string `env:"VIQ_CONTENT_PATH"`

	// ServerURL is what the CLI prints in links.
	ServerURL string `env:"VIQ_SERVER_URL"`

	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Only enable it behind a reverse proxy
	// that overwrites those headers.
	TrustProxy bool `env:"VIQ_TRUST_PROXY"`

	SignupsPerMinute int `env:"VIQ_SIGNUPS_PER_MINUTE" envDefault:"10"`
	SignupBurst      int `env:"VIQ_SIGNUP_BURST" envDefault:"5"`

	ReadTimeout     time.Duration `env:"VIQ_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"VIQ_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"VIQ_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// EnvFile is the dotenv file read by Load and written by `validateiq init`.
const EnvFile = ".env"

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", EnvFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.WaitlistCap < 0 {
		return fmt.Errorf("waitlist cap must not be negative, got %d", c.WaitlistCap)
	}
	if c.SignupsPerMinute <= 0 {
		return fmt.Errorf("signups per minute must be positive, got %d", c.SignupsPerMinute)
	}
	if c.SignupBurst <= 0 {
		return fmt.Errorf("signup burst must be positive, got %d", c.SignupBurst)
	}
	return nil
}

// BaseURL is ServerURL, falling back to localhost on the configured port.
func (c *Config) BaseURL() string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// TokenFile lives next to the database so `validateiq token` can find it.
func (c *Config) TokenFile() string {
	return filepath.Join(filepath.Dir(c.DBPath), ".validateiq-token")
}

// WriteEnvFile persists values in dotenv format, replacing path.
func WriteEnvFile(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode env file: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}
