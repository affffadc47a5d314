package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/roofrecharge/proposal-generator/internal/document"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":5000"`
	Port              string        `envconfig:"PORT"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	AssetDir       string `envconfig:"ASSET_DIR" default:"assets"`
	ProposalLayout string `envconfig:"PROPOSAL_LAYOUT" default:"standard"`
	MaxUploadMB    int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`
	CompanyName    string `envconfig:"COMPANY_NAME"`

	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"*"`

	GotenbergURL     string        `envconfig:"GOTENBERG_URL"`
	GotenbergTimeout time.Duration `envconfig:"GOTENBERG_TIMEOUT" default:"30s"`
}

// LoadConfig reads configuration from a .env file when present and then from
// environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Port != "" {
		c.AppAddr = ":" + strings.TrimPrefix(c.Port, ":")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if _, ok := document.LookupLayout(c.ProposalLayout); !ok {
		return fmt.Errorf("PROPOSAL_LAYOUT %q is not one of %s", c.ProposalLayout, strings.Join(document.LayoutNames(), ", "))
	}
	c.GotenbergURL = strings.TrimSpace(c.GotenbergURL)
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// MaxUploadBytes is the aerial image limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Layout is the configured default proposal layout.
func (c *Config) Layout() document.Layout {
	return document.LayoutOrDefault(c.ProposalLayout, document.Standard)
}

// PDFEnabled reports whether a Gotenberg endpoint is configured.
func (c *Config) PDFEnabled() bool {
	return c != nil && c.GotenbergURL != ""
}
