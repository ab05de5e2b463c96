// Package common provides shared utilities for Quantum
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Quantum
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
	Auth        AuthConfig      `toml:"auth"`
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection settings.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	GitHub GitHubConfig `toml:"github"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	Exchange  string `toml:"exchange"` // suffix applied to bare symbols, e.g. "US"
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GitHubConfig identifies the workflow that runs the risk-parity analytics job.
type GitHubConfig struct {
	BaseURL  string `toml:"base_url"`
	Token    string `toml:"token"`
	Owner    string `toml:"owner"`
	Repo     string `toml:"repo"`
	Workflow string `toml:"workflow"`
	Ref      string `toml:"ref"`
}

// Enabled reports whether enough is configured to dispatch the workflow.
func (c *GitHubConfig) Enabled() bool {
	return c.Token != "" && c.Owner != "" && c.Repo != "" && c.Workflow != ""
}

// AuthConfig holds bearer token validation settings. Tokens are issued by
// the external identity provider and signed with JWTSecret.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Required  bool   `toml:"required"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// PortfolioConfig holds portfolio classification and refresh settings.
type PortfolioConfig struct {
	Categories         []string `toml:"categories"`
	DefaultCategory    string   `toml:"default_category"`
	RefreshConcurrency int      `toml:"refresh_concurrency"`
}

// IsCategory reports whether name is one of the configured categories.
func (c *PortfolioConfig) IsCategory(name string) bool {
	for _, cat := range c.Categories {
		if cat == name {
			return true
		}
	}
	return false
}

// SchedulerConfig holds cron specs for background jobs. Empty disables the job.
type SchedulerConfig struct {
	RefreshCron   string `toml:"refresh_cron"`
	AnalyticsCron string `toml:"analytics_cron"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "quantum",
			Database:  "quantum",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
				Exchange:  "US",
			},
			GitHub: GitHubConfig{
				BaseURL:  "https://api.github.com",
				Workflow: "risk_parity.yml",
				Ref:      "master",
			},
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret-change-in-production",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "./logs/quantum.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Portfolio: PortfolioConfig{
			Categories:         []string{"Core", "Satellite", "Opportunity"},
			DefaultCategory:    "Satellite",
			RefreshConcurrency: 5,
		},
		Scheduler: SchedulerConfig{
			RefreshCron: "0 */30 * * * *",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("QUANTUM_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("QUANTUM_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("QUANTUM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("QUANTUM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("QUANTUM_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("QUANTUM_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("QUANTUM_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	// Provider keys: conventional names first, prefixed names win
	for _, name := range []string{"EODHD_API_KEY", "QUANTUM_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
		}
	}
	for _, name := range []string{"GITHUB_TOKEN", "QUANTUM_GITHUB_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.GitHub.Token = v
		}
	}

	if v := os.Getenv("QUANTUM_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("QUANTUM_AUTH_REQUIRED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Auth.Required = b
		}
	}

	if v := os.Getenv("QUANTUM_CATEGORIES"); v != "" {
		parts := strings.Split(v, ",")
		cats := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cats = append(cats, p)
			}
		}
		config.Portfolio.Categories = cats
	}
}

// Validate checks internal consistency of the loaded configuration.
func (c *Config) Validate() error {
	if len(c.Portfolio.Categories) == 0 {
		return fmt.Errorf("portfolio.categories must not be empty")
	}
	if c.Portfolio.DefaultCategory == "" {
		c.Portfolio.DefaultCategory = c.Portfolio.Categories[0]
	}
	if !c.Portfolio.IsCategory(c.Portfolio.DefaultCategory) {
		return fmt.Errorf("portfolio.default_category %q is not one of %v", c.Portfolio.DefaultCategory, c.Portfolio.Categories)
	}
	if c.Portfolio.RefreshConcurrency <= 0 {
		c.Portfolio.RefreshConcurrency = 5
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.required is set")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
