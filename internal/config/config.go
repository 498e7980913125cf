package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	LLM          LLMConfig          `yaml:"llm"`
	Conversation ConversationConfig `yaml:"conversation"`
	Pricing      PricingConfig      `yaml:"pricing"`
	LogLevel     string             `yaml:"log_level"`
}

// ServerConfig configures the public API server
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// DatabaseConfig selects the gorm dialect and connection string
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	LogMode  bool   `yaml:"log_mode"`
	SeedMenu bool   `yaml:"seed_menu"`
}

// AuthConfig configures bearer token validation
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// AdminEmails are promoted to admin on first sign-in
	AdminEmails []string `yaml:"admin_emails"`
}

// LLMConfig selects the model used to classify voice requests.
// Provider is one of "none", "openai", "github", "azure".
type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Endpoint   string        `yaml:"endpoint"`
	Deployment string        `yaml:"deployment"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ConversationConfig bounds the in-memory conversation sessions
type ConversationConfig struct {
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	TranscriptQueue int           `yaml:"transcript_queue"`
}

// PricingConfig holds the checkout surcharges
type PricingConfig struct {
	TaxRate     decimal.Decimal `yaml:"-"`
	DeliveryFee decimal.Decimal `yaml:"-"`

	RawTaxRate     string `yaml:"tax_rate"`
	RawDeliveryFee string `yaml:"delivery_fee"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Database: DatabaseConfig{
			Driver:   "sqlite3",
			DSN:      "bistro.db",
			SeedMenu: true,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider: "none",
			Model:    "gpt-4o-mini",
			Timeout:  15 * time.Second,
		},
		Conversation: ConversationConfig{
			IdleTimeout:     30 * time.Minute,
			SweepInterval:   time.Minute,
			TranscriptQueue: 256,
		},
		Pricing: PricingConfig{
			RawTaxRate:     "0.10",
			RawDeliveryFee: "3.99",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getenvInt("BISTRO_PORT", c.Server.Port)
	c.Metrics.Port = getenvInt("BISTRO_METRICS_PORT", c.Metrics.Port)
	c.Database.Driver = getenv("BISTRO_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getenv("BISTRO_DATABASE_URL", c.Database.DSN)
	c.Auth.JWTSecret = getenv("BISTRO_JWT_SECRET", c.Auth.JWTSecret)
	if v := os.Getenv("BISTRO_ADMIN_EMAILS"); v != "" {
		c.Auth.AdminEmails = strings.Split(v, ",")
	}
	c.LLM.Provider = getenv("BISTRO_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getenv("BISTRO_LLM_MODEL", c.LLM.Model)
	c.LogLevel = getenv("BISTRO_LOG_LEVEL", c.LogLevel)

	// Provider credentials follow the names the SDKs document.
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = getenv("OPENAI_API_KEY", c.LLM.APIKey)
	case "github":
		c.LLM.APIKey = getenv("GITHUB_TOKEN", c.LLM.APIKey)
	case "azure":
		c.LLM.APIKey = getenv("AZURE_OPENAI_API_KEY", c.LLM.APIKey)
		c.LLM.Endpoint = getenv("AZURE_OPENAI_ENDPOINT", c.LLM.Endpoint)
		c.LLM.Deployment = getenv("AZURE_OPENAI_DEPLOYMENT_NAME", c.LLM.Deployment)
	}
}

func (c *Config) finalize() error {
	var err error
	if c.Pricing.TaxRate, err = decimal.NewFromString(c.Pricing.RawTaxRate); err != nil {
		return fmt.Errorf("invalid pricing.tax_rate %q: %w", c.Pricing.RawTaxRate, err)
	}
	if c.Pricing.DeliveryFee, err = decimal.NewFromString(c.Pricing.RawDeliveryFee); err != nil {
		return fmt.Errorf("invalid pricing.delivery_fee %q: %w", c.Pricing.RawDeliveryFee, err)
	}
	if c.Pricing.TaxRate.IsNegative() || c.Pricing.DeliveryFee.IsNegative() {
		return errors.New("pricing values must not be negative")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Conversation.TranscriptQueue <= 0 {
		c.Conversation.TranscriptQueue = 1
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
