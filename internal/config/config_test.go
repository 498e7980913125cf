package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.Pricing.DeliveryFee.Equal(decimal.RequireFromString("3.99")))
	assert.Equal(t, 30*time.Minute, cfg.Conversation.IdleTimeout)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9000
database:
  driver: postgres
  dsn: "host=db user=bistro"
llm:
  provider: openai
  model: gpt-4o
conversation:
  idle_timeout: 5m
pricing:
  tax_rate: "0.08"
  delivery_fee: "0"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 5*time.Minute, cfg.Conversation.IdleTimeout)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Pricing.DeliveryFee.IsZero())
	// untouched sections keep their defaults
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BISTRO_PORT", "7070")
	t.Setenv("BISTRO_LLM_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "classifier")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "azure", cfg.LLM.Provider)
	assert.Equal(t, "https://example.openai.azure.com", cfg.LLM.Endpoint)
	assert.Equal(t, "classifier", cfg.LLM.Deployment)
}

func TestLoadRejectsBadPricing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pricing:\n  tax_rate: \"ten\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
