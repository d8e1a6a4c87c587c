package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexustrader/nexus/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
  api_key: secret
pipeline:
  risk_threshold: 0.8
  ingest_rate:
    window: 30s
    quota: 5
advisory:
  provider: claude
  claude:
    api_key: sk-test
    model: claude-sonnet-4-20250514
audit:
  enabled: true
  max_entries: 50
  archive:
    type: localfs
    path: /tmp/audit
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, 0.8, cfg.Pipeline.RiskThreshold)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.IngestRate.Window)
	assert.Equal(t, 5, cfg.Pipeline.IngestRate.Quota)
	assert.Equal(t, "claude", cfg.Advisory.Provider)
	assert.Equal(t, "localfs", cfg.Audit.Archive.Type)

	// Untouched sections keep defaults.
	assert.Equal(t, 10, cfg.Pipeline.AdvisoryRate.Quota)
	assert.Equal(t, 10000, cfg.Storage.MaxSignals)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_NEXUS_KEY", "from-env")
	path := writeConfig(t, `
server:
  api_key: ${TEST_NEXUS_KEY}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.70, cfg.Pipeline.RiskThreshold)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.IngestRate.Window)
	assert.Equal(t, 20, cfg.Pipeline.IngestRate.Quota)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.AdvisoryRate.Window)
	assert.Equal(t, 10, cfg.Pipeline.AdvisoryRate.Quota)
	assert.True(t, cfg.Audit.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"threshold above one", func(c *Config) { c.Pipeline.RiskThreshold = 1.5 }, core.ErrConfigInvalid},
		{"negative threshold", func(c *Config) { c.Pipeline.RiskThreshold = -0.1 }, core.ErrConfigInvalid},
		{"zero quota", func(c *Config) { c.Pipeline.IngestRate.Quota = 0 }, core.ErrConfigInvalid},
		{"zero window", func(c *Config) { c.Pipeline.AdvisoryRate.Window = 0 }, core.ErrConfigInvalid},
		{"unknown provider", func(c *Config) { c.Advisory.Provider = "bard" }, core.ErrConfigInvalid},
		{"claude without key", func(c *Config) { c.Advisory.Provider = "claude" }, core.ErrConfigMissing},
		{"openai without key", func(c *Config) { c.Advisory.Provider = "openai" }, core.ErrConfigMissing},
		{"unknown archive", func(c *Config) { c.Audit.Archive.Type = "ftp" }, core.ErrConfigInvalid},
		{"localfs without path", func(c *Config) { c.Audit.Archive.Type = "localfs" }, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) { c.Audit.Archive.Type = "s3" }, core.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
