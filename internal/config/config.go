package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nexustrader/nexus/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Pipeline  PipelineConfig            `mapstructure:"pipeline"`
	Advisory  AdvisoryConfig            `mapstructure:"advisory"`
	Audit     AuditConfig               `mapstructure:"audit"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// PipelineConfig tunes the admission path: the risk-gate confidence
// threshold and the two independent rate limiters.
type PipelineConfig struct {
	RiskThreshold float64    `mapstructure:"risk_threshold"`
	IngestRate    RateConfig `mapstructure:"ingest_rate"`
	AdvisoryRate  RateConfig `mapstructure:"advisory_rate"`
}

// RateConfig holds one sliding-window limiter's parameters.
type RateConfig struct {
	Window time.Duration `mapstructure:"window"`
	Quota  int           `mapstructure:"quota"`
}

// AdvisoryConfig selects and configures the narrative-analysis backend.
type AdvisoryConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Claude   ClaudeConfig  `mapstructure:"claude"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AuditConfig controls the audit trail and its archival backend.
type AuditConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max_entries"`
	Archive    ArchiveConfig `mapstructure:"archive"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "none", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type NotifierConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type StorageConfig struct {
	MaxSignals int `mapstructure:"max_signals"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Pipeline: PipelineConfig{
			RiskThreshold: 0.70,
			IngestRate: RateConfig{
				Window: 60 * time.Second,
				Quota:  20,
			},
			AdvisoryRate: RateConfig{
				Window: 60 * time.Second,
				Quota:  10,
			},
		},
		Advisory: AdvisoryConfig{
			Timeout: 60 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			MaxEntries: 1000,
			Archive: ArchiveConfig{
				Type: "none",
			},
		},
		Storage: StorageConfig{
			MaxSignals: 10000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Pipeline.RiskThreshold < 0 || c.Pipeline.RiskThreshold > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_threshold must be between 0 and 1, got %f", c.Pipeline.RiskThreshold))
	}
	for name, rc := range map[string]RateConfig{
		"ingest_rate":   c.Pipeline.IngestRate,
		"advisory_rate": c.Pipeline.AdvisoryRate,
	} {
		if rc.Quota < 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s quota must be positive, got %d", name, rc.Quota))
		}
		if rc.Window <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s window must be positive, got %s", name, rc.Window))
		}
	}

	// Advisory validation - if provider set, check config exists
	if c.Advisory.Provider != "" {
		switch c.Advisory.Provider {
		case "claude":
			if c.Advisory.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.Advisory.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown advisory provider: %s", c.Advisory.Provider))
		}
	}

	if c.Audit.Enabled {
		switch c.Audit.Archive.Type {
		case "", "none", "localfs", "s3":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown audit archive type: %s", c.Audit.Archive.Type))
		}
		if c.Audit.Archive.Type == "localfs" && c.Audit.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("audit archive path required for localfs"))
		}
		if c.Audit.Archive.Type == "s3" && c.Audit.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("audit archive s3 bucket required"))
		}
	}

	return nil
}
