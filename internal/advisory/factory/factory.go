package factory

import (
	"fmt"

	"github.com/nexustrader/nexus/internal/advisory"
	"github.com/nexustrader/nexus/internal/advisory/claude"
	"github.com/nexustrader/nexus/internal/advisory/openai"
	"github.com/nexustrader/nexus/internal/config"
)

// New creates an advisory analyzer based on configuration.
func New(cfg config.AdvisoryConfig) (advisory.Analyzer, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Timeout)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown advisory provider: %s", cfg.Provider)
	}
}
