// Package config holds the harness settings and the scenario catalog.
package config

import (
	_ "embed"
	"time"

	"github.com/helmcode/kubectl-ai-harness/pkg/model"
)

//go:embed scenarios.yaml
var defaultCatalog []byte

// Config is the top level harness configuration.
type Config struct {
	LLM         LLMConfig        `yaml:"llm"`
	Timing      TimingConfig     `yaml:"timing"`
	Namespace   string           `yaml:"namespace"`
	ScenarioDir string           `yaml:"scenario_dir"`
	Scenarios   []model.Scenario `yaml:"scenarios"`
}

// LLMConfig selects the inference endpoint. The API key is never read from
// the file; it comes from LLM_API_KEY or the provider specific variable.
type LLMConfig struct {
	Provider          string        `yaml:"provider"`
	URL               string        `yaml:"url"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	ClassifyMaxTokens int           `yaml:"classify_max_tokens"`
	DiagnoseMaxTokens int           `yaml:"diagnose_max_tokens"`
}

// TimingConfig holds the fixed pauses of a scenario run.
type TimingConfig struct {
	// SettleDelay is the wait after applying a manifest.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// IdentifyDelay is the wait before the first pod lookup.
	IdentifyDelay    time.Duration `yaml:"identify_delay"`
	IdentifyAttempts int           `yaml:"identify_attempts"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	CleanupDelay     time.Duration `yaml:"cleanup_delay"`
}

// Scenario returns the catalog entry with the given ID.
func (c *Config) Scenario(id string) (model.Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return model.Scenario{}, false
}
