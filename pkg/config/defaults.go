package config

import (
	"bytes"
	"fmt"
	"time"

	"github.com/helmcode/kubectl-ai-harness/pkg/llm"
)

const (
	DefaultProvider          = string(llm.ProviderGateway)
	DefaultModel             = "bedrock-claude-3-haiku"
	DefaultScenarioDir       = "scenarios"
	DefaultClassifyMaxTokens = 256
	DefaultDiagnoseMaxTokens = 4096

	DefaultSettleDelay      = 15 * time.Second
	DefaultIdentifyDelay    = 5 * time.Second
	DefaultIdentifyAttempts = 5
	DefaultPollInterval     = 2 * time.Second
	DefaultCleanupDelay     = 5 * time.Second
)

// Default returns a configuration with every default applied, including the
// embedded scenario catalog.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// DefaultScenarios parses the embedded catalog.
func DefaultScenarios() (*Config, error) {
	cfg, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, fmt.Errorf("embedded scenario catalog: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field. Timing values are only defaulted
// when zero, so an explicit negative value still fails validation.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" && c.LLM.Provider == DefaultProvider {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = llm.DefaultTimeout
	}
	if c.LLM.ClassifyMaxTokens == 0 {
		c.LLM.ClassifyMaxTokens = DefaultClassifyMaxTokens
	}
	if c.LLM.DiagnoseMaxTokens == 0 {
		c.LLM.DiagnoseMaxTokens = DefaultDiagnoseMaxTokens
	}

	if c.Timing.SettleDelay == 0 {
		c.Timing.SettleDelay = DefaultSettleDelay
	}
	if c.Timing.IdentifyDelay == 0 {
		c.Timing.IdentifyDelay = DefaultIdentifyDelay
	}
	if c.Timing.IdentifyAttempts == 0 {
		c.Timing.IdentifyAttempts = DefaultIdentifyAttempts
	}
	if c.Timing.PollInterval == 0 {
		c.Timing.PollInterval = DefaultPollInterval
	}
	if c.Timing.CleanupDelay == 0 {
		c.Timing.CleanupDelay = DefaultCleanupDelay
	}

	if c.ScenarioDir == "" {
		c.ScenarioDir = DefaultScenarioDir
	}
	if len(c.Scenarios) == 0 {
		// The embedded catalog is covered by tests; a parse failure here is a
		// build defect.
		catalog, err := DefaultScenarios()
		if err != nil {
			panic(err)
		}
		c.Scenarios = catalog.Scenarios
	}
}
