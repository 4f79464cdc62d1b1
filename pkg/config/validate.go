package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/helmcode/kubectl-ai-harness/pkg/llm"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
)

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if !validProvider(c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of %v", c.LLM.Provider, llm.GetAvailableProviders()))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("llm.timeout must not be negative"))
	}
	if c.LLM.ClassifyMaxTokens < 0 || c.LLM.DiagnoseMaxTokens < 0 {
		errs = append(errs, errors.New("llm max tokens must not be negative"))
	}

	t := c.Timing
	if t.SettleDelay < 0 || t.IdentifyDelay < 0 || t.PollInterval < 0 || t.CleanupDelay < 0 {
		errs = append(errs, errors.New("timing delays must not be negative"))
	}
	if t.IdentifyAttempts < 1 {
		errs = append(errs, errors.New("timing.identify_attempts must be at least 1"))
	}

	seen := make(map[string]bool)
	for i, s := range c.Scenarios {
		if err := validateScenario(s); err != nil {
			errs = append(errs, fmt.Errorf("scenarios[%d]: %w", i, err))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("scenarios[%d]: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = true
	}

	return errors.Join(errs...)
}

func validateScenario(s model.Scenario) error {
	var missing []string
	if s.ID == "" {
		missing = append(missing, "id")
	}
	if s.Manifest == "" {
		missing = append(missing, "manifest")
	}
	if s.PodPrefix == "" {
		missing = append(missing, "pod_prefix")
	}
	if s.CleanupKind == "" {
		missing = append(missing, "cleanup_kind")
	}
	if s.CleanupName == "" {
		missing = append(missing, "cleanup_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	usesNode := strings.Contains(s.PreRun, model.NodePlaceholder) || strings.Contains(s.PostRun, model.NodePlaceholder)
	if usesNode && !s.RequiresNode {
		return fmt.Errorf("scenario %q uses %s but does not set requires_node", s.ID, model.NodePlaceholder)
	}
	return nil
}

func validProvider(p string) bool {
	for _, known := range llm.GetAvailableProviders() {
		if p == string(known) {
			return true
		}
	}
	return false
}

// Select returns the scenarios named by ids in catalog order, or the whole
// catalog when ids is empty.
func (c *Config) Select(ids []string) ([]model.Scenario, error) {
	if len(ids) == 0 {
		return c.Scenarios, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := c.Scenario(id); !ok {
			return nil, fmt.Errorf("unknown scenario %q", id)
		}
		want[id] = true
	}
	var out []model.Scenario
	for _, s := range c.Scenarios {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}
