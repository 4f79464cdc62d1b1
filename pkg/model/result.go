package model

import "time"

// Result is the outcome of one scenario run.
type Result struct {
	ScenarioID        string          `json:"scenario_id" yaml:"scenario_id"`
	RunID             string          `json:"run_id" yaml:"run_id"`
	Pod               string          `json:"pod,omitempty" yaml:"pod,omitempty"`
	RawClassification string          `json:"raw_classification,omitempty" yaml:"raw_classification,omitempty"`
	Classification    Classification  `json:"classification,omitempty" yaml:"classification,omitempty"`
	Context           *ContextPackage `json:"context,omitempty" yaml:"context,omitempty"`
	Diagnosis         string          `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	LastState         string          `json:"last_state" yaml:"last_state"`
	Skipped           string          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error             string          `json:"error,omitempty" yaml:"error,omitempty"`
	Duration          time.Duration   `json:"duration" yaml:"duration"`
}

// Outcome summarizes the result in one word.
func (r Result) Outcome() string {
	switch {
	case r.Error != "":
		return "error"
	case r.Skipped != "":
		return "skipped"
	default:
		return "diagnosed"
	}
}
