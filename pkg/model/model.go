package model

import "strings"

// Scenario describes a reproducible pod failure and how to set it up and
// tear it down again.
type Scenario struct {
	ID           string `json:"id" yaml:"id"`
	Description  string `json:"description" yaml:"description"`
	Manifest     string `json:"manifest" yaml:"manifest"`
	PodPrefix    string `json:"pod_prefix" yaml:"pod_prefix"`
	PreRun       string `json:"pre_run,omitempty" yaml:"pre_run,omitempty"`
	PostRun      string `json:"post_run,omitempty" yaml:"post_run,omitempty"`
	RequiresNode bool   `json:"requires_node,omitempty" yaml:"requires_node,omitempty"`
	CleanupKind  string `json:"cleanup_kind" yaml:"cleanup_kind"`
	CleanupName  string `json:"cleanup_name" yaml:"cleanup_name"`
}

// NodePlaceholder is substituted in PreRun and PostRun with the worker node name.
const NodePlaceholder = "{node_name}"

// PreRunCommand returns the setup command for the given node, or "" if the
// scenario has none.
func (s Scenario) PreRunCommand(node string) string {
	return strings.ReplaceAll(s.PreRun, NodePlaceholder, node)
}

// PostRunCommand returns the teardown command for the given node.
func (s Scenario) PostRunCommand(node string) string {
	return strings.ReplaceAll(s.PostRun, NodePlaceholder, node)
}

// Classification is the failure category the model assigns to a pod.
type Classification string

const (
	SchedulingFailure     Classification = "SchedulingFailure"
	ImagePullFailure      Classification = "ImagePullFailure"
	ConfigurationFailure  Classification = "ConfigurationFailure"
	InitializationFailure Classification = "InitializationFailure"
	RuntimeCrash          Classification = "RuntimeCrash"
	HealthCheckFailure    Classification = "HealthCheckFailure"
)

// Classifications returns the known categories in prompt order.
func Classifications() []Classification {
	return []Classification{
		SchedulingFailure,
		ImagePullFailure,
		ConfigurationFailure,
		InitializationFailure,
		RuntimeCrash,
		HealthCheckFailure,
	}
}

// Known reports whether c is one of the fixed categories.
func (c Classification) Known() bool {
	for _, k := range Classifications() {
		if c == k {
			return true
		}
	}
	return false
}

func (c Classification) String() string {
	return string(c)
}
