package prompts

import (
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
)

// ClassificationTemplate asks the model to name the failure category of a pod
// from its `kubectl get pod` line.
const ClassificationTemplate = `
You are an expert Kubernetes SRE. Classify the failure of the pod below into ONE of these categories:
SchedulingFailure, ImagePullFailure, ConfigurationFailure, InitializationFailure, RuntimeCrash, HealthCheckFailure
--- POD DATA ---
{kubectl_get_pod_output}
--- END POD DATA ---
Respond with ONLY the category name.
`

var classificationTemplate = Parse(ClassificationTemplate)

// BuildClassificationPrompt fills the classification template with the pod
// status output.
func BuildClassificationPrompt(podStatus string) string {
	return classificationTemplate.Assemble(model.NewContextPackage(model.Entry{Key: SentinelKey, Value: podStatus}))
}
