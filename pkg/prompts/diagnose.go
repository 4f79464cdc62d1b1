package prompts

import "github.com/helmcode/kubectl-ai-harness/pkg/model"

// DiagnosisTemplate holds one block per context key the collector can produce.
// Blocks without data are removed before the prompt is sent.
const DiagnosisTemplate = `
You are an expert Kubernetes SRE providing a detailed root cause analysis and remediation plan.
Analyze the following diagnostic data to determine the precise root cause of the failure.

### DIAGNOSTIC CONTEXT PACKAGE START ###
--- POD_DESCRIPTION ---
{pod_description}
--- END POD_DESCRIPTION ---

--- NODE_DESCRIPTIONS ---
{node_descriptions}
--- END NODE_DESCRIPTIONS ---

--- CONFIGMAPS_IN_NAMESPACE ---
{configmaps_in_namespace}
--- END CONFIGMAPS_IN_NAMESPACE ---

--- INIT_CONTAINER_LOGS ---
{init_container_logs}
--- END INIT_CONTAINER_LOGS ---

--- CONTAINER_LOGS ---
{container_logs}
--- END CONTAINER_LOGS ---

--- SERVICE_ENDPOINTS ---
{service_endpoints}
--- END SERVICE_ENDPOINTS ---
### DIAGNOSTIC CONTEXT PACKAGE END ###

Provide:
1.  **Root Cause:** A concise explanation of the failure.
2.  **Detailed Analysis:** An in-depth explanation of the evidence.
3.  **Remediation Plan:** Step-by-step instructions with corrected YAML or commands.
`

var diagnosisTemplate = Parse(DiagnosisTemplate)

// BuildDiagnosisPrompt fills the diagnosis template from the collected context.
func BuildDiagnosisPrompt(pkg *model.ContextPackage) string {
	return diagnosisTemplate.Assemble(pkg)
}
