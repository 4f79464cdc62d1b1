package analyzer

import (
	"context"

	"github.com/helmcode/kubectl-ai-harness/pkg/llm"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"github.com/helmcode/kubectl-ai-harness/pkg/parser"
	"github.com/helmcode/kubectl-ai-harness/pkg/prompts"
)

const (
	DefaultClassifyTokens = 256
	DefaultDiagnoseTokens = 4096
)

// Analyzer runs the two model calls of a scenario: classification of the pod
// status and diagnosis of the collected context.
type Analyzer struct {
	llm            llm.LLM
	classifyTokens int
	diagnoseTokens int
}

func NewWithLLM(l llm.LLM) *Analyzer {
	return &Analyzer{llm: l, classifyTokens: DefaultClassifyTokens, diagnoseTokens: DefaultDiagnoseTokens}
}

// NewWithLimits sets the token budgets; zero keeps the default.
func NewWithLimits(l llm.LLM, classifyTokens, diagnoseTokens int) *Analyzer {
	a := NewWithLLM(l)
	if classifyTokens > 0 {
		a.classifyTokens = classifyTokens
	}
	if diagnoseTokens > 0 {
		a.diagnoseTokens = diagnoseTokens
	}
	return a
}

// Classify asks the model for the failure category of a pod given its
// `kubectl get pod` output. It returns the parsed category and the raw answer.
func (a *Analyzer) Classify(ctx context.Context, podStatus string) (model.Classification, string) {
	raw := llm.Infer(ctx, a.llm, prompts.BuildClassificationPrompt(podStatus), a.classifyTokens)
	return parser.ParseClassification(raw), raw
}

// Diagnose asks for a root cause analysis of the collected context. Model
// failures come back as text.
func (a *Analyzer) Diagnose(ctx context.Context, pkg *model.ContextPackage) string {
	return llm.Infer(ctx, a.llm, prompts.BuildDiagnosisPrompt(pkg), a.diagnoseTokens)
}
