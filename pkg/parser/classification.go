package parser

import (
	"regexp"
	"strings"

	"github.com/helmcode/kubectl-ai-harness/pkg/model"
)

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n|```")

// ParseClassification maps a model answer onto one of the known categories.
// Answers that match nothing are returned trimmed but otherwise verbatim so
// the caller can still show what the model said.
func ParseClassification(raw string) model.Classification {
	cleaned := strings.TrimSpace(stripFences(raw))
	candidate := strings.Trim(cleaned, " \t\r\n.`*\"'")

	for _, c := range model.Classifications() {
		if strings.EqualFold(candidate, c.String()) {
			return c
		}
	}
	return model.Classification(cleaned)
}

// stripFences removes markdown code fences such as ```json ... ```
func stripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}
