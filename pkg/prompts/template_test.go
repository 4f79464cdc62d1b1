package prompts

import (
	"strings"
	"testing"

	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"github.com/stretchr/testify/assert"
)

const twoBlockTemplate = `Header
--- ALPHA ---
{alpha}
--- END ALPHA ---

--- BETA ---
{beta}
--- END BETA ---

Footer {alpha}
`

func pkgOf(kv ...string) *model.ContextPackage {
	b := model.NewBuilder()
	for i := 0; i+1 < len(kv); i += 2 {
		b.Set(kv[i], kv[i+1])
	}
	return b.Build()
}

func TestAssembleRemovesUnfilledBlocks(t *testing.T) {
	out := Assemble(twoBlockTemplate, pkgOf("alpha", "A-VALUE"))

	assert.Equal(t, "Header\n--- ALPHA ---\nA-VALUE\n--- END ALPHA ---\n\nFooter A-VALUE\n", out)
	assert.NotContains(t, out, "BETA")
	assert.NotContains(t, out, "{beta}")
}

func TestAssembleAllBlocksFilled(t *testing.T) {
	out := Assemble(twoBlockTemplate, pkgOf("alpha", "a", "beta", "b"))
	assert.Equal(t, "Header\n--- ALPHA ---\na\n--- END ALPHA ---\n\n--- BETA ---\nb\n--- END BETA ---\n\nFooter a\n", out)
}

func TestAssembleIsIdempotent(t *testing.T) {
	pkgs := []*model.ContextPackage{
		pkgOf(),
		pkgOf("alpha", "first\nsecond"),
		pkgOf("beta", ""),
		pkgOf("alpha", "a", "beta", "b"),
	}
	for _, c := range pkgs {
		once := Assemble(twoBlockTemplate, c)
		assert.Equal(t, once, Assemble(twoBlockTemplate, c))
		if !strings.Contains(once, "{") {
			assert.Equal(t, once, Assemble(once, c))
		}
	}
}

func TestAssembleSingleSubstitution(t *testing.T) {
	tmpl := "--- POD DATA ---\n{kubectl_get_pod_output}\n--- END POD DATA ---\n--- OTHER ---\n{other}\n--- END OTHER ---\n"
	out := Assemble(tmpl, pkgOf(SentinelKey, "Pending"))

	assert.Equal(t, "--- POD DATA ---\nPending\n--- END POD DATA ---\n--- OTHER ---\n{other}\n--- END OTHER ---\n", out)
}

func TestAssembleOnlySentinelPlaceholder(t *testing.T) {
	out := Assemble("{kubectl_get_pod_output}", pkgOf(SentinelKey, "Pending"))
	assert.Equal(t, "Pending", out)
}

func TestParseKeepsMalformedText(t *testing.T) {
	tests := []string{
		"no placeholders at all",
		"json { \"a\": 1 } and {Upper} and {",
		"--- BROKEN ---\n{key}\n--- END OTHER ---\n",
		"--- END ALPHA ---\n{alpha}\n--- END END ALPHA ---\n",
	}
	for _, text := range tests {
		assert.Equal(t, text, Parse(text).Assemble(pkgOf("unrelated", "x")), text)
	}
}

func TestTemplateKeys(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta"}, Parse(twoBlockTemplate).Keys())
	assert.Equal(t, []string{SentinelKey}, Parse(ClassificationTemplate).Keys())
}

func TestAssembleMultiBlockAbsentNotError(t *testing.T) {
	out := Assemble("x {missing} y", pkgOf("alpha", "a"))
	assert.Equal(t, "x {missing} y", out)
}
