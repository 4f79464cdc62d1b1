package prompts

import (
	"strings"

	"github.com/helmcode/kubectl-ai-harness/pkg/model"
)

// SentinelKey switches assembly to single substitution: only its placeholder
// is replaced and blocks are left alone.
const SentinelKey = model.KeyPodStatus

type segmentKind int

const (
	literalSegment segmentKind = iota
	placeholderSegment
	blockSegment
)

// segment is one node of a parsed template. Blocks look like
//
//	--- LABEL ---
//	{key}
//	--- END LABEL ---
//
// and own the blank line that follows them, if any.
type segment struct {
	kind    segmentKind
	text    string
	key     string
	header  string
	footer  string
	trailer string
}

// Template is a prompt split into literal text, inline placeholders and
// labelled blocks.
type Template struct {
	raw      string
	segments []segment
}

// Parse splits text into segments. It never fails: anything that is not a
// well formed placeholder or block is kept as literal text.
func Parse(text string) *Template {
	t := &Template{raw: text}
	lines := strings.SplitAfter(text, "\n")

	for i := 0; i < len(lines); i++ {
		if i+2 < len(lines) {
			if seg, ok := parseBlock(lines[i], lines[i+1], lines[i+2]); ok {
				i += 2
				if i+1 < len(lines) && lines[i+1] == "\n" {
					seg.trailer = "\n"
					i++
				}
				t.segments = append(t.segments, seg)
				continue
			}
		}
		t.appendLine(lines[i])
	}
	return t
}

// Keys lists the placeholder keys in order of first appearance.
func (t *Template) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, s := range t.segments {
		if s.kind == literalSegment || seen[s.key] {
			continue
		}
		seen[s.key] = true
		keys = append(keys, s.key)
	}
	return keys
}

// Assemble fills the template from c. Blocks whose key is missing are
// dropped whole; inline placeholders without a value stay as they are.
func (t *Template) Assemble(c *model.ContextPackage) string {
	if v, ok := c.Get(SentinelKey); ok {
		return strings.ReplaceAll(t.raw, placeholder(SentinelKey), v)
	}

	var b strings.Builder
	for _, s := range t.segments {
		switch s.kind {
		case literalSegment:
			b.WriteString(s.text)
		case placeholderSegment:
			if v, ok := c.Get(s.key); ok {
				b.WriteString(v)
			} else {
				b.WriteString(s.text)
			}
		case blockSegment:
			v, ok := c.Get(s.key)
			if !ok {
				continue
			}
			b.WriteString(s.header)
			b.WriteString(v)
			b.WriteString("\n")
			b.WriteString(s.footer)
			b.WriteString(s.trailer)
		}
	}
	return b.String()
}

// Assemble parses text and fills it from c.
func Assemble(text string, c *model.ContextPackage) string {
	return Parse(text).Assemble(c)
}

func (t *Template) appendLine(line string) {
	rest := line
	for rest != "" {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			t.appendLiteral(rest)
			return
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			t.appendLiteral(rest)
			return
		}
		end += start
		key := rest[start+1 : end]
		if !validKey(key) {
			t.appendLiteral(rest[:start+1])
			rest = rest[start+1:]
			continue
		}
		t.appendLiteral(rest[:start])
		t.segments = append(t.segments, segment{kind: placeholderSegment, key: key, text: rest[start : end+1]})
		rest = rest[end+1:]
	}
}

func (t *Template) appendLiteral(text string) {
	if text == "" {
		return
	}
	if n := len(t.segments); n > 0 && t.segments[n-1].kind == literalSegment {
		t.segments[n-1].text += text
		return
	}
	t.segments = append(t.segments, segment{kind: literalSegment, text: text})
}

func parseBlock(header, body, footer string) (segment, bool) {
	label, ok := markerLabel(header)
	if !ok || strings.HasPrefix(label, "END ") {
		return segment{}, false
	}
	endLabel, ok := markerLabel(footer)
	if !ok || endLabel != "END "+label {
		return segment{}, false
	}
	key := strings.TrimSuffix(body, "\n")
	if len(key) < 3 || key[0] != '{' || key[len(key)-1] != '}' || !validKey(key[1:len(key)-1]) {
		return segment{}, false
	}
	return segment{
		kind:   blockSegment,
		key:    key[1 : len(key)-1],
		text:   header + body + footer,
		header: header,
		footer: footer,
	}, true
}

// markerLabel returns LABEL for a line of the form "--- LABEL ---".
func markerLabel(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasPrefix(line, "--- ") || !strings.HasSuffix(line, " ---") || len(line) <= 8 {
		return "", false
	}
	label := line[4 : len(line)-4]
	for _, r := range label {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == ' ') {
			return "", false
		}
	}
	return label, label != ""
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

func placeholder(key string) string {
	return "{" + key + "}"
}
