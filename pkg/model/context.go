package model

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Context keys produced by the collector and consumed by the prompt templates.
const (
	KeyPodStatus        = "kubectl_get_pod_output"
	KeyPodDescription   = "pod_description"
	KeyNodeDescriptions = "node_descriptions"
	KeyConfigMaps       = "configmaps_in_namespace"
	KeyInitLogs         = "init_container_logs"
	KeyContainerLogs    = "container_logs"
	KeyEndpoints        = "service_endpoints"
)

// ContextPackage is an ordered set of named diagnostic texts.
type ContextPackage struct {
	keys   []string
	values map[string]string
}

// Entry is a single key/value pair of a ContextPackage.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// NewContextPackage builds a package from key/value pairs. Later duplicates
// overwrite the value but keep the first position.
func NewContextPackage(entries ...Entry) *ContextPackage {
	p := &ContextPackage{values: make(map[string]string, len(entries))}
	for _, e := range entries {
		p.set(e.Key, e.Value)
	}
	return p
}

func (p *ContextPackage) set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it was present.
func (p *ContextPackage) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *ContextPackage) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (p *ContextPackage) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *ContextPackage) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Entries returns the pairs in insertion order.
func (p *ContextPackage) Entries() []Entry {
	if p == nil {
		return nil
	}
	out := make([]Entry, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, Entry{Key: k, Value: p.values[k]})
	}
	return out
}

// String renders the package the way it is shown to the operator.
func (p *ContextPackage) String() string {
	var b strings.Builder
	for _, e := range p.Entries() {
		b.WriteString("--- " + strings.ToUpper(e.Key) + " ---\n")
		b.WriteString(e.Value)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func (p *ContextPackage) MarshalJSON() ([]byte, error) {
	entries := p.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

func (p *ContextPackage) MarshalYAML() (interface{}, error) {
	return p.Entries(), nil
}

var _ yaml.Marshaler = (*ContextPackage)(nil)

// Builder accumulates entries for a ContextPackage.
type Builder struct {
	pkg *ContextPackage
}

func NewBuilder() *Builder {
	return &Builder{pkg: NewContextPackage()}
}

// Set records value under key.
func (b *Builder) Set(key, value string) *Builder {
	b.pkg.set(key, value)
	return b
}

// Get reads back a value already recorded in the builder.
func (b *Builder) Get(key string) string {
	v, _ := b.pkg.Get(key)
	return v
}

// Build returns the finished package. The builder must not be used afterwards.
func (b *Builder) Build() *ContextPackage {
	p := b.pkg
	b.pkg = nil
	return p
}
