// Package hints implements C7: HintRegistry, a static process-wide mapping
// from hint tag to severity and message template, loaded once at startup.
package hints

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ralt/appstream-gen/internal/models"
)

//go:embed tags.yaml
var defaultTagsYAML []byte

// Definition is one entry of the tag-definition document.
type Definition struct {
	Tag      string `yaml:"tag"`
	Severity string `yaml:"severity"`
	Text     string `yaml:"text"`
}

// Registry is populated once at startup and read without synchronization
// thereafter (§5).
type Registry struct {
	defs map[string]resolvedDefinition
}

type resolvedDefinition struct {
	severity models.Severity
	text     string
}

// LoadDefault builds a Registry from the tag set shipped with this core.
func LoadDefault() (*Registry, error) {
	return Load(defaultTagsYAML)
}

// Load parses a tag-definition YAML document into a Registry. Unknown
// severities are rejected outright — a bad tag-definition document is a
// startup-time configuration error, not a per-item recoverable one.
func Load(data []byte) (*Registry, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("hints: parsing tag definitions: %w", err)
	}

	r := &Registry{defs: make(map[string]resolvedDefinition, len(defs))}
	for _, d := range defs {
		sev, ok := models.ParseSeverity(d.Severity)
		if !ok {
			return nil, fmt.Errorf("hints: tag %q has unknown severity %q", d.Tag, d.Severity)
		}
		r.defs[d.Tag] = resolvedDefinition{severity: sev, text: d.Text}
	}
	return r, nil
}

// Lookup returns the severity and raw template for tag, and whether it is
// registered.
func (r *Registry) Lookup(tag string) (models.Severity, string, bool) {
	d, ok := r.defs[tag]
	if !ok {
		return models.SeverityInfo, "", false
	}
	return d.severity, d.text, true
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render resolves tag to its severity and substitutes vars into its
// template, mustache-style. A missing tag is logged as an error here and
// reported via ok=false, so the caller can discard the hint from the
// summary (§4.7).
func (r *Registry) Render(tag string, vars map[string]string) (sev models.Severity, message string, ok bool) {
	d, ok := r.defs[tag]
	if !ok {
		logrus.Errorf("hints: unknown tag %q, discarding hint", tag)
		return models.SeverityInfo, "", false
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(d.text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
	return d.severity, rendered, true
}
