// Package genresult implements C6: GeneratorResult, the per-package
// accumulator of parsed components and raw hints.
package genresult

import "github.com/ralt/appstream-gen/internal/models"

// Result is scoped to exactly one Package: created per package, consumed
// once by the ReportAggregator. It is never shared across goroutines — the
// parse of one package is confined to a single worker's stack (§5).
type Result struct {
	Package    models.Package
	components map[string]*models.Component
	Hints      []models.Hint
}

// New creates a Result scoped to pkg.
func New(pkg models.Package) *Result {
	return &Result{
		Package:    pkg,
		components: make(map[string]*models.Component),
	}
}

// GetComponent returns the component previously added for basename, or nil.
func (r *Result) GetComponent(basename string) *models.Component {
	return r.components[basename]
}

// AddComponent attaches c under basename. At most one Component may exist
// per basename; a second call for the same basename replaces the first,
// which should not happen in practice since DesktopParser is only ever
// invoked once per basename.
func (r *Result) AddComponent(basename string, c *models.Component) {
	r.components[basename] = c
}

// Components returns every component added so far, in no particular order.
func (r *Result) Components() []*models.Component {
	out := make([]*models.Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	return out
}

// AddHint records a raw, unrendered hint against subject.
func (r *Result) AddHint(subject models.HintSubject, tag string, vars map[string]string) {
	r.Hints = append(r.Hints, models.Hint{Subject: subject, Tag: tag, Vars: vars})
}
