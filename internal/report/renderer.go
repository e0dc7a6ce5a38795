package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ralt/appstream-gen/internal/models"
)

// Context is the name-indexed rendering context the Renderer contract
// operates on: values resolve to strings, ordered sub-contexts (for
// iteration), or functions. The HTML template engine itself is an external
// collaborator (out of scope); only this substitution contract is.
type Context map[string]interface{}

// Renderer drives a named template against a Context. The real
// implementation (a full HTML templating engine with section/iteration
// semantics) lives outside this core; Renderer is the seam it plugs into.
type Renderer interface {
	Render(templateText string, ctx Context) (string, error)
}

// StubRenderer is a minimal, stdlib text/template-backed Renderer used by
// tests and as the CLI's default. It supports string values and ordered
// sub-context iteration via {{range}}; function values bound in a Context
// are exposed as zero-argument template funcs rather than true
// content-receiving lambdas, since text/template evaluates its data tree
// before invoking any func — a known narrowing of the general contract,
// recorded in DESIGN.md.
type StubRenderer struct{}

// Render parses templateText and executes it against ctx.
func (StubRenderer) Render(templateText string, ctx Context) (string, error) {
	funcs := template.FuncMap{}
	for k, v := range ctx {
		if fn, ok := v.(func() string); ok {
			funcs[k] = fn
		}
	}

	tmpl, err := template.New("page").Funcs(funcs).Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("report: parsing template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("report: executing template: %w", err)
	}
	return buf.String(), nil
}

// PackageContext builds the per-package-page Context for one package's
// PkgSummary and component HintEntries, setting presence-marker keys only
// when their corresponding count is positive — the only conditional
// mechanism the template contract requires.
func PackageContext(summary models.PkgSummary, entries map[string]*models.HintEntry, rootURL string) Context {
	ctx := Context{
		"pkg_name":    summary.PkgName,
		"pkg_version": summary.PkgVersion,
		"maintainer":  summary.Maintainer,
		"root_url":    rootURL,
		"infos_count": summary.Infos,
		"warnings_count": summary.Warnings,
		"errors_count":   summary.Errors,
	}
	setPresenceMarkers(ctx, "infos", summary.Infos)
	setPresenceMarkers(ctx, "warnings", summary.Warnings)
	setPresenceMarkers(ctx, "errors", summary.Errors)

	var components []Context
	for id, entry := range entries {
		components = append(components, componentContext(id, entry))
	}
	ctx["components"] = components
	return ctx
}

func componentContext(id string, entry *models.HintEntry) Context {
	ctx := Context{
		"component_id":    id,
		"infos_count":     len(entry.Infos),
		"warnings_count":  len(entry.Warnings),
		"errors_count":    len(entry.Errors),
		"infos":           renderedHintContexts(entry.Infos),
		"warnings":        renderedHintContexts(entry.Warnings),
		"errors":          renderedHintContexts(entry.Errors),
	}
	setPresenceMarkers(ctx, "infos", len(entry.Infos))
	setPresenceMarkers(ctx, "warnings", len(entry.Warnings))
	setPresenceMarkers(ctx, "errors", len(entry.Errors))
	return ctx
}

func renderedHintContexts(hints []models.RenderedHint) []Context {
	out := make([]Context, 0, len(hints))
	for _, h := range hints {
		out = append(out, Context{"tag": h.Tag, "message": h.Message})
	}
	return out
}

// setPresenceMarkers sets "has_<name>" and "has_<name>_count" on ctx only
// when count is positive.
func setPresenceMarkers(ctx Context, name string, count int) {
	if count <= 0 {
		return
	}
	ctx["has_"+name] = true
	ctx["has_"+name+"_count"] = true
}

// MaintainerIndexContext builds the top-level index Context for one
// (suite, section): maintainers iterate their package summaries. rootURL
// is injected as "root_url" on every rendered page, per §6's configuration
// contract (htmlBaseUrl -> root_url).
func MaintainerIndexContext(summary *models.DataSummary, rootURL string) Context {
	ctx := Context{
		"suite":          summary.Suite,
		"section":        summary.Section,
		"root_url":       rootURL,
		"total_infos":    summary.TotalInfos,
		"total_warnings": summary.TotalWarnings,
		"total_errors":   summary.TotalErrors,
	}
	setPresenceMarkers(ctx, "errors", summary.TotalErrors)
	setPresenceMarkers(ctx, "warnings", summary.TotalWarnings)
	setPresenceMarkers(ctx, "infos", summary.TotalInfos)

	var maintainers []Context
	for maintainer, pkgs := range summary.PkgSummaries {
		var pkgCtxs []Context
		for _, p := range pkgs {
			pkgCtxs = append(pkgCtxs, Context{
				"pkg_name":    p.PkgName,
				"pkg_version": p.PkgVersion,
				"infos":       p.Infos,
				"warnings":    p.Warnings,
				"errors":      p.Errors,
			})
		}
		maintainers = append(maintainers, Context{
			"maintainer": maintainer,
			"packages":   pkgCtxs,
		})
	}
	ctx["maintainers"] = maintainers
	return ctx
}
