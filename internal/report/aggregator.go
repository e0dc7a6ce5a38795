// Package report implements C8, the ReportAggregator, plus the Renderer
// contract its output is driven through.
package report

import (
	"github.com/sirupsen/logrus"

	"github.com/ralt/appstream-gen/internal/hints"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/store"
)

// Aggregator folds persisted per-package hint blobs into a DataSummary for
// one (suite, section).
type Aggregator struct {
	store    store.Store
	registry *hints.Registry
}

// New creates an Aggregator reading hints from s and rendering them
// through registry.
func New(s store.Store, registry *hints.Registry) *Aggregator {
	return &Aggregator{store: s, registry: registry}
}

// Preprocess builds a DataSummary for (suite, section) from packages,
// reading each package's persisted hints blob, rendering its tags through
// the HintRegistry, and partitioning the results by component and
// severity.
func (a *Aggregator) Preprocess(suite, section string, packages []models.Package) *models.DataSummary {
	summary := models.NewDataSummary(suite, section)

	for _, pkg := range packages {
		pkgSummary := models.PkgSummary{
			PkgName:    pkg.Name,
			PkgVersion: pkg.Version,
			Maintainer: pkg.Maintainer,
		}

		blob, ok := a.store.GetHints(pkg.Pkid())
		if ok {
			persisted, err := decodeBlob(blob)
			if err != nil {
				logrus.Warnf("report: decoding hints blob for %s: %v", pkg.Pkid(), err)
			} else {
				a.foldHints(summary, &pkgSummary, pkg, persisted)
			}
		}

		summary.AppendPkgSummary(pkgSummary)
	}

	return summary
}

func (a *Aggregator) foldHints(summary *models.DataSummary, pkgSummary *models.PkgSummary, pkg models.Package, persisted []PersistedHint) {
	for _, h := range persisted {
		sev, message, ok := a.registry.Render(h.Tag, h.Vars)
		if !ok {
			continue
		}

		entry := summary.HintEntryFor(pkg.Name, h.ComponentID)
		entry.Arches[pkg.Architecture] = struct{}{}
		entry.Add(sev, models.RenderedHint{Tag: h.Tag, Message: message})

		switch sev {
		case models.SeverityInfo:
			pkgSummary.Infos++
			summary.TotalInfos++
		case models.SeverityWarning:
			pkgSummary.Warnings++
			summary.TotalWarnings++
		case models.SeverityError:
			pkgSummary.Errors++
			summary.TotalErrors++
		}
	}
}
