// Package pipeline wires C1-C9 into the batch run the CLI drives: one
// (suite, section, arch) slice at a time, a worker pool fanning out over
// the packages within a slice.
package pipeline

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ralt/appstream-gen/internal/desktopentry"
	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/genresult"
	"github.com/ralt/appstream-gen/internal/hints"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/pkgindex"
	"github.com/ralt/appstream-gen/internal/report"
	"github.com/ralt/appstream-gen/internal/stats"
	"github.com/ralt/appstream-gen/internal/store"
)

// ContentProvider returns the desktop-entry files (basename -> raw
// contents) carried by pkg. Opening a package archive and walking its
// member files is an external collaborator this core does not implement
// (§1 carves out "any network transport used by the file fetcher" and is
// silent on archive internals beyond the index/translation files C5
// fetches); production callers inject a real provider, tests inject a
// fixture map.
type ContentProvider func(ctx context.Context, pkg models.Package) (map[string]string, error)

func noContent(context.Context, models.Package) (map[string]string, error) { return nil, nil }

// Driver runs the metadata-extraction and reporting pipeline over a
// workspace's configured suites.
type Driver struct {
	cfg      models.Config
	index    *pkgindex.Index
	store    store.Store
	registry *hints.Registry
	content  ContentProvider

	concurrency int
}

// Option configures a Driver.
type Option func(*Driver)

// WithContentProvider overrides how desktop-entry file contents are
// obtained for a package. Defaults to a provider that yields none.
func WithContentProvider(p ContentProvider) Option {
	return func(d *Driver) { d.content = p }
}

// WithConcurrency overrides the worker pool size for a slice. Defaults to 4.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// New creates a Driver over cfg, backed by f for fetching and s for
// persistence, rendering hints through registry.
func New(cfg models.Config, f *fetcher.Fetcher, s store.Store, registry *hints.Registry, opts ...Option) *Driver {
	d := &Driver{
		cfg:         cfg,
		index:       pkgindex.New(f, s, cfg),
		store:       s,
		registry:    registry,
		content:     noContent,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SliceResult is what one (suite, section, arch) slice's run produced,
// handed to the caller for rendering.
type SliceResult struct {
	Suite, Section, Arch string
	Summary               *models.DataSummary
	Skipped                bool
}

// Run walks every configured suite/section/arch coordinate, processing one
// slice at a time (§5: "one slice at a time is processed sequentially"),
// and returns each slice's aggregated summary.
func (d *Driver) Run(ctx context.Context) ([]SliceResult, error) {
	var results []SliceResult

	for _, suite := range d.cfg.Suites {
		for _, section := range suite.Sections {
			for _, arch := range suite.Arches {
				result, err := d.runSlice(ctx, suite.Name, section, arch)
				if err != nil {
					if pe, ok := err.(*models.PipelineError); ok && pe.Class == models.ClassFatal {
						return results, err
					}
					logrus.Warnf("pipeline: skipping slice %s/%s/%s: %v", suite.Name, section, arch, err)
					continue
				}
				results = append(results, result)
			}
		}
	}
	return results, nil
}

func (d *Driver) runSlice(ctx context.Context, suite, section, arch string) (SliceResult, error) {
	changed, err := d.index.HasChanges(ctx, suite, section, arch)
	if err != nil {
		return SliceResult{}, &models.PipelineError{Class: models.ClassSliceLevel, Component: "PackageIndex", Err: err}
	}
	if !changed {
		logrus.Infof("pipeline: %s/%s/%s unchanged, skipping", suite, section, arch)
		return SliceResult{Suite: suite, Section: section, Arch: arch, Skipped: true}, nil
	}

	packages, err := d.index.PackagesFor(ctx, suite, section, arch)
	if err != nil {
		return SliceResult{}, &models.PipelineError{Class: models.ClassSliceLevel, Component: "PackageIndex", Err: err}
	}

	d.processPackages(ctx, packages)

	agg := report.New(d.store, d.registry)
	summary := agg.Preprocess(suite, section, packages)
	return SliceResult{Suite: suite, Section: section, Arch: arch, Summary: summary}, nil
}

// processPackages fans out a worker pool over packages, parsing each
// package's desktop-entry files and persisting the resulting hints blob.
func (d *Driver) processPackages(ctx context.Context, packages []models.Package) {
	jobs := make(chan models.Package)
	var wg sync.WaitGroup

	for i := 0; i < d.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parser := desktopentry.New(d.cfg.FormatVersion)
			for pkg := range jobs {
				d.processPackage(ctx, parser, pkg)
			}
		}()
	}

	for _, pkg := range packages {
		jobs <- pkg
	}
	close(jobs)
	wg.Wait()
}

func (d *Driver) processPackage(ctx context.Context, parser *desktopentry.Parser, pkg models.Package) {
	result := genresult.New(pkg)

	files, err := d.content(ctx, pkg)
	if err != nil {
		logrus.Warnf("pipeline: reading contents of %s: %v", pkg.Filename, err)
	}
	for basename, contents := range files {
		parser.Parse(result, basename, contents, false)
	}

	blob, err := report.EncodeResult(result)
	if err != nil {
		logrus.Warnf("pipeline: encoding hints for %s: %v", pkg.Pkid(), err)
		return
	}
	if err := d.store.SetHints(pkg.Pkid(), blob); err != nil {
		logrus.Warnf("pipeline: persisting hints for %s: %v", pkg.Pkid(), err)
	}
}

// RecordStatistics appends one StatsStore sample per non-skipped slice
// result.
func RecordStatistics(st *stats.Store, results []SliceResult) error {
	for _, r := range results {
		if r.Skipped || r.Summary == nil {
			continue
		}
		sample := stats.NewSample(r.Suite, r.Section, r.Summary.TotalInfos, r.Summary.TotalWarnings, r.Summary.TotalErrors)
		if err := st.AddStatistics(sample); err != nil {
			return err
		}
	}
	return nil
}
