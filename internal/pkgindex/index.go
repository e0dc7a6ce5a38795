// Package pkgindex implements C5: PackageIndex, which enumerates packages
// for a (suite, section, arch) coordinate, correlates their long
// descriptions across languages, and detects changes against a persisted
// timestamp.
package pkgindex

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/store"
	"github.com/ralt/appstream-gen/internal/tagfile"
	"github.com/ralt/appstream-gen/internal/utils"
)

// Index enumerates and caches packages for a workspace's repository.
// pkgCache and indexChanged share a single mutex, taken by readers and
// writers alike, rather than one lock per entry.
type Index struct {
	fetcher *fetcher.Fetcher
	store   store.Store
	cfg     models.Config

	mu           sync.Mutex
	pkgCache     map[string][]models.Package
	indexChanged map[string]bool
}

// New creates an Index over the given fetcher, store, and configuration.
func New(f *fetcher.Fetcher, s store.Store, cfg models.Config) *Index {
	return &Index{
		fetcher:      f,
		store:        s,
		cfg:          cfg,
		pkgCache:     make(map[string][]models.Package),
		indexChanged: make(map[string]bool),
	}
}

func sliceKey(suite, section, arch string) string {
	return fmt.Sprintf("%s/%s/%s", suite, section, arch)
}

// FindTranslations downloads suite's signed release manifest and returns
// the ordered, deduplicated list of languages it advertises translation
// files for, defaulting to ["en"] on any error.
func (idx *Index) FindTranslations(ctx context.Context, suite, section string) []string {
	body, verifyErr, err := fetchRelease(ctx, idx.fetcher, idx.cfg.RepoRoot, idx.cfg.TmpDir, suite, idx.cfg.SigningKeyring)
	if err != nil {
		logrus.Warnf("pkgindex: fetching InRelease for %s: %v", suite, err)
		return []string{"en"}
	}
	if verifyErr != nil {
		logrus.Warnf("pkgindex: InRelease signature for %s could not be verified: %v", suite, verifyErr)
	}

	langs := parseTranslationLanguages(body)
	if len(langs) == 0 {
		return []string{"en"}
	}
	return langs
}

// getIndexFile resolves the binary package list for (suite, section, arch)
// via the Fetcher, trying each compression extension in turn.
func (idx *Index) getIndexFile(ctx context.Context, suite, section, arch string) (string, error) {
	template := fmt.Sprintf("dists/%s/%s/binary-%s/Packages.%%ext%%", suite, section, arch)
	return idx.fetcher.Fetch(ctx, idx.cfg.RepoRoot, idx.cfg.TmpDir, template)
}

// openTagFile reads path's full contents and decompresses them according to
// the extension the Fetcher resolved it under, before handing the plaintext
// to a tagfile.Reader. The Fetcher only ever returns a path for an extension
// it already matched, so the suffix is authoritative.
func openTagFile(path string) (*tagfile.Reader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	plain, err := utils.Decompress(ext, raw)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return tagfile.NewReader(bytes.NewReader(plain)), nil
}

// LoadPackages opens the resolved index with a TagFileReader, builds
// Package records from its sections, drops invalid entries with a warning,
// and correlates long descriptions across every language the suite
// advertises.
func (idx *Index) LoadPackages(ctx context.Context, suite, section, arch string) ([]models.Package, error) {
	indexPath, err := idx.getIndexFile(ctx, suite, section, arch)
	if err != nil {
		return nil, fmt.Errorf("resolving package index for %s/%s/%s: %w", suite, section, arch, err)
	}

	reader, err := openTagFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("opening package index %s: %w", indexPath, err)
	}
	defer reader.Close()

	var packages []models.Package
	for reader.NextSection() {
		name, _ := reader.ReadField("Package")
		version, _ := reader.ReadField("Version")
		filename, _ := reader.ReadField("Filename")
		maintainer, _ := reader.ReadField("Maintainer")

		pkg := models.Package{
			Name:         name,
			Version:      version,
			Architecture: arch,
			Filename:     filename,
			Maintainer:   maintainer,
			LongDesc:     make(map[string]string),
		}
		if !pkg.Valid() {
			logrus.Warnf("pkgindex: dropping invalid package entry %q in %s", name, indexPath)
			continue
		}
		packages = append(packages, pkg)
	}

	languages := idx.FindTranslations(ctx, suite, section)
	idx.loadPackageLongDescs(ctx, suite, section, languages, packages)
	return packages, nil
}

// loadPackageLongDescs iterates languages, fetching and parsing each
// Translation-<lang> file and distributing rendered descriptions onto the
// matching package by name.
func (idx *Index) loadPackageLongDescs(ctx context.Context, suite, section string, languages []string, packages []models.Package) {
	byName := make(map[string]*models.Package, len(packages))
	for i := range packages {
		byName[packages[i].Name] = &packages[i]
	}

	for _, lang := range languages {
		template := fmt.Sprintf("dists/%s/%s/i18n/Translation-%s.%%ext%%", suite, section, lang)
		path, err := idx.fetcher.Fetch(ctx, idx.cfg.RepoRoot, idx.cfg.TmpDir, template)
		if err != nil {
			logrus.Infof("pkgindex: no translation file for language %q in %s/%s: %v", lang, suite, section, err)
			continue
		}

		reader, err := openTagFile(path)
		if err != nil {
			logrus.Warnf("pkgindex: opening translation file %s: %v", path, err)
			continue
		}

		for reader.NextSection() {
			name, ok := reader.ReadField("Package")
			if !ok {
				continue
			}
			pkg, ok := byName[name]
			if !ok {
				continue
			}
			raw, ok := reader.ReadField("Description-" + lang)
			if !ok {
				continue
			}

			rendered := renderLongDesc(raw)
			pkg.LongDesc[lang] = rendered
			if lang == "en" {
				pkg.LongDesc[models.Unlocalized] = rendered
			}
		}
		reader.Close()
	}
}

// renderLongDesc folds a raw Description-<lang> field's continuation lines
// into HTML paragraphs. The first line is the short summary and is
// discarded; a lone "." introduces a paragraph break; contiguous content
// lines within a paragraph are joined with single spaces; each paragraph is
// XML-escaped before being wrapped in <p>…</p>.
func renderLongDesc(raw string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, " ")
		paragraphs = append(paragraphs, "<p>"+html.EscapeString(joined)+"</p>")
		current = nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "." {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n")
}

// HasChanges compares the index file's modification time against the
// timestamp previously persisted for (suite, section, arch). The result is
// memoized per instance under the (suite, section, arch) coordinate, not
// under the resolved index path; a memoized call returns at once, without
// resolving or stat-ing the index file and without writing a timestamp.
// Otherwise the new timestamp (0 when the index file is absent) is written
// back unconditionally before returning.
func (idx *Index) HasChanges(ctx context.Context, suite, section, arch string) (bool, error) {
	key := sliceKey(suite, section, arch)

	idx.mu.Lock()
	if changed, ok := idx.indexChanged[key]; ok {
		idx.mu.Unlock()
		return changed, nil
	}
	idx.mu.Unlock()

	indexPath, err := idx.getIndexFile(ctx, suite, section, arch)
	if err != nil {
		idx.recordChanged(key, true)
		idx.persistMtime(suite, section, arch, 0)
		return true, nil
	}

	stat, err := os.Stat(indexPath)
	if err != nil {
		idx.recordChanged(key, true)
		idx.persistMtime(suite, section, arch, 0)
		return true, nil
	}
	mtime := stat.ModTime().Unix()

	prev, hadPrev := idx.store.GetRepoInfo(suite, section, arch)
	changed := !hadPrev || prev.Mtime != mtime

	idx.persistMtime(suite, section, arch, mtime)
	idx.recordChanged(key, changed)
	return changed, nil
}

func (idx *Index) recordChanged(key string, changed bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.indexChanged[key] = changed
}

func (idx *Index) persistMtime(suite, section, arch string, mtime int64) {
	if err := idx.store.SetRepoInfo(suite, section, arch, models.RepoInfo{Mtime: mtime}); err != nil {
		logrus.Warnf("pkgindex: persisting repo info for %s/%s/%s: %v", suite, section, arch, err)
	}
}

// PackagesFor returns the cached package vector for (suite, section, arch),
// loading it on first access.
func (idx *Index) PackagesFor(ctx context.Context, suite, section, arch string) ([]models.Package, error) {
	key := sliceKey(suite, section, arch)

	idx.mu.Lock()
	if cached, ok := idx.pkgCache[key]; ok {
		idx.mu.Unlock()
		return cached, nil
	}
	idx.mu.Unlock()

	packages, err := idx.LoadPackages(ctx, suite, section, arch)
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	idx.pkgCache[key] = packages
	idx.mu.Unlock()
	return packages, nil
}

// Release clears both the package and change-detection caches, forcing the
// next PackagesFor/HasChanges call to reload from the repository.
func (idx *Index) Release() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pkgCache = make(map[string][]models.Package)
	idx.indexChanged = make(map[string]bool)
}
