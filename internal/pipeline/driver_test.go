package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/hints"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunProcessesSliceAndAggregatesHints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages"),
		"Package: foobar\nVersion: 1.0\nFilename: pool/f/foobar_1.0_amd64.deb\nMaintainer: Jane\n\n")

	cfg := models.Config{
		RepoRoot: root,
		TmpDir:   t.TempDir(),
		Suites: []models.SuiteConfig{
			{Name: "stable", Sections: []string{"main"}, Arches: []string{"amd64"}},
		},
	}

	registry, err := hints.LoadDefault()
	require.NoError(t, err)

	desktopContents := `[Desktop Entry]
Type=Application
Name=FooBar
Categories=Network;NotARealCategory;
`

	driver := New(cfg, fetcher.New(), store.NewMemory(nil), registry, WithContentProvider(
		func(ctx context.Context, pkg models.Package) (map[string]string, error) {
			return map[string]string{"foobar.desktop": desktopContents}, nil
		}))

	results, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	summary := results[0].Summary
	require.NotNil(t, summary)
	require.Equal(t, 1, summary.TotalWarnings, "invalid category must produce exactly one warning")

	entry := summary.HintEntryFor("foobar", "foobar.desktop")
	require.Len(t, entry.Warnings, 1)
}

func TestRunSkipsUnchangedSliceOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages"),
		"Package: foobar\nVersion: 1.0\nFilename: f\nMaintainer: Jane\n\n")

	cfg := models.Config{
		RepoRoot: root,
		TmpDir:   t.TempDir(),
		Suites: []models.SuiteConfig{
			{Name: "stable", Sections: []string{"main"}, Arches: []string{"amd64"}},
		},
	}
	registry, err := hints.LoadDefault()
	require.NoError(t, err)
	s := store.NewMemory(nil)

	first := New(cfg, fetcher.New(), s, registry)
	results, err := first.Run(context.Background())
	require.NoError(t, err)
	require.False(t, results[0].Skipped)

	second := New(cfg, fetcher.New(), s, registry)
	results, err = second.Run(context.Background())
	require.NoError(t, err)
	require.True(t, results[0].Skipped)
}
