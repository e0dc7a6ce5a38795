package pkgindex

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseTranslationLanguagesDedupAndOrder(t *testing.T) {
	content := "Translation-en\nTranslation-de\nTranslation-de\nTranslation-fr\n"
	require.Equal(t, []string{"en", "de", "fr"}, parseTranslationLanguages([]byte(content)))
}

func TestRenderLongDescParagraphing(t *testing.T) {
	raw := "short\nfirst paragraph line 1\nfirst paragraph line 2\n.\nsecond paragraph"
	got := renderLongDesc(raw)
	want := "<p>first paragraph line 1 first paragraph line 2</p>\n<p>second paragraph</p>"
	require.Equal(t, want, got)
}

func TestRenderLongDescEscapesXML(t *testing.T) {
	raw := "short\nuses <b>bold</b> & \"quotes\""
	got := renderLongDesc(raw)
	require.Equal(t, "<p>uses &lt;b&gt;bold&lt;/b&gt; &amp; &#34;quotes&#34;</p>", got)
}

func newTestIndex(t *testing.T, root string) *Index {
	t.Helper()
	cfg := models.Config{RepoRoot: root, TmpDir: t.TempDir()}
	return New(fetcher.New(), store.NewMemory(nil), cfg)
}

func TestLoadPackagesBuildsAndCorrelatesDescriptions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages"), ""+
		"Package: foobar\nVersion: 1.0\nFilename: pool/f/foobar_1.0_amd64.deb\nMaintainer: Jane <jane@example.com>\n\n"+
		"Package: invalid-entry\nVersion: 1.0\n\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/i18n/Translation-en"), ""+
		"Package: foobar\nDescription-en: short summary\n first line of description\n .\n second paragraph\n")

	idx := newTestIndex(t, root)
	packages, err := idx.LoadPackages(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.Len(t, packages, 1, "invalid entry missing filename must be dropped")

	pkg := packages[0]
	require.Equal(t, "foobar", pkg.Name)
	require.Equal(t, "<p>first line of description</p>\n<p>second paragraph</p>", pkg.LongDesc["en"])
	require.Equal(t, pkg.LongDesc["en"], pkg.LongDesc[models.Unlocalized], "en descriptions are also stored under C")
}

func TestLoadPackagesDecompressesGzippedIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")

	packagesContent := "Package: foobar\nVersion: 1.0\nFilename: pool/f/foobar_1.0_amd64.deb\nMaintainer: Jane <jane@example.com>\n\n"
	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	_, err := gw.Write([]byte(packagesContent))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages.gz"), gzBuf.String())

	idx := newTestIndex(t, root)
	packages, err := idx.LoadPackages(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "foobar", packages[0].Name)
	require.Equal(t, "1.0", packages[0].Version)
}

func TestLoadPackagesDecompressesXzIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")

	packagesContent := "Package: foobar\nVersion: 2.0\nFilename: pool/f/foobar_2.0_amd64.deb\nMaintainer: Jane <jane@example.com>\n\n"
	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write([]byte(packagesContent))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages.xz"), xzBuf.String())

	idx := newTestIndex(t, root)
	packages, err := idx.LoadPackages(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.Len(t, packages, 1)
	require.Equal(t, "foobar", packages[0].Name)
	require.Equal(t, "2.0", packages[0].Version)
}

func TestHasChangesIdempotence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages"), "Package: a\nVersion: 1\nFilename: f\n\n")

	idx := newTestIndex(t, root)

	changed, err := idx.HasChanges(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.True(t, changed, "first observation with no prior timestamp must report a change")

	idx.Release()
	changed, err = idx.HasChanges(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.False(t, changed, "second observation with no mtime change must report no change")
}

func TestPackagesForCachesUntilRelease(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dists/stable/InRelease"), "Translation-en\n")
	writeFile(t, filepath.Join(root, "dists/stable/main/binary-amd64/Packages"), "Package: a\nVersion: 1\nFilename: f\n\n")

	idx := newTestIndex(t, root)
	first, err := idx.PackagesFor(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "dists/stable/main/binary-amd64")))

	cached, err := idx.PackagesFor(context.Background(), "stable", "main", "amd64")
	require.NoError(t, err)
	require.Equal(t, first, cached, "cached vector must survive the index file disappearing")
}
