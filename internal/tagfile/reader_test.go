package tagfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextSectionAndReadField(t *testing.T) {
	input := "Package: foo\n" +
		"Version: 1.0\n" +
		"Description: short summary\n" +
		" first paragraph line 1\n" +
		" first paragraph line 2\n" +
		" .\n" +
		" second paragraph\n" +
		"\n" +
		"Package: bar\n" +
		"Version: 2.0\n"

	r := NewReader(strings.NewReader(input))

	require.True(t, r.NextSection())
	pkg, ok := r.ReadField("Package")
	require.True(t, ok)
	require.Equal(t, "foo", pkg)

	desc, ok := r.ReadField("Description")
	require.True(t, ok)
	require.Equal(t, "short summary\nfirst paragraph line 1\nfirst paragraph line 2\n.\nsecond paragraph", desc)

	_, ok = r.ReadField("Maintainer")
	require.False(t, ok)

	require.True(t, r.NextSection())
	pkg, ok = r.ReadField("Package")
	require.True(t, ok)
	require.Equal(t, "bar", pkg)

	require.False(t, r.NextSection())
}

func TestMalformedLinesAreSkippedNotFatal(t *testing.T) {
	input := " leading continuation with no key\n" +
		"Package: foo\n" +
		"not a valid line without colon\n" +
		"Version: 1.0\n"

	r := NewReader(strings.NewReader(input))
	require.True(t, r.NextSection())

	pkg, ok := r.ReadField("Package")
	require.True(t, ok)
	require.Equal(t, "foo", pkg)

	version, ok := r.ReadField("Version")
	require.True(t, ok)
	require.Equal(t, "1.0", version)

	require.False(t, r.NextSection())
}

func TestEmptyInputYieldsNoSections(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	require.False(t, r.NextSection())
}
