package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUnbracketedIsUnlocalized(t *testing.T) {
	d := NewDecoder()
	tag, ok := d.Decode("Name")
	require.True(t, ok)
	require.Equal(t, "C", tag)
}

func TestDecodeSimpleRegion(t *testing.T) {
	d := NewDecoder()
	tag, ok := d.Decode("Name[de_DE]")
	require.True(t, ok)
	require.Equal(t, "de_DE", tag)
}

func TestDecodeStripsUTF8Suffix(t *testing.T) {
	d := NewDecoder()
	tag, ok := d.Decode("Name[de_DE.UTF-8]")
	require.True(t, ok)
	require.Equal(t, "de_DE", tag)
}

func TestDecodeStripsIsoEncodingSuffix(t *testing.T) {
	d := NewDecoder()
	tag, ok := d.Decode("Name[de_DE.ISO8859-1]")
	require.True(t, ok)
	require.Equal(t, "de_DE", tag)
}

func TestDecodeModifier(t *testing.T) {
	d := NewDecoder()
	tag, ok := d.Decode("Name[pt_BR@latin]")
	require.True(t, ok)
	require.Equal(t, "pt_BR@latin", tag)
}

func TestDecodeInvalidTokenReturnsNotOk(t *testing.T) {
	d := NewDecoder()
	_, ok := d.Decode("Name[123]")
	require.False(t, ok)
}

func TestDecodeIsMemoized(t *testing.T) {
	d := NewDecoder()
	for i := 0; i < 3; i++ {
		tag, ok := d.Decode("Name[fr_FR]")
		require.True(t, ok)
		require.Equal(t, "fr_FR", tag)
	}
}
