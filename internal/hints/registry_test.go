package hints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralt/appstream-gen/internal/models"
)

func TestLoadDefaultAndRender(t *testing.T) {
	r, err := LoadDefault()
	require.NoError(t, err)

	sev, msg, ok := r.Render("category-name-invalid", map[string]string{"category": "NotARealCategory"})
	require.True(t, ok)
	require.Equal(t, models.SeverityWarning, sev)
	require.Contains(t, msg, "NotARealCategory")
}

func TestRenderUnknownTagFails(t *testing.T) {
	r, err := LoadDefault()
	require.NoError(t, err)

	_, _, ok := r.Render("no-such-tag", nil)
	require.False(t, ok)
}

func TestLoadRejectsUnknownSeverity(t *testing.T) {
	_, err := Load([]byte(`- tag: x
  severity: catastrophic
  text: boom
`))
	require.Error(t, err)
}

func TestRenderLeavesUnmatchedPlaceholder(t *testing.T) {
	r, err := Load([]byte(`- tag: t
  severity: info
  text: "value is {{missing}}"
`))
	require.NoError(t, err)

	_, msg, ok := r.Render("t", nil)
	require.True(t, ok)
	require.Equal(t, "value is {{missing}}", msg)
}
