package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralt/appstream-gen/internal/models"
)

func TestStubRendererSubstitutesAndIterates(t *testing.T) {
	ctx := Context{
		"pkg_name": "foobar",
		"components": []Context{
			{"component_id": "a"},
			{"component_id": "b"},
		},
	}

	out, err := StubRenderer{}.Render(`{{.pkg_name}}: {{range .components}}{{.component_id}} {{end}}`, ctx)
	require.NoError(t, err)
	require.Equal(t, "foobar: a b ", out)
}

func TestPackageContextPresenceMarkersOnlyWhenPositive(t *testing.T) {
	summary := models.PkgSummary{PkgName: "foobar", Warnings: 1}
	ctx := PackageContext(summary, nil, "https://example.com")

	require.Equal(t, true, ctx["has_warnings"])
	_, hasErrors := ctx["has_errors"]
	require.False(t, hasErrors, "zero-count severity must not set a presence marker")
}
