package highlight

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func TestParseStyleID(t *testing.T) {
	id, err := ParseStyleID(" Dev_Only ")
	require.NoError(t, err)
	require.Equal(t, StyleDevOnly, id)

	_, err = ParseStyleID("bug")
	require.ErrorContains(t, err, `unknown style "bug"`)
	require.ErrorContains(t, err, "both, buge, bugs, dev_only, fixe, fixs, sugg_only")
}

func TestNewRegistry_Defaults(t *testing.T) {
	r := NewRegistry(nil)
	require.Len(t, r.Specs(), len(AllStyles))

	require.Equal(t, "#5C1F1F", r.Style(StyleBugStart).Spec.Background)
	require.True(t, r.Style(StyleBugStart).Spec.Rounded)
	require.False(t, r.Style(StyleBoth).Spec.Rounded)
}

func TestNewRegistry_Overrides(t *testing.T) {
	r := NewRegistry(map[StyleID]Spec{
		StyleBoth:        {Background: "#123456", Foreground: "#FFFFFF"},
		StyleBugEnd:      {Rounded: false},
		StyleID("bogus"): {Background: "#000000"},
	})

	require.Equal(t, Spec{Background: "#123456", Foreground: "#FFFFFF"}, r.Style(StyleBoth).Spec)
	require.Equal(t, Spec{Background: "#1F5C1F"}, r.Style(StyleBugEnd).Spec)
	require.Len(t, r.Specs(), len(AllStyles))
}

func TestStyle_Render(t *testing.T) {
	r := NewRegistry(nil)

	out := r.Style(StyleBugStart).Render("<BUGS>")
	require.Contains(t, out, "<BUGS>")
	require.NotEqual(t, "<BUGS>", out, "style should add escape codes")

	require.Equal(t, "x", r.Style(StyleID("missing")).Render("x"))
}

func TestBindings(t *testing.T) {
	require.Len(t, MarkerBindings, 4)
	require.Len(t, ClassBindings, 3)

	seen := make(map[StyleID]bool)
	for _, b := range MarkerBindings {
		seen[b.Style] = true
		require.False(t, IsClassStyle(b.Style))
	}
	for _, b := range ClassBindings {
		seen[b.Style] = true
		require.True(t, IsClassStyle(b.Style))
	}
	require.Len(t, seen, len(AllStyles))
}
