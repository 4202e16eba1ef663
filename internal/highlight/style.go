package highlight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StyleID names one of the seven highlight treatments.
type StyleID string

const (
	StyleBugStart StyleID = "bugs"
	StyleBugEnd   StyleID = "buge"
	StyleFixStart StyleID = "fixs"
	StyleFixEnd   StyleID = "fixe"
	StyleDevOnly  StyleID = "dev_only"
	StyleSuggOnly StyleID = "sugg_only"
	StyleBoth     StyleID = "both"
)

// AllStyles lists every style in paint order. Later styles win where
// ranges overlap.
var AllStyles = []StyleID{
	StyleDevOnly, StyleSuggOnly, StyleBoth,
	StyleBugStart, StyleBugEnd, StyleFixStart, StyleFixEnd,
}

// ParseStyleID validates a style name.
func ParseStyleID(s string) (StyleID, error) {
	id := StyleID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStyles {
		if id == known {
			return id, nil
		}
	}
	names := make([]string, len(AllStyles))
	for i, known := range AllStyles {
		names[i] = string(known)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown style %q (valid: %s)", s, strings.Join(names, ", "))
}

// Spec is the configurable part of a style.
type Spec struct {
	Background string `mapstructure:"background" yaml:"background"`
	Foreground string `mapstructure:"foreground" yaml:"foreground,omitempty"`
	Rounded    bool   `mapstructure:"rounded" yaml:"rounded"`
}

// DefaultSpecs returns the built-in colors for every style.
func DefaultSpecs() map[StyleID]Spec {
	return map[StyleID]Spec{
		StyleBugStart: {Background: "#5C1F1F", Rounded: true},
		StyleBugEnd:   {Background: "#1F5C1F", Rounded: true},
		StyleFixStart: {Background: "#1F1F5C", Rounded: true},
		StyleFixEnd:   {Background: "#1F5C1F", Rounded: true},
		StyleDevOnly:  {Background: "#552255"},
		StyleSuggOnly: {Background: "#6B4F55"},
		StyleBoth:     {Background: "#4D4D4D"},
	}
}

// Style is a resolved treatment ready for painting.
type Style struct {
	ID   StyleID
	Spec Spec
	lip  lipgloss.Style
}

// Render paints s. Rounded styles are drawn bold since a cell grid has no
// corners to round.
func (s Style) Render(text string) string {
	return s.lip.Render(text)
}

// Lipgloss returns the underlying lipgloss style.
func (s Style) Lipgloss() lipgloss.Style {
	return s.lip
}

// Registry holds the process-wide styles. It is built once and read-only
// afterwards.
type Registry struct {
	styles map[StyleID]Style
}

// NewRegistry resolves specs over DefaultSpecs. Empty colors keep their
// defaults, Rounded is taken as given, and unknown IDs are ignored.
func NewRegistry(specs map[StyleID]Spec) *Registry {
	r := &Registry{styles: make(map[StyleID]Style, len(AllStyles))}
	defaults := DefaultSpecs()
	for _, id := range AllStyles {
		spec := defaults[id]
		if override, ok := specs[id]; ok {
			if override.Background != "" {
				spec.Background = override.Background
			}
			if override.Foreground != "" {
				spec.Foreground = override.Foreground
			}
			spec.Rounded = override.Rounded
		}
		r.styles[id] = Style{ID: id, Spec: spec, lip: buildLipgloss(spec)}
	}
	return r
}

func buildLipgloss(spec Spec) lipgloss.Style {
	st := lipgloss.NewStyle().Background(lipgloss.Color(spec.Background))
	if spec.Foreground != "" {
		st = st.Foreground(lipgloss.Color(spec.Foreground))
	}
	if spec.Rounded {
		st = st.Bold(true)
	}
	return st
}

// Style returns the style for id. Unknown IDs return an unstyled Style.
func (r *Registry) Style(id StyleID) Style {
	if s, ok := r.styles[id]; ok {
		return s
	}
	return Style{ID: id, lip: lipgloss.NewStyle()}
}

// Specs returns the resolved spec of every style.
func (r *Registry) Specs() map[StyleID]Spec {
	out := make(map[StyleID]Spec, len(r.styles))
	for id, s := range r.styles {
		out[id] = s.Spec
	}
	return out
}
