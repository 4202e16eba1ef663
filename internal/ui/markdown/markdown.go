// Package markdown renders keyword reports for the terminal.
package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle removes the document margin glamour adds by default.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with patchlens configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a markdown renderer. style is "dark", "light" or "" for the
// terminal's own background; width is the word wrap column.
func New(style string, width int) (*Renderer, error) {
	var base glamour.TermRendererOption
	switch style {
	case "":
		base = glamour.WithAutoStyle()
	case "dark", "light":
		base = glamour.WithStandardStyle(style)
	default:
		return nil, fmt.Errorf("unknown markdown style %q", style)
	}

	r, err := glamour.NewTermRenderer(
		base,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Resize returns a renderer for a new width, reusing r when unchanged.
func (r *Renderer) Resize(width int) (*Renderer, error) {
	if r != nil && r.width == width {
		return r, nil
	}
	style := ""
	if r != nil {
		style = r.style
	}
	return New(style, width)
}
