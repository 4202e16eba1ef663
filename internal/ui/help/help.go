// Package help contains the help overlay: keybindings and a legend of the
// highlight styles.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/keys"
	"github.com/zjrosen/patchlens/internal/ui/overlay"
	"github.com/zjrosen/patchlens/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondaryColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondaryColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BorderDefaultColor).
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// legend describes each style in the order they are listed.
var legend = []struct {
	id   highlight.StyleID
	desc string
}{
	{highlight.StyleBugStart, "bug region start"},
	{highlight.StyleBugEnd, "bug region end"},
	{highlight.StyleFixStart, "fix region start"},
	{highlight.StyleFixEnd, "fix region end"},
	{highlight.StyleDevOnly, "developer only"},
	{highlight.StyleSuggOnly, "suggestion only"},
	{highlight.StyleBoth, "both patches"},
}

// Model holds the help view state.
type Model struct {
	keys     keys.KeyMap
	registry *highlight.Registry
	width    int
	height   int
}

// New creates a help view. The legend swatches use registry.
func New(registry *highlight.Registry) Model {
	return Model{keys: keys.DefaultKeyMap(), registry: registry}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Overlay renders the help box centered on background.
func (m Model) Overlay(background string) string {
	return overlay.Place(m.renderContent(), background, m.width, m.height, overlay.Center, 0)
}

func (m Model) renderContent() string {
	titles := []string{"Scrolling", "Documents", "Actions", "General"}
	columnStyle := lipgloss.NewStyle().MarginRight(2)

	var cols []string
	for i, row := range m.keys.FullHelp() {
		var col strings.Builder
		col.WriteString(sectionStyle.Render(titles[i]))
		col.WriteString("\n")
		for _, b := range row {
			col.WriteString(renderBinding(b))
		}
		cols = append(cols, columnStyle.Render(col.String()))
	}

	var body strings.Builder
	body.WriteString(titleStyle.Render("patchlens"))
	body.WriteString("\n")
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	body.WriteString("\n")
	body.WriteString(sectionStyle.Render("Highlights"))
	body.WriteString("\n")
	body.WriteString(m.renderLegend())
	body.WriteString(footerStyle.Render("Press ? or esc to close"))

	return boxStyle.Render(body.String())
}

func (m Model) renderLegend() string {
	var b strings.Builder
	for _, entry := range legend {
		swatch := m.registry.Style(entry.id).Render(" " + string(entry.id) + " ")
		b.WriteString(keyStyle.Width(13).Render(swatch))
		b.WriteString(descStyle.Render(entry.desc))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n"
}
