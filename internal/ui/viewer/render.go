package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/section"
	"github.com/zjrosen/patchlens/internal/surface"
	"github.com/zjrosen/patchlens/internal/ui/styles"
)

const tabWidth = 4

// RenderOptions controls the gutter.
type RenderOptions struct {
	LineNumbers bool
	Sections    bool
}

var sectionLabels = map[section.Kind]struct {
	label string
	style lipgloss.Style
}{
	section.Header:     {"H", lipgloss.NewStyle().Foreground(styles.SectionHeaderColor)},
	section.Original:   {"O", lipgloss.NewStyle().Foreground(styles.SectionOriginalColor)},
	section.Suggestion: {"S", lipgloss.NewStyle().Foreground(styles.SectionSuggestionColor)},
	section.Developer:  {"D", lipgloss.NewStyle().Foreground(styles.SectionDeveloperColor)},
}

var separatorStyle = lipgloss.NewStyle().Foreground(styles.SeparatorColor)

// RenderLines paints every line of doc with the ranges stored for id.
func RenderLines(store *surface.Store, reg *highlight.Registry, id string, doc *document.Document, opts RenderOptions) []string {
	lines := doc.Lines()
	bounds, structured := section.Locate(lines)
	numWidth := len(fmt.Sprint(len(lines)))

	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		if opts.LineNumbers {
			b.WriteString(styles.LineNumberStyle.Render(fmt.Sprintf("%*d ", numWidth, i+1)))
		}
		if opts.Sections {
			b.WriteString(gutterLabel(bounds, structured, line, i))
			b.WriteString(" ")
		}
		b.WriteString(PaintLine(line, store.LineSpans(id, doc, i), reg))
		out[i] = b.String()
	}
	return out
}

func gutterLabel(bounds section.Bounds, structured bool, line string, i int) string {
	if !structured {
		return " "
	}
	if section.IsSeparator(line) {
		return separatorStyle.Render("─")
	}
	kind, ok := bounds.KindOf(i)
	if !ok {
		return " "
	}
	l := sectionLabels[kind]
	return l.style.Render(l.label)
}

// PaintLine renders line with spans applied. Spans are byte offsets into
// line, sorted and non-overlapping, as returned by surface.Store.LineSpans.
func PaintLine(line string, spans []surface.Span, reg *highlight.Registry) string {
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.Start > pos {
			b.WriteString(expandTabs(line[pos:sp.Start]))
		}
		b.WriteString(reg.Style(sp.Style).Render(expandTabs(line[sp.Start:sp.End])))
		pos = sp.End
	}
	if pos < len(line) {
		b.WriteString(expandTabs(line[pos:]))
	}
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
