package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPanel draws content inside a rounded border with title embedded on
// the left of the top border and status on the right:
//
//	╭─ review.patch ───── structured ─╮
//
// Content lines are clipped or padded to the inner width and height.
func RenderPanel(content, title, status string, width, height int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderFocusColor
	}
	border := lipgloss.NewStyle().Foreground(borderColor)

	innerWidth := max(width-2, 1)
	innerHeight := max(height-2, 1)

	lines := strings.Split(content, "\n")
	var b strings.Builder
	b.WriteString(topBorder(title, status, innerWidth, border))
	for i := range innerHeight {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], innerWidth, "")
		}
		if w := ansi.StringWidth(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(border.Render(borderVertical) + line + border.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(border.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// topBorder builds ╭─ title ───── status ─╮. The status is dropped first
// when space runs out, then the title is truncated.
func topBorder(title, status string, innerWidth int, border lipgloss.Style) string {
	plain := func() string {
		return border.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}
	if title == "" && status == "" {
		return plain()
	}

	// "─ " + title + " " ... " " + status + " ─"
	const titleChrome, statusChrome = 3, 3
	if innerWidth < titleChrome+1 {
		return plain()
	}

	avail := innerWidth - titleChrome
	if status != "" && runewidth.StringWidth(status)+statusChrome+4 <= avail {
		avail -= runewidth.StringWidth(status) + statusChrome
	} else {
		status = ""
	}
	title = Truncate(title, avail)

	fill := innerWidth - titleChrome - runewidth.StringWidth(title)
	right := ""
	if status != "" {
		fill -= runewidth.StringWidth(status) + statusChrome
		right = " " + TitleStyle.Render(status) + border.Render(" "+borderHorizontal)
	}
	fill = max(fill, 0)

	return border.Render(borderTopLeft+borderHorizontal+" ") +
		TitleStyle.Render(title) +
		border.Render(" "+strings.Repeat(borderHorizontal, fill)) +
		right +
		border.Render(borderTopRight)
}

// Truncate shortens s to maxWidth terminal cells, ending with "…" when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
