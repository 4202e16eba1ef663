// Package logpanel shows recent debug log entries over the viewer. It is only
// reachable when patchlens runs with --debug.
package logpanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/ui/overlay"
	"github.com/zjrosen/patchlens/internal/ui/styles"
)

const (
	maxEntries     = 300
	viewportHeight = 20
	boxMaxWidth    = 140
	boxMinWidth    = 40
)

// Model is the log panel state.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden log panel seeded with the logger's recent entries.
func New() Model {
	return Model{
		minLevel: log.LevelDebug,
		entries:  log.GetRecentLogs(maxEntries),
	}
}

// Append records entry, dropping the oldest past the capacity.
func (m *Model) Append(entry string) {
	m.entries = append(m.entries, entry)
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
	if m.visible {
		m.refresh()
		m.viewport.GotoBottom()
	}
}

// Update handles filter and scroll keys while visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "c":
			m.entries = nil
		case "d":
			m.minLevel = log.LevelDebug
		case "i":
			m.minLevel = log.LevelInfo
		case "w":
			m.minLevel = log.LevelWarn
		case "e":
			m.minLevel = log.LevelError
		case "j", "down":
			m.viewport.ScrollDown(1)
			return m, nil
		case "k", "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "esc", "ctrl+x":
			m.visible = false
			return m, nil
		default:
			return m, nil
		}
		m.refresh()
	}
	return m, nil
}

// Toggle flips visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
		m.viewport.GotoBottom()
	}
}

// Visible returns whether the panel is showing.
func (m Model) Visible() bool {
	return m.visible
}

// SetSize records the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.visible {
		m.refresh()
	}
}

// Filtered returns the entries at or above the current level.
func (m Model) Filtered() []string {
	var out []string
	for _, e := range m.entries {
		if levelOf(e) >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func levelOf(entry string) log.Level {
	switch {
	case strings.Contains(entry, "[ERROR]"):
		return log.LevelError
	case strings.Contains(entry, "[WARN]"):
		return log.LevelWarn
	case strings.Contains(entry, "[INFO]"):
		return log.LevelInfo
	default:
		return log.LevelDebug
	}
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m *Model) refresh() {
	contentWidth := m.boxWidth() - 2
	height := max(min(viewportHeight, m.height-6), 3)
	m.viewport = viewport.New(contentWidth, height)

	entries := m.Filtered()
	if len(entries) == 0 {
		m.viewport.SetContent(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display"))
		return
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = colorize(ansi.Truncate(e, contentWidth, "…"))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func colorize(entry string) string {
	var c lipgloss.TerminalColor
	switch levelOf(entry) {
	case log.LevelError:
		c = styles.StatusErrorColor
	case log.LevelWarn:
		c = styles.StatusWarningColor
	case log.LevelInfo:
		c = styles.StatusInfoColor
	default:
		c = styles.TextMutedColor
	}
	return lipgloss.NewStyle().Foreground(c).Render(entry)
}

// View renders the panel box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	width := m.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", width))

	hints := []string{"[c] Clear"}
	for _, f := range []struct {
		label string
		level log.Level
	}{{"[d] Debug", log.LevelDebug}, {"[i] Info", log.LevelInfo}, {"[w] Warn", log.LevelWarn}, {"[e] Error", log.LevelError}} {
		if f.level == m.minLevel {
			hints = append(hints, lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).Render(f.label))
		} else {
			hints = append(hints, styles.FooterStyle.Render(f.label))
		}
	}

	body := strings.Join([]string{
		styles.TitleStyle.Render(" Logs"),
		divider,
		m.viewport.View(),
		divider,
		strings.Join(hints, "  "),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Width(width).
		Render(body)
}

// Overlay renders the panel centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(m.View(), bg, m.width, m.height, overlay.Center, 0)
}
