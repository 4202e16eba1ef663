// Package notice shows short-lived status messages at the bottom of the
// viewer: reload results, normalize failures and similar.
package notice

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/patchlens/internal/ui/overlay"
	"github.com/zjrosen/patchlens/internal/ui/styles"
)

// DefaultDuration is how long a notice stays up.
const DefaultDuration = 3 * time.Second

// maxWidth bounds the message column before wrapping.
const maxWidth = 60

// Kind determines the visual appearance of the notice.
type Kind int

const (
	// Success shows ✓ with a green border.
	Success Kind = iota
	// Error shows ✗ with a red border.
	Error
	// Info shows • with a blue border.
	Info
	// Warn shows ! with a yellow border.
	Warn
)

// Model holds the notice state.
type Model struct {
	message string
	kind    Kind
	visible bool
	seq     int
}

// New creates an empty notice.
func New() Model {
	return Model{}
}

// Show displays message and returns a command that hides it after
// DefaultDuration. A newer notice is not hidden by an older timer.
func (m Model) Show(message string, kind Kind) (Model, tea.Cmd) {
	m.message = message
	m.kind = kind
	m.visible = true
	m.seq++
	return m, scheduleDismiss(m.seq, DefaultDuration)
}

// Hide dismisses the notice.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether the notice is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the current text.
func (m Model) Message() string {
	return m.message
}

// Update hides the notice when its own dismiss timer fires.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the notice box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var icon string
	switch m.kind {
	case Error:
		style = style.BorderForeground(styles.NoticeBorderErrorColor)
		icon = "✗ "
	case Info:
		style = style.BorderForeground(styles.NoticeBorderInfoColor)
		icon = "• "
	case Warn:
		style = style.BorderForeground(styles.NoticeBorderWarnColor)
		icon = "! "
	default:
		style = style.BorderForeground(styles.NoticeBorderSuccessColor)
		icon = "✓ "
	}

	return style.Render(wordwrap.String(icon+m.message, maxWidth))
}

// Overlay renders the notice over bg, near the bottom edge.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(m.View(), bg, width, height, overlay.Bottom, 1)
}

// DismissMsg signals that a notice timer expired.
type DismissMsg struct {
	seq int
}

func scheduleDismiss(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}
