// Package reportview shows a keyword report rendered as markdown.
package reportview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/patchlens/internal/keys"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/report"
	"github.com/zjrosen/patchlens/internal/ui/markdown"
)

// Model is the report panel state.
type Model struct {
	viewport viewport.Model
	keys     keys.KeyMap
	style    string
	renderer *markdown.Renderer
	source   string
	ready    bool
}

// New creates an empty report panel. style is passed to the markdown
// renderer.
func New(style string) Model {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{}
	return Model{viewport: vp, keys: keys.DefaultKeyMap(), style: style}
}

// SetSize sets the panel content area and re-renders for the new width.
func (m Model) SetSize(width, height int) Model {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
	return m
}

// SetReport replaces the shown report.
func (m Model) SetReport(r report.Report) Model {
	m.source = r.Markdown()
	m.ready = true
	m.viewport.GotoTop()
	m.render()
	return m
}

// Ready reports whether a report has been set.
func (m Model) Ready() bool {
	return m.ready
}

// Source returns the markdown being shown.
func (m Model) Source() string {
	return m.source
}

func (m *Model) render() {
	if !m.ready || m.viewport.Width <= 0 {
		return
	}
	if m.renderer == nil || m.renderer.Width() != m.viewport.Width {
		r, err := markdown.New(m.style, m.viewport.Width)
		if err != nil {
			log.ErrorErr(log.CatUI, "Markdown renderer failed", err, "style", m.style)
			m.viewport.SetContent(m.source)
			return
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(m.source)
	if err != nil {
		log.ErrorErr(log.CatUI, "Rendering report failed", err)
		out = m.source
	}
	m.viewport.SetContent(out)
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.viewport.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.viewport.ScrollDown(1)
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.ScrollUp(max(m.viewport.Height/2, 1))
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.ScrollDown(max(m.viewport.Height/2, 1))
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
		}
	}
	return m, nil
}

// View renders the visible part of the report.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	return m.viewport.View()
}
