// Package viewer shows one document with its highlights in a scrollable
// viewport.
package viewer

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/keys"
	"github.com/zjrosen/patchlens/internal/surface"
)

// Model is the document viewer state.
type Model struct {
	viewport viewport.Model
	store    *surface.Store
	registry *highlight.Registry
	keys     keys.KeyMap
	opts     RenderOptions

	surfaceID string
	doc       *document.Document
	lines     []string
}

// New creates a viewer reading highlights from store.
func New(store *surface.Store, registry *highlight.Registry, opts RenderOptions) Model {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{} // scrolling is driven by keys.KeyMap
	return Model{
		viewport: vp,
		store:    store,
		registry: registry,
		keys:     keys.DefaultKeyMap(),
		opts:     opts,
	}
}

// SetSize sets the content area in cells.
func (m Model) SetSize(width, height int) Model {
	m.viewport.Width = width
	m.viewport.Height = height
	m.setContent()
	return m
}

// SetDocument shows doc for surface id. The scroll offset is kept when the
// same surface is shown again and reset otherwise.
func (m Model) SetDocument(id string, doc *document.Document) Model {
	if id != m.surfaceID {
		m.viewport.GotoTop()
	}
	m.surfaceID = id
	m.doc = doc
	m.Repaint()
	return m
}

// Repaint re-renders the current document from the store.
func (m *Model) Repaint() {
	if m.doc == nil {
		m.lines = nil
	} else {
		m.lines = RenderLines(m.store, m.registry, m.surfaceID, m.doc, m.opts)
	}
	m.setContent()
}

// Clear shows nothing.
func (m Model) Clear() Model {
	m.surfaceID = ""
	m.doc = nil
	m.Repaint()
	return m
}

// SurfaceID returns the surface being shown.
func (m Model) SurfaceID() string {
	return m.surfaceID
}

// setContent clips lines to the width; long lines are truncated, not wrapped,
// so line numbers stay aligned with the document.
func (m *Model) setContent() {
	yOffset := m.viewport.YOffset
	clipped := make([]string, len(m.lines))
	for i, l := range m.lines {
		if m.viewport.Width > 0 {
			l = ansi.Truncate(l, m.viewport.Width, "…")
		}
		clipped[i] = l
	}
	m.viewport.SetContent(strings.Join(clipped, "\n"))
	m.viewport.SetYOffset(yOffset)
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ScrollPercent reports how far the view is scrolled.
func (m Model) ScrollPercent() float64 {
	return m.viewport.ScrollPercent()
}

// YOffset returns the first visible line.
func (m Model) YOffset() int {
	return m.viewport.YOffset
}

// View renders the visible lines.
func (m Model) View() string {
	if m.doc == nil {
		return ""
	}
	return m.viewport.View()
}
