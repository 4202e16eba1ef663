package logpanel

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/patchlens/internal/log"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_SeedsFromRecentLogs(t *testing.T) {
	log.InitWriter(io.Discard)
	t.Cleanup(log.Close)
	log.Info(log.CatUI, "seeded entry")

	m := New()
	require.False(t, m.Visible())
	require.NotEmpty(t, m.Filtered())
	require.Contains(t, m.Filtered()[len(m.Filtered())-1], "seeded entry")
}

func TestToggleAndView(t *testing.T) {
	m := Model{minLevel: log.LevelDebug}
	m.SetSize(100, 30)
	require.Empty(t, m.View())

	m.Append("2025-01-01T00:00:00 [INFO] [ui] hello")
	m.Toggle()
	require.True(t, m.Visible())

	out := ansi.Strip(m.View())
	require.Contains(t, out, "Logs")
	require.Contains(t, out, "hello")
	require.Contains(t, out, "[c] Clear")
}

func TestFilterLevels(t *testing.T) {
	m := Model{minLevel: log.LevelDebug}
	m.SetSize(100, 30)
	m.Append("t [DEBUG] [ui] d")
	m.Append("t [INFO] [ui] i")
	m.Append("t [WARN] [ui] w")
	m.Append("t [ERROR] [ui] e")
	m.Toggle()

	require.Len(t, m.Filtered(), 4)

	m, _ = m.Update(keyMsg("w"))
	require.Len(t, m.Filtered(), 2)

	m, _ = m.Update(keyMsg("e"))
	require.Equal(t, []string{"t [ERROR] [ui] e"}, m.Filtered())

	m, _ = m.Update(keyMsg("c"))
	require.Empty(t, m.Filtered())
	require.Contains(t, ansi.Strip(m.View()), "No logs to display")
}

func TestAppend_Bounded(t *testing.T) {
	m := Model{minLevel: log.LevelDebug}
	for range maxEntries + 10 {
		m.Append("t [DEBUG] [ui] x")
	}
	require.Len(t, m.entries, maxEntries)
}

func TestEscCloses(t *testing.T) {
	m := Model{minLevel: log.LevelDebug}
	m.SetSize(80, 24)
	m.Toggle()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
}

func TestHiddenIgnoresKeys(t *testing.T) {
	m := Model{minLevel: log.LevelDebug}
	m.Append("t [DEBUG] [ui] x")
	m, _ = m.Update(keyMsg("c"))
	require.Len(t, m.Filtered(), 1)
}
