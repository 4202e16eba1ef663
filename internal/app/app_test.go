package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/patchlens/internal/config"
	"github.com/zjrosen/patchlens/internal/pubsub"
	"github.com/zjrosen/patchlens/internal/watcher"
	"github.com/zjrosen/patchlens/internal/workspace"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

const reviewText = "Fix bounds check\n" +
	"x := len(a) <BUGS>a[i]<BUGE>\n" +
	"----\n" +
	"<FIXS>if check(x) {}<FIXE>\n" +
	"----\n" +
	"<FIXS>if check(len(a)) {}<FIXE>\n" +
	"----\n"

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// openReview writes reviewText to a temp file, opens it and makes it active.
func openReview(t *testing.T, ws *workspace.Workspace, name string) *workspace.Surface {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(reviewText), 0o600))
	s, err := ws.Open(path)
	require.NoError(t, err)
	require.NoError(t, ws.SetActive(s.ID))
	return s
}

func newModel(t *testing.T, ws *workspace.Workspace, opts Options) Model {
	t.Helper()
	if opts.Config.Styles == nil {
		opts.Config = config.Defaults()
	}
	m := New(ws, opts)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func activated(id string) pubsub.Event[workspace.Event] {
	return pubsub.Event[workspace.Event]{Type: workspace.Activated, Payload: workspace.Event{SurfaceID: id}}
}

func TestView_ShowsActiveDocument(t *testing.T) {
	ws := workspace.New()
	s := openReview(t, ws, "review.patch")

	m := newModel(t, ws, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	m = update(t, m, activated(s.ID))

	view := ansi.Strip(m.View())
	require.Contains(t, view, "review.patch")
	require.Contains(t, view, "keywords")
	require.Contains(t, view, "if check(len(a)) {}")
	require.True(t, m.results[s.ID].Structured)
}

func TestView_EmptyWorkspace(t *testing.T) {
	m := newModel(t, workspace.New(), Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})

	view := ansi.Strip(m.View())
	require.Contains(t, view, "no documents open")
	require.Contains(t, view, "No document")
}

func TestNormalize_NoActiveDocument(t *testing.T) {
	m := newModel(t, workspace.New(), Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	m = update(t, m, keyRune('n'))

	require.True(t, m.notice.Visible())
	require.Contains(t, ansi.Strip(m.View()), "✗ No active document to normalize")
}

func TestNormalize_OpensReadOnlySurface(t *testing.T) {
	ws := workspace.New()
	openReview(t, ws, "review.patch")

	m := newModel(t, ws, Options{})
	m = update(t, m, keyRune('n'))

	active, ok := ws.Active()
	require.True(t, ok)
	require.Equal(t, "Normalized: review.patch", active.Title)
	require.True(t, active.ReadOnly)
	require.Len(t, ws.Surfaces(), 2)
}

func TestTabs_CycleAndClose(t *testing.T) {
	ws := workspace.New()
	first := openReview(t, ws, "one.patch")
	second := openReview(t, ws, "two.patch")
	require.NoError(t, ws.SetActive(first.ID))

	m := newModel(t, ws, Options{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	active, _ := ws.Active()
	require.Equal(t, second.ID, active.ID)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	active, _ = ws.Active()
	require.Equal(t, first.ID, active.ID, "cycling wraps around")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	active, _ = ws.Active()
	require.Equal(t, second.ID, active.ID)

	m = update(t, m, keyRune('x'))
	active, ok := ws.Active()
	require.True(t, ok)
	require.Equal(t, first.ID, active.ID, "closing the last tab activates its left neighbour")
	require.Len(t, ws.Surfaces(), 1)
	_ = m
}

func TestReport_Toggle(t *testing.T) {
	ws := workspace.New()
	s := openReview(t, ws, "review.patch")

	m := newModel(t, ws, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, activated(s.ID))

	m = update(t, m, keyRune('a'))
	require.True(t, m.showReport)
	require.True(t, m.report.Ready())
	require.Contains(t, m.report.Source(), "`check`")
	require.Contains(t, ansi.Strip(m.View()), "Report")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.showReport)
}

func TestHelp_Toggle(t *testing.T) {
	m := newModel(t, workspace.New(), Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 130, Height: 40})

	m = update(t, m, keyRune('?'))
	require.True(t, m.showHelp)
	require.Contains(t, ansi.Strip(m.View()), "Highlights")

	m = update(t, m, keyRune('?'))
	require.False(t, m.showHelp)
}

func TestWatcherEvent_ReloadsDocument(t *testing.T) {
	ws := workspace.New()
	s := openReview(t, ws, "review.patch")

	w, err := watcher.New(watcher.DefaultConfig())
	require.NoError(t, err)

	m := newModel(t, ws, Options{Watcher: w})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})

	require.NoError(t, os.WriteFile(s.Path, []byte(reviewText+"extra\n"), 0o600))
	m = update(t, m, pubsub.Event[watcher.WatcherEvent]{
		Type:    watcher.FileChanged,
		Payload: watcher.WatcherEvent{Path: s.Path},
	})

	require.Contains(t, s.Document().Text(), "extra")
	require.True(t, m.notice.Visible())
	require.Equal(t, "Reloaded review.patch", m.notice.Message())
}

func TestWatcherEvent_UnknownPathIgnored(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig())
	require.NoError(t, err)

	m := newModel(t, workspace.New(), Options{Watcher: w})
	m = update(t, m, pubsub.Event[watcher.WatcherEvent]{
		Type:    watcher.FileChanged,
		Payload: watcher.WatcherEvent{Path: "/nowhere/else.patch"},
	})
	require.False(t, m.notice.Visible())
}

func TestDebug_LogPanel(t *testing.T) {
	m := newModel(t, workspace.New(), Options{Debug: true})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.logs.Visible())
	require.Contains(t, ansi.Strip(m.View()), "Logs")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.logs.Visible())
}

func TestProgram_EndToEnd(t *testing.T) {
	ws := workspace.New()
	s := openReview(t, ws, "review.patch")

	w, err := watcher.New(watcher.Config{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Add(s.Path))
	w.Start()

	m := New(ws, Options{Config: config.Defaults(), Watcher: w})
	t.Cleanup(func() { _ = m.Close() })

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 24))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("review.patch")) && bytes.Contains(b, []byte("keywords"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(keyRune('n'))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Normalized: review.patch"))
	}, teatest.WithDuration(3*time.Second))

	require.NoError(t, os.WriteFile(s.Path, []byte(reviewText+"more()\n"), 0o600))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Reloaded review.patch"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(keyRune('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
