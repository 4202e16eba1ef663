// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/patchlens/internal/config"
	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/keys"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/pubsub"
	"github.com/zjrosen/patchlens/internal/report"
	"github.com/zjrosen/patchlens/internal/surface"
	"github.com/zjrosen/patchlens/internal/tracing"
	"github.com/zjrosen/patchlens/internal/ui/help"
	"github.com/zjrosen/patchlens/internal/ui/logpanel"
	"github.com/zjrosen/patchlens/internal/ui/notice"
	"github.com/zjrosen/patchlens/internal/ui/reportview"
	"github.com/zjrosen/patchlens/internal/ui/styles"
	"github.com/zjrosen/patchlens/internal/ui/viewer"
	"github.com/zjrosen/patchlens/internal/watcher"
	"github.com/zjrosen/patchlens/internal/workspace"
)

const (
	tabZonePrefix = "tab:"
	maxTabTitle   = 28
)

// Options configures the root model.
type Options struct {
	Config config.Config

	// Watcher, when set, reports changes to the files of open documents.
	// The model takes ownership and stops it on Close.
	Watcher *watcher.Watcher

	// Debug enables the log panel (ctrl+x).
	Debug bool

	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// Model is the root application state.
type Model struct {
	ws         *workspace.Workspace
	dispatcher *workspace.Dispatcher
	store      *surface.Store
	registry   *highlight.Registry
	tracer     trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	wsListener    *pubsub.Listener[workspace.Event]
	watcher       *watcher.Watcher
	watchListener *pubsub.Listener[watcher.WatcherEvent]
	logListener   *log.LogListener

	keys   keys.KeyMap
	footer bhelp.Model

	viewer     viewer.Model
	report     reportview.Model
	showReport bool
	help       help.Model
	showHelp   bool
	notice     notice.Model
	debug      bool
	logs       logpanel.Model

	// results holds the last refresh of each surface for the panel status.
	results map[string]highlight.Result

	width  int
	height int
}

// New creates the root model over ws. Documents should already be open;
// Init activates the workspace, which triggers the first refresh.
func New(ws *workspace.Workspace, opts Options) Model {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/zjrosen/patchlens/internal/app")
	}
	cfg := opts.Config

	hopts := cfg.HighlightOptions()
	hopts.Tracer = tracer
	store := surface.NewStore()
	registry := highlight.NewRegistry(cfg.StyleSpecs())

	ctx, cancel := context.WithCancel(context.Background())

	docView := viewer.New(store, registry, viewer.RenderOptions{
		LineNumbers: cfg.UI.ShowLineNumbers,
		Sections:    cfg.UI.ShowSections,
	})

	m := Model{
		ws:         ws,
		dispatcher: workspace.NewDispatcher(ws, highlight.NewEngine(hopts), store),
		store:      store,
		registry:   registry,
		tracer:     tracer,
		ctx:        ctx,
		cancel:     cancel,
		wsListener: pubsub.NewListener(ctx, ws.Broker()),
		keys:       keys.DefaultKeyMap(),
		footer:     bhelp.New(),
		viewer:     docView,
		report:     reportview.New(cfg.UI.MarkdownStyle),
		help:       help.New(registry),
		notice:     notice.New(),
		debug:      opts.Debug,
		results:    make(map[string]highlight.Result),
	}

	if opts.Watcher != nil {
		m.watcher = opts.Watcher
		m.watchListener = pubsub.NewListener(ctx, opts.Watcher.Broker())
	}
	if opts.Debug {
		m.logs = logpanel.New()
		m.logListener = log.NewListener(ctx)
	}
	return m
}

// Init implements tea.Model. It starts the listeners and activates the
// workspace.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.wsListener.Listen(),
		func() tea.Msg {
			m.ws.Activate()
			return nil
		},
	}
	if m.watchListener != nil {
		cmds = append(cmds, m.watchListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case pubsub.Event[workspace.Event]:
		m.handleWorkspaceEvent(msg)
		return m, m.wsListener.Listen()

	case pubsub.Event[watcher.WatcherEvent]:
		cmd := m.handleWatcherEvent(msg)
		return m, tea.Batch(cmd, m.watchListener.Listen())

	case log.LogEvent:
		m.logs.Append(msg.Payload)
		return m, m.logListener.Listen()

	case notice.DismissMsg:
		m.notice = m.notice.Update(msg)
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			for _, s := range m.ws.Surfaces() {
				if z := zone.Get(tabZonePrefix + s.ID); z != nil && z.InBounds(msg) {
					return m, m.activate(s.ID)
				}
			}
		}
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debug && msg.String() == "ctrl+x" {
		m.logs.Toggle()
		return m, nil
	}
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.showHelp = false
		} else if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m, m.cycle(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.cycle(-1)

	case key.Matches(msg, m.keys.CloseTab):
		return m, m.closeActive()

	case key.Matches(msg, m.keys.Normalize):
		return m, m.normalizeActive()

	case key.Matches(msg, m.keys.Report):
		m.showReport = !m.showReport
		if m.showReport {
			m.updateReport()
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadActive()

	case key.Matches(msg, m.keys.Escape):
		if m.showReport {
			m.showReport = false
			m.layout()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.showReport {
		m.report, cmd = m.report.Update(msg)
	} else {
		m.viewer, cmd = m.viewer.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleWorkspaceEvent(ev pubsub.Event[workspace.Event]) {
	ctx, span := m.tracer.Start(m.ctx, "workspace."+string(ev.Type),
		trace.WithAttributes(attribute.String(tracing.AttrSurfaceID, ev.Payload.SurfaceID)))
	defer span.End()

	refreshed, ok := m.dispatcher.Handle(ctx, ev)
	if ok {
		m.results[refreshed.SurfaceID] = refreshed.Result
	}

	switch ev.Type {
	case workspace.SurfaceClosed:
		delete(m.results, ev.Payload.SurfaceID)
	case workspace.ActiveSurfaceChanged, workspace.Activated:
		if ev.Payload.SurfaceID == "" {
			m.viewer = m.viewer.Clear()
		}
	}

	active, hasActive := m.ws.Active()
	if ok && hasActive && refreshed.SurfaceID == active.ID {
		m.viewer = m.viewer.SetDocument(active.ID, active.Document())
		if m.showReport {
			m.updateReport()
		}
	}
}

func (m *Model) handleWatcherEvent(ev pubsub.Event[watcher.WatcherEvent]) tea.Cmd {
	switch ev.Type {
	case watcher.FileChanged:
		changed, err := m.ws.Reload(ev.Payload.Path)
		if err != nil {
			var notFound *workspace.SurfaceNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			log.ErrorErr(log.CatWatcher, "Reload failed", err, "path", ev.Payload.Path)
			return m.showNotice(err.Error(), notice.Error)
		}
		if changed {
			return m.showNotice("Reloaded "+displayPath(ev.Payload.Path), notice.Info)
		}
	case watcher.WatcherError:
		log.Warn(log.CatWatcher, "Watcher error received", "error", ev.Payload.Error)
	}
	return nil
}

func (m *Model) showNotice(message string, kind notice.Kind) tea.Cmd {
	var cmd tea.Cmd
	m.notice, cmd = m.notice.Show(message, kind)
	return cmd
}

func (m *Model) activate(id string) tea.Cmd {
	if err := m.ws.SetActive(id); err != nil {
		log.ErrorErr(log.CatUI, "Activate failed", err, "surface", id)
		return m.showNotice(err.Error(), notice.Error)
	}
	return nil
}

// cycle activates the surface delta tabs away from the active one.
func (m *Model) cycle(delta int) tea.Cmd {
	surfaces := m.ws.Surfaces()
	if len(surfaces) == 0 {
		return nil
	}
	idx := 0
	if active, ok := m.ws.Active(); ok {
		for i, s := range surfaces {
			if s.ID == active.ID {
				idx = (i + delta + len(surfaces)) % len(surfaces)
				break
			}
		}
	}
	return m.activate(surfaces[idx].ID)
}

func (m *Model) closeActive() tea.Cmd {
	active, ok := m.ws.Active()
	if !ok {
		return m.showNotice(workspace.ErrNoActiveSurface.Error(), notice.Warn)
	}

	next := ""
	surfaces := m.ws.Surfaces()
	for i, s := range surfaces {
		if s.ID != active.ID {
			continue
		}
		switch {
		case i+1 < len(surfaces):
			next = surfaces[i+1].ID
		case i > 0:
			next = surfaces[i-1].ID
		}
	}

	if err := m.ws.CloseSurface(active.ID); err != nil {
		return m.showNotice(err.Error(), notice.Error)
	}
	if m.watcher != nil && !active.Untitled() {
		if err := m.watcher.Remove(active.Path); err != nil {
			log.Warn(log.CatWatcher, "Unwatch failed", "path", active.Path, "error", err)
		}
	}
	if next != "" {
		return m.activate(next)
	}
	return nil
}

func (m *Model) normalizeActive() tea.Cmd {
	out, err := m.ws.NormalizeActive(m.ctx)
	if errors.Is(err, workspace.ErrNoActiveSurface) {
		return m.showNotice("No active document to normalize", notice.Error)
	}
	if err != nil {
		log.ErrorErr(log.CatUI, "Normalize failed", err)
		return m.showNotice(err.Error(), notice.Error)
	}
	return m.showNotice("Opened "+out.Title, notice.Success)
}

func (m *Model) reloadActive() tea.Cmd {
	active, ok := m.ws.Active()
	if !ok {
		return m.showNotice(workspace.ErrNoActiveSurface.Error(), notice.Warn)
	}
	if active.Untitled() {
		return m.showNotice(active.Title+" has no file to reload", notice.Info)
	}
	changed, err := m.ws.Reload(active.Path)
	if err != nil {
		return m.showNotice(err.Error(), notice.Error)
	}
	if !changed {
		return m.showNotice(active.Title+" is up to date", notice.Info)
	}
	return m.showNotice("Reloaded "+active.Title, notice.Success)
}

func (m *Model) updateReport() {
	active, ok := m.ws.Active()
	if !ok {
		return
	}
	m.report = m.report.SetReport(report.Analyze(m.ctx, active.Document()))
}

// layout splits the screen: tab bar, document panel (and report panel when
// shown), footer.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	panelHeight := max(m.height-2, 3)
	docWidth := m.width
	if m.showReport {
		docWidth = m.width * 3 / 5
		m.report = m.report.SetSize(max(m.width-docWidth-2, 1), max(panelHeight-2, 1))
	}
	m.viewer = m.viewer.SetSize(max(docWidth-2, 1), max(panelHeight-2, 1))
	m.help = m.help.SetSize(m.width, m.height)
	m.logs.SetSize(m.width, m.height)
	m.footer.Width = m.width
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	panelHeight := max(m.height-2, 3)
	docWidth := m.width
	if m.showReport {
		docWidth = m.width * 3 / 5
	}

	title, status := "No document", ""
	if active, ok := m.ws.Active(); ok {
		title = active.Title
		status = m.statusFor(active.ID)
	}
	body := styles.RenderPanel(m.viewer.View(), title, status, docWidth, panelHeight, !m.showReport)
	if m.showReport {
		reportPanel := styles.RenderPanel(m.report.View(), "Report", "", m.width-docWidth, panelHeight, true)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, reportPanel)
	}

	view := strings.Join([]string{
		m.renderTabs(),
		body,
		styles.FooterStyle.Render(m.footer.View(m.keys)),
	}, "\n")

	if m.notice.Visible() {
		view = m.notice.Overlay(view, m.width, m.height)
	}
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.debug && m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	return zone.Scan(view)
}

func (m Model) statusFor(id string) string {
	res, ok := m.results[id]
	if !ok {
		return ""
	}
	if !res.Structured {
		return "no sections"
	}
	return fmt.Sprintf("%d keywords", res.Classification.Len())
}

func (m Model) renderTabs() string {
	surfaces := m.ws.Surfaces()
	if len(surfaces) == 0 {
		return styles.FooterStyle.Render(" no documents open")
	}
	active, _ := m.ws.Active()

	tabs := make([]string, 0, len(surfaces))
	for _, s := range surfaces {
		label := styles.Truncate(s.Title, maxTabTitle)
		if s.ReadOnly {
			label += " " + styles.TabModifiedStyle.Render("◆")
		}
		style := styles.TabInactiveStyle
		if active != nil && s.ID == active.ID {
			style = styles.TabActiveStyle
		}
		tabs = append(tabs, zone.Mark(tabZonePrefix+s.ID, style.Render(label)))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return ansi.Truncate(bar, m.width, "…")
}

// Close releases the listeners, the watcher and the workspace broker.
func (m *Model) Close() error {
	m.cancel()
	m.ws.Shutdown()
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}

func displayPath(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
