package app

import (
	"context"
	"time"

	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/config/eventlog"
	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/internal/sentry"
	"github.com/aerogrid/netmap/log"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/scenario"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/selection"
	"github.com/aerogrid/netmap/surface"
	"github.com/aerogrid/netmap/ui"
	"github.com/aerogrid/netmap/ui/anim"
	"github.com/aerogrid/netmap/ui/overlay"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Options is everything Run needs from the command line and config files.
type Options struct {
	Scenario *scenario.Scenario
	Config   *config.Config
	State    *config.State
	// Events receives the event log; nil means eventlog.NopLogger.
	Events eventlog.Logger
	// Watch reloads Scenario.Path on change. Ignored for the built-in scenario.
	Watch bool
	// GroupMode overrides the remembered grouping when non-empty.
	GroupMode grouping.Mode
	// Collapsed overrides Config.SidebarCollapsed when set.
	Collapsed *bool
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, opts Options) error {
	restore := ui.SetTerminalBackground(ui.ColorBase)
	defer restore()

	frame := schedule.DefaultFrame
	if opts.Config != nil && opts.Config.Tuning.Frame > 0 {
		frame = opts.Config.Tuning.Frame
	}
	loop := schedule.NewLoop(frame)
	m := newHome(ctx, opts, loop)
	m.loop = loop
	m.saveState = config.SaveState
	defer m.close()

	zone.NewGlobal()
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

type state int

const (
	stateDefault state = iota
	// stateSearch is the state when the node filter has keyboard focus.
	stateSearch
	// stateHelp is the state when the help screen is displayed.
	stateHelp
	// stateGoto is the state when the go-to form is displayed.
	stateGoto
)

const (
	focusSidebar = ui.MenuSlotSidebar
	focusMap     = ui.MenuSlotMap
)

const (
	eventPaneHeight = 9
	recentEvents    = 50
	keyupDelay      = 500 * time.Millisecond
)

type home struct {
	ctx context.Context

	// -- Storage and Configuration --

	appConfig *config.Config
	appState  *config.State
	// saveState persists appState; a no-op until Run installs config.SaveState.
	saveState func(*config.State) error
	events    *eventlog.Session
	clipboard func(string) error

	// -- Scheduling --

	sched schedule.Scheduler
	// loop is set when running under bubbletea; tests drive sched directly.
	loop       *schedule.Loop
	keyupTimer schedule.Timer

	// -- State --

	scenario *scenario.Scenario
	watcher  *scenario.Watcher
	state    state
	focus    int
	// sidebarCollapsed is the authority for the node list's collapsed flag.
	sidebarCollapsed bool

	// -- UI Components --

	registry   *surface.Registry
	selection  *selection.Controller
	mapPane    *ui.MapPane
	list       *ui.NodeListPanel
	eventPane  *ui.EventPane
	statusBar  *ui.StatusBar
	menu       *ui.Menu
	toasts     *overlay.ToastManager
	gotoForm   *overlay.GotoOverlay
	helpCache  string
	helpWidth  int
	termWidth  int
	termHeight int
}

func newHome(ctx context.Context, opts Options, sched schedule.Scheduler) *home {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	st := opts.State
	if st == nil {
		st = &config.State{}
	}
	logger := opts.Events
	if logger == nil {
		logger = eventlog.NopLogger()
	}
	sc := opts.Scenario
	if sc == nil {
		sc = scenario.Default()
	}

	m := &home{
		ctx:       ctx,
		appConfig: cfg,
		appState:  st,
		saveState: func(*config.State) error { return nil },
		events:    eventlog.NewSession(logger),
		clipboard: clipboard.WriteAll,
		sched:     sched,
		registry:  surface.NewRegistry(),
		eventPane: ui.NewEventPane(),
		statusBar: ui.NewStatusBar(),
		menu:      ui.NewMenu(),
		focus:     focusSidebar,
	}

	tuning := cfg.Tuning
	m.toasts = overlay.NewToastManager(sched, tuning.Frame)
	m.mapPane = ui.NewMapPane(sched, tuning.Frame, m.registry)
	m.selection = selection.New(selectionConfig(tuning), m.mapPane, m.registry, sched)
	m.selection.SetObserver(m.onSelectionEvent)

	m.sidebarCollapsed = cfg.SidebarCollapsed
	if opts.Collapsed != nil {
		m.sidebarCollapsed = *opts.Collapsed
	}
	m.list = ui.NewNodeListPanel(sched, ui.NodeListOptions{
		Controlled:    &m.sidebarCollapsed,
		OnToggle:      m.onSidebarToggle,
		OnSelect:      m.selection.Select,
		OnGroupToggle: m.onGroupToggle,
		OnModeChange:  m.onModeChange,
		Mode:          initialMode(opts.GroupMode, st, cfg),
		Anim:          animConfig(tuning),
	})
	if m.sidebarCollapsed {
		m.focus = focusMap
	}

	m.applyScenario(sc, true)
	if sc.Path != "" {
		st.AddRecent(sc.Path)
		m.persistState()
		if opts.Watch {
			w, err := scenario.Watch(sc.Path)
			if err != nil {
				log.WarningLog.Printf("could not watch %s: %v", sc.Path, err)
			} else {
				m.watcher = w
			}
		}
	}
	m.syncFocus()
	m.setSentryContext()
	return m
}

func initialMode(flag grouping.Mode, st *config.State, cfg *config.Config) grouping.Mode {
	for _, s := range []string{string(flag), st.GroupMode, cfg.GroupMode} {
		if mode, ok := grouping.ParseMode(s); ok {
			return mode
		}
	}
	return grouping.Modes[0].Mode
}

func selectionConfig(t config.Tuning) selection.Config {
	return selection.Config{
		MinFocusZoom:        t.MinFocusZoom,
		BaselineZoom:        t.BaselineZoom,
		FlyDuration:         t.FlyDuration,
		Easing:              t.Easing,
		PopupDelay:          t.PopupDelay,
		PopupDelayUnmounted: t.PopupDelayUnmounted,
		RaisedZIndex:        t.RaisedZIndex,
	}
}

func animConfig(t config.Tuning) anim.Config {
	return anim.Config{
		Duration:     t.CollapseDuration,
		RelaxedBound: t.RelaxedBound,
		Frame:        t.Frame,
	}
}

// layout sets the sizes of the components.
// The components will try to render inside their bounds.
func (m *home) layout() {
	if m.termWidth <= 0 || m.termHeight <= 0 {
		return
	}
	width, height := m.termWidth, m.termHeight

	// status bar + menu rail
	contentHeight := height - 2
	if m.eventPane.Visible() {
		m.eventPane.SetSize(width, eventPaneHeight)
		contentHeight -= eventPaneHeight
	}
	contentHeight = max(contentHeight, 3)

	expanded := max(int(float32(width)*0.25), 30)
	expanded = min(expanded, width/2)
	sidebarWidth := m.list.Width(expanded)

	m.list.SetSize(sidebarWidth, contentHeight)
	m.mapPane.SetSize(width-sidebarWidth, contentHeight)
	m.statusBar.SetSize(width)
	m.menu.SetSize(width, 1)
	m.toasts.SetSize(width, height)
	m.helpCache = ""
}

func (m *home) Init() tea.Cmd {
	cmds := []tea.Cmd{m.flush()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Next())
	}
	return tea.Batch(cmds...)
}

// Update runs the message and hands every timer it scheduled to bubbletea.
func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	return next, tea.Batch(cmd, m.flush())
}

func (m *home) flush() tea.Cmd {
	if m.loop == nil {
		return nil
	}
	return m.loop.Flush()
}

func (m *home) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case schedule.FiredMsg:
		if m.loop != nil {
			m.loop.Fire(msg)
		}
		return m, nil
	case scenario.ReloadedMsg:
		m.handleReload(msg)
		if m.watcher == nil {
			return m, nil
		}
		return m, m.watcher.Next()
	case manualReloadMsg:
		m.handleReload(msg.ReloadedMsg)
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.layout()
		return m, nil
	}
	if m.state == stateSearch {
		return m, m.list.UpdateSearch(msg)
	}
	return m, nil
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.close()
	return m, tea.Quit
}

// close stops every timer and watcher. Safe to call twice.
func (m *home) close() {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	if m.keyupTimer != nil {
		m.keyupTimer.Stop()
		m.keyupTimer = nil
	}
	m.selection.Close()
	m.list.Close()
	m.mapPane.Close()
	m.toasts.Close()
}

func (m *home) View() string {
	m.statusBar.SetData(m.statusData())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.String(), m.mapPane.String())
	parts := []string{m.statusBar.String(), body}
	if m.eventPane.Visible() {
		parts = append(parts, m.eventPane.String())
	}
	parts = append(parts, m.menu.String())
	mainView := lipgloss.JoinVertical(lipgloss.Left, parts...)

	result := mainView
	switch {
	case m.state == stateHelp:
		result = overlay.PlaceOverlay(0, 0, m.helpView(), mainView, true, true)
	case m.state == stateGoto && m.gotoForm != nil:
		result = overlay.PlaceOverlay(0, 0, m.gotoForm.Render(), mainView, true, true)
	}

	if toastView := m.toasts.View(); toastView != "" {
		x, y := m.toasts.GetPosition()
		result = overlay.PlaceOverlay(x, y, toastView, result, false, false)
	}

	// Process bubblezone markers before rendering is complete
	// (zone markers inflate lipgloss.Width if left in place).
	result = zone.Scan(result)

	return ui.FillBackground(result, m.termHeight)
}

func (m *home) statusData() ui.StatusBarData {
	data := ui.StatusBarData{
		Scenario:  m.scenario.Name,
		NodeCount: len(m.scenario.Nodes),
		LinkCount: len(m.scenario.Links),
		Filter:    m.list.GetSearchQuery(),
		Watching:  m.watcher != nil,
	}
	data.Zoom, data.HasZoom = m.mapPane.CurrentZoom()
	if node, ok := m.selection.SelectedNode(); ok {
		meta := m.scenario.TypeMeta.Resolve(node.Type)
		data.Selected = node.Name
		data.SelectedColor = meta.Color
		data.SelectedIcon = meta.Icon
	}
	return data
}

// nodeName returns the display name of id, or the id itself when it is not
// in the current scenario.
func (m *home) nodeName(id model.NodeID) string {
	if node, ok := model.FindNode(m.scenario.Nodes, id); ok {
		return node.Name
	}
	return string(id)
}

func (m *home) persistState() {
	if err := m.saveState(m.appState); err != nil {
		log.WarningLog.Printf("failed to save state: %v", err)
	}
}

// setSentryContext tags crash reports with what is on screen.
func (m *home) setSentryContext() {
	sentry.SetContext(m.scenario.Name, len(m.scenario.Nodes), m.watcher != nil)
}
