package app

import (
	"encoding/json"
	"fmt"

	"github.com/aerogrid/netmap/config/eventlog"
	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/log"
	"github.com/aerogrid/netmap/scenario"
	"github.com/aerogrid/netmap/selection"
	"github.com/aerogrid/netmap/surface"
	"github.com/aerogrid/netmap/ui"
	"github.com/aerogrid/netmap/ui/overlay"
	tea "github.com/charmbracelet/bubbletea"
)

// manualReloadMsg is a reload the operator asked for, as opposed to one the
// watcher produced; only the latter re-arms the watcher.
type manualReloadMsg struct {
	scenario.ReloadedMsg
}

// applyScenario swaps in s. Markers mount before the selection sees the new
// nodes, so a re-run focus finds its marker already registered.
func (m *home) applyScenario(s *scenario.Scenario, initial bool) {
	m.scenario = s
	m.events.SetScenario(s.Name)

	m.mapPane.SetScene(s.Nodes, s.Links, s.TypeMeta)
	if initial {
		m.mapPane.SetView(s.Center, s.Zoom)
	}
	m.list.SetNodes(s.Nodes, s.TypeMeta)
	m.selection.SetNodes(s.Nodes)
	m.list.SetSelected(m.selection.Selected())

	for _, w := range s.Warnings {
		log.WarningLog.Printf("%s: %s", s.Name, w)
	}
	m.events.Emit(eventlog.EventScenarioLoaded,
		fmt.Sprintf("loaded %s (%d nodes, %d links)", s.Name, len(s.Nodes), len(s.Links)))
	log.InfoLog.Printf("loaded scenario %q: %d nodes, %d links", s.Name, len(s.Nodes), len(s.Links))
	m.setSentryContext()
	m.syncMenu()
	m.refreshEvents()
}

func (m *home) handleReload(msg scenario.ReloadedMsg) {
	if msg.Err != nil {
		m.handleError(fmt.Errorf("reload failed: %w", msg.Err))
		m.events.Emit(eventlog.EventScenarioError, msg.Err.Error(), eventlog.WithLevel("error"))
		m.refreshEvents()
		return
	}
	m.applyScenario(msg.Scenario, false)
	text := "reloaded " + msg.Scenario.Name
	if n := len(msg.Scenario.Warnings); n > 0 {
		text += fmt.Sprintf(" (%d warnings)", n)
	}
	m.toasts.Success(text)
}

// reload re-reads the scenario file off the update loop.
func (m *home) reload() tea.Cmd {
	path := m.scenario.Path
	if path == "" {
		m.toasts.Info("the built-in scenario has no file to reload")
		return nil
	}
	return func() tea.Msg {
		s, err := scenario.Load(path)
		return manualReloadMsg{scenario.ReloadedMsg{Scenario: s, Err: err}}
	}
}

func (m *home) handleError(err error) {
	log.ErrorLog.Printf("%v", err)
	m.toasts.Error(err.Error())
}

// -- selection --

func (m *home) onSelectionEvent(ev selection.Event) {
	id := string(ev.NodeID)
	name := m.nodeName(ev.NodeID)
	switch ev.Kind {
	case selection.EventSelected:
		m.list.SetSelected(ev.NodeID, true)
		m.events.Emit(eventlog.EventNodeSelected, "selected "+name, eventlog.WithNode(id))
	case selection.EventFocus:
		detail, _ := json.Marshal(map[string]float64{"zoom": ev.Zoom})
		m.events.Emit(eventlog.EventMapFocus, fmt.Sprintf("fly to %s at z%.1f", name, ev.Zoom),
			eventlog.WithNode(id), eventlog.WithDetail(string(detail)))
	case selection.EventFocusSkipped:
		log.DebugLog.Printf("focus skipped: node %s is not in the scenario", id)
		m.events.Emit(eventlog.EventFocusSkipped, name+" is not in the scenario",
			eventlog.WithNode(id), eventlog.WithLevel("warn"))
	case selection.EventPopupOpened:
		m.events.Emit(eventlog.EventPopupOpened, "popup "+name, eventlog.WithNode(id))
	case selection.EventPopupSkipped:
		log.DebugLog.Printf("popup skipped: no marker for node %s", id)
		m.events.Emit(eventlog.EventPopupSkipped, "no marker for "+name,
			eventlog.WithNode(id), eventlog.WithLevel("warn"))
	}
	m.syncMenu()
	m.refreshEvents()
}

func (m *home) clearSelection() {
	m.selection.Clear()
	m.list.SetSelected("", false)
	m.mapPane.ClosePopup()
	m.syncMenu()
}

// yank copies the selected node's position to the clipboard.
func (m *home) yank() {
	node, ok := m.selection.SelectedNode()
	if !ok {
		m.toasts.Info("no node selected")
		return
	}
	text := node.Position.String()
	if err := m.clipboard(text); err != nil {
		m.handleError(fmt.Errorf("copy failed: %w", err))
		return
	}
	m.toasts.Success("copied " + text)
}

// -- node list callbacks --

func (m *home) onSidebarToggle(collapsed bool) {
	m.sidebarCollapsed = collapsed
	m.list.SetCollapsed(collapsed)
	label := "expanded"
	if collapsed {
		label = "collapsed"
		m.focus = focusMap
	}
	m.events.Emit(eventlog.EventSidebarToggled, "sidebar "+label)
	m.layout()
	m.syncFocus()
	m.refreshEvents()
}

func (m *home) onGroupToggle(mode grouping.Mode, key string, collapsed bool) {
	verb := "expanded"
	if collapsed {
		verb = "collapsed"
	}
	m.events.Emit(eventlog.EventGroupToggled, fmt.Sprintf("%s group %s", verb, key),
		eventlog.WithGroup(string(mode), key))
	m.syncMenu()
	m.refreshEvents()
}

func (m *home) onModeChange(mode grouping.Mode) {
	m.appState.GroupMode = string(mode)
	m.persistState()
	m.events.Emit(eventlog.EventGroupingChanged, "group by "+grouping.Option(mode).Label,
		eventlog.WithGroup(string(mode), ""))
	m.syncMenu()
	m.refreshEvents()
}

// -- event pane --

// refreshEvents reloads the event pane from this session's log.
func (m *home) refreshEvents() {
	if !m.eventPane.Visible() {
		return
	}
	events, err := m.events.Recent(recentEvents)
	if err != nil {
		log.WarningLog.Printf("failed to read event log: %v", err)
		return
	}
	display := make([]ui.EventDisplay, 0, len(events))
	for _, e := range events {
		icon, color := ui.EventKindIcon(e.Kind.String())
		display = append(display, ui.EventDisplay{
			Time:    e.Timestamp.Local().Format("15:04:05"),
			Kind:    e.Kind.String(),
			Icon:    icon,
			Message: e.Message,
			Color:   color,
			Level:   e.Level,
		})
	}
	m.eventPane.SetEvents(display)
}

func (m *home) toggleEvents() {
	m.eventPane.ToggleVisible()
	m.layout()
	m.refreshEvents()
}

// -- go to --

func (m *home) openGoto() {
	m.gotoForm = overlay.NewGotoOverlay(m.mapPane.Center(), max(int(float32(m.termWidth)*0.4), 44))
	m.state = stateGoto
}

func (m *home) submitGoto() {
	pos, zoom, hasZoom := m.gotoForm.Target()
	if !hasZoom {
		zoom = m.mapPane.Zoom()
	}
	tuning := m.appConfig.Tuning
	m.mapPane.FlyTo(pos, zoom, surface.FlyOptions{Duration: tuning.FlyDuration, Easing: tuning.Easing})
	m.events.Emit(eventlog.EventMapFocus, fmt.Sprintf("go to %s at z%.1f", pos, zoom))
	m.refreshEvents()
}

// -- focus and menu --

func (m *home) cycleFocus() {
	if m.focus == focusSidebar || m.sidebarCollapsed {
		m.focus = focusMap
	} else {
		m.focus = focusSidebar
	}
	m.syncFocus()
}

func (m *home) setFocus(slot int) {
	if slot == focusSidebar && m.sidebarCollapsed {
		return
	}
	m.focus = slot
	m.syncFocus()
}

func (m *home) syncFocus() {
	m.list.SetFocused(m.focus == focusSidebar)
	m.mapPane.SetFocused(m.focus == focusMap)
	m.syncMenu()
}

func (m *home) syncMenu() {
	switch {
	case m.state == stateSearch:
		m.menu.SetState(ui.StateSearch)
	case len(m.scenario.Nodes) == 0:
		m.menu.SetState(ui.StateEmpty)
	default:
		m.menu.SetState(ui.StateDefault)
	}
	m.menu.SetFocusSlot(m.focus)
	_, selected := m.selection.SelectedNode()
	m.menu.SetHasSelection(selected)
	m.menu.SetSidebarSpaceAction(m.list.SelectedSpaceAction())
}
