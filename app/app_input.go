package app

import (
	"github.com/aerogrid/netmap/keys"
	"github.com/aerogrid/netmap/ui"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Map pan steps in cells; a cell is twice as tall as it is wide.
const (
	panStepX = 8
	panStepY = 4
)

// handleMenuHighlighting underlines the menu entry of a global key until the
// keyup timer clears it.
func (m *home) handleMenuHighlighting(msg tea.KeyMsg) {
	if m.state != stateDefault {
		return
	}
	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return
	}
	m.menu.Keydown(name)
	if m.keyupTimer != nil {
		m.keyupTimer.Stop()
	}
	m.keyupTimer = m.sched.After(keyupDelay, func() {
		m.keyupTimer = nil
		m.menu.ClearKeydown()
	})
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}
	m.handleMenuHighlighting(msg)

	switch m.state {
	case stateHelp:
		return m.handleHelpState(msg)
	case stateGoto:
		return m.handleGotoState(msg)
	case stateSearch:
		return m.handleSearchState(msg)
	}

	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return m, nil
	}

	switch name {
	case keys.KeyQuit:
		return m.handleQuit()
	case keys.KeyHelp:
		m.state = stateHelp
		return m, nil
	case keys.KeySearch:
		if m.sidebarCollapsed {
			m.list.ToggleSidebar()
		}
		m.setFocus(focusSidebar)
		m.state = stateSearch
		m.syncMenu()
		return m, m.list.ActivateSearch()
	case keys.KeyTab:
		m.cycleFocus()
		return m, nil
	case keys.KeyToggleSidebar:
		m.list.ToggleSidebar()
		return m, nil
	case keys.KeyCycleGroup:
		m.list.CycleGroupMode()
		return m, nil
	case keys.KeyEvents:
		m.toggleEvents()
		return m, nil
	case keys.KeyYank:
		m.yank()
		return m, nil
	case keys.KeyZoomIn:
		m.mapPane.ZoomBy(1)
		return m, nil
	case keys.KeyZoomOut:
		m.mapPane.ZoomBy(-1)
		return m, nil
	case keys.KeyClearSelection:
		if _, ok := m.selection.Selected(); !ok && m.list.GetSearchQuery() != "" {
			m.list.CancelSearch()
			return m, nil
		}
		m.clearSelection()
		return m, nil
	case keys.KeyReload:
		return m, m.reload()
	case keys.KeyGoto:
		m.openGoto()
		return m, nil
	}

	if m.focus == focusMap {
		m.handleMapKey(name)
	} else {
		m.handleListKey(name)
	}
	return m, nil
}

func (m *home) handleListKey(name keys.KeyName) {
	switch name {
	case keys.KeyUp:
		m.list.Up()
	case keys.KeyDown:
		m.list.Down()
	case keys.KeyArrowLeft:
		m.list.Left()
	case keys.KeyArrowRight:
		m.list.Right()
	case keys.KeyEnter:
		m.list.Activate()
	case keys.KeySpaceExpand:
		m.list.ToggleSelectedExpand()
	}
	m.syncMenu()
}

func (m *home) handleMapKey(name keys.KeyName) {
	switch name {
	case keys.KeyUp:
		m.mapPane.Pan(0, -panStepY)
	case keys.KeyDown:
		m.mapPane.Pan(0, panStepY)
	case keys.KeyArrowLeft:
		m.mapPane.Pan(-panStepX, 0)
	case keys.KeyArrowRight:
		m.mapPane.Pan(panStepX, 0)
	case keys.KeyEnter:
		// re-run the focus on the current selection
		if id, ok := m.selection.Selected(); ok {
			m.selection.Select(id)
		}
	}
}

// handleSearchState routes keys to the node filter while it has focus.
func (m *home) handleSearchState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.list.CommitSearch()
		m.state = stateDefault
		m.syncMenu()
		return m, nil
	case tea.KeyEsc:
		m.list.CancelSearch()
		m.state = stateDefault
		m.syncMenu()
		return m, nil
	}
	return m, m.list.UpdateSearch(msg)
}

// handleHelpState closes the help screen on any key.
func (m *home) handleHelpState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state = stateDefault
	m.syncMenu()
	return m, nil
}

func (m *home) handleGotoState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gotoForm == nil {
		m.state = stateDefault
		return m, nil
	}
	if !m.gotoForm.HandleKeyPress(msg) {
		return m, nil
	}
	if m.gotoForm.IsSubmitted() {
		m.submitGoto()
	}
	m.gotoForm = nil
	m.state = stateDefault
	return m, nil
}

// handleMouse processes mouse events for click and scroll interactions.
func (m *home) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		up := msg.Button == tea.MouseButtonWheelUp
		switch {
		case m.eventPane.Visible() && zone.Get(ui.ZoneEventPane).InBounds(msg):
			if up {
				m.eventPane.ScrollUp(3)
			} else {
				m.eventPane.ScrollDown(3)
			}
		case zone.Get(ui.ZoneSidebar).InBounds(msg):
			if up {
				m.list.ScrollUp()
			} else {
				m.list.ScrollDown()
			}
		case zone.Get(ui.ZoneMapPane).InBounds(msg):
			if up {
				m.mapPane.ZoomBy(1)
			} else {
				m.mapPane.ZoomBy(-1)
			}
		}
		return m, nil
	}

	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	// Any click dismisses the help screen.
	if m.state == stateHelp {
		m.state = stateDefault
		m.syncMenu()
		return m, nil
	}
	if m.state != stateDefault {
		return m, nil
	}

	if m.list.HandleClick(msg) {
		m.setFocus(focusSidebar)
		m.syncMenu()
		return m, nil
	}
	if zone.Get(ui.ZoneSearch).InBounds(msg) {
		m.setFocus(focusSidebar)
		m.state = stateSearch
		m.syncMenu()
		return m, m.list.ActivateSearch()
	}
	if zone.Get(ui.ZoneMapPane).InBounds(msg) {
		m.setFocus(focusMap)
		if id, ok := m.mapPane.HandleClick(msg); ok {
			m.selection.Select(id)
		}
	}
	return m, nil
}
