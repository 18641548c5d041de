package ui

import (
	"strings"

	"github.com/aerogrid/netmap/keys"

	"github.com/charmbracelet/lipgloss"
)

var keyStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

var descStyle = lipgloss.NewStyle().Foreground(ColorMuted)

var sepStyle = lipgloss.NewStyle().Foreground(ColorOverlay)

var actionGroupStyle = lipgloss.NewStyle().Foreground(ColorRose)

var separator = " • "
var verticalSeparator = " │ "

var menuStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

// MenuState represents different states the menu can be in
type MenuState int

const (
	StateDefault MenuState = iota
	StateEmpty
	StateSearch
)

// FocusSlot constants mirrored from app package to avoid import cycle.
const (
	MenuSlotSidebar = 0
	MenuSlotMap     = 1
)

type Menu struct {
	options       []keys.KeyName
	height, width int
	state         MenuState
	focusSlot     int
	hasSelection  bool

	// sidebarSpaceAction controls the help label for KeySpaceExpand when the
	// sidebar is focused ("expand" or "collapse").
	sidebarSpaceAction string

	// keyDown is the key which is pressed. The default is -1.
	keyDown keys.KeyName

	// actionGroupSize is the number of items in the leading action group.
	actionGroupSize int
}

var emptyMenuOptions = []keys.KeyName{keys.KeyHelp, keys.KeyQuit}
var searchMenuOptions = []keys.KeyName{keys.KeySubmitSearch, keys.KeyClearSelection}
var systemMenuOptions = []keys.KeyName{keys.KeySearch, keys.KeyCycleGroup, keys.KeyEvents, keys.KeyTab, keys.KeyHelp, keys.KeyQuit}

func NewMenu() *Menu {
	m := &Menu{
		state:              StateEmpty,
		keyDown:            -1,
		sidebarSpaceAction: "toggle",
	}
	m.updateOptions()
	return m
}

func (m *Menu) Keydown(name keys.KeyName) {
	m.keyDown = name
}

func (m *Menu) ClearKeydown() {
	m.keyDown = -1
}

// SetState updates the menu state and options accordingly
func (m *Menu) SetState(state MenuState) {
	m.state = state
	m.updateOptions()
}

// SetFocusSlot updates which pane is focused so the menu can show context-sensitive keybinds.
func (m *Menu) SetFocusSlot(slot int) {
	m.focusSlot = slot
	m.updateOptions()
}

// SetHasSelection toggles the hints that only apply to a selected node.
func (m *Menu) SetHasSelection(ok bool) {
	m.hasSelection = ok
	m.updateOptions()
}

// SetSidebarSpaceAction sets the sidebar-specific space-key label.
func (m *Menu) SetSidebarSpaceAction(action string) {
	switch action {
	case "expand", "collapse":
		m.sidebarSpaceAction = action
	default:
		m.sidebarSpaceAction = "toggle"
	}
}

func (m *Menu) updateOptions() {
	switch m.state {
	case StateEmpty:
		m.options = emptyMenuOptions
		m.actionGroupSize = 0
		return
	case StateSearch:
		m.options = searchMenuOptions
		m.actionGroupSize = len(searchMenuOptions)
		return
	}

	var action []keys.KeyName
	if m.focusSlot == MenuSlotMap {
		action = []keys.KeyName{keys.KeyZoomIn, keys.KeyZoomOut, keys.KeyArrowLeft, keys.KeyGoto}
	} else {
		action = []keys.KeyName{keys.KeyEnter, keys.KeySpaceExpand, keys.KeyToggleSidebar}
	}
	if m.hasSelection {
		action = append(action, keys.KeyYank, keys.KeyClearSelection)
	}
	options := make([]keys.KeyName, 0, len(action)+len(systemMenuOptions))
	options = append(options, action...)
	options = append(options, systemMenuOptions...)
	m.options = options
	m.actionGroupSize = len(action)
}

// SetSize sets the width of the window. The menu will be centered horizontally within this width.
func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) String() string {
	var s strings.Builder

	for i, k := range m.options {
		binding := keys.GlobalkeyBindings[k]
		help := binding.Help()
		helpKey := help.Key
		helpDesc := help.Desc
		switch {
		case k == keys.KeySpaceExpand:
			helpDesc = m.sidebarSpaceAction
		case k == keys.KeyArrowLeft && m.focusSlot == MenuSlotMap:
			helpKey, helpDesc = "←↑↓→", "pan"
		}

		var (
			localActionStyle = actionGroupStyle
			localKeyStyle    = keyStyle
			localDescStyle   = descStyle
		)
		if m.keyDown == k {
			localActionStyle = localActionStyle.Underline(true)
			localKeyStyle = localKeyStyle.Underline(true)
			localDescStyle = localDescStyle.Underline(true)
		}

		if i < m.actionGroupSize {
			s.WriteString(localActionStyle.Render(helpKey + " " + helpDesc))
		} else {
			s.WriteString(localKeyStyle.Render(helpKey))
			s.WriteString(descStyle.Render(" "))
			s.WriteString(localDescStyle.Render(helpDesc))
		}

		if i != len(m.options)-1 {
			if i == m.actionGroupSize-1 {
				s.WriteString(sepStyle.Render(verticalSeparator))
			} else {
				s.WriteString(sepStyle.Render(separator))
			}
		}
	}

	centeredMenuText := menuStyle.Render(s.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, centeredMenuText)
}
