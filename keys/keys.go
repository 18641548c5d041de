package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter
	KeyQuit

	KeyTab  // Tab cycles focus between the sidebar and the map.
	KeyHelp // Key for showing help screen

	KeySearch     // Key for activating the node filter
	KeyArrowLeft  // Pan left on the map, collapse a group in the sidebar
	KeyArrowRight // Pan right on the map, expand a group in the sidebar

	KeySpaceExpand   // Space toggles the group under the cursor
	KeyToggleSidebar // Key for collapsing the sidebar to a rail
	KeyCycleGroup    // Key for cycling the grouping mode
	KeyEvents        // Key for showing the event pane
	KeyYank          // Key for copying the selected node's coordinates
	KeyZoomIn
	KeyZoomOut
	KeyClearSelection
	KeyReload // Key for reloading the scenario file
	KeyGoto   // Key for flying the map to typed coordinates

	// -- Special keybindings --

	KeySubmitSearch
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":     KeyUp,
	"k":      KeyUp,
	"down":   KeyDown,
	"j":      KeyDown,
	"enter":  KeyEnter,
	"o":      KeyEnter,
	"q":      KeyQuit,
	"tab":    KeyTab,
	"?":      KeyHelp,
	"/":      KeySearch,
	"left":   KeyArrowLeft,
	"h":      KeyArrowLeft,
	"right":  KeyArrowRight,
	"l":      KeyArrowRight,
	" ":      KeySpaceExpand,
	"ctrl+s": KeyToggleSidebar,
	"s":      KeyToggleSidebar,
	"g":      KeyCycleGroup,
	"e":      KeyEvents,
	"y":      KeyYank,
	"+":      KeyZoomIn,
	"=":      KeyZoomIn,
	"-":      KeyZoomOut,
	"esc":    KeyClearSelection,
	"r":      KeyReload,
	"G":      KeyGoto,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("↵/o", "select"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "cycle panes"),
	),
	KeySearch: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	KeyArrowLeft: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	KeyArrowRight: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	KeySpaceExpand: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	KeyToggleSidebar: key.NewBinding(
		key.WithKeys("ctrl+s", "s"),
		key.WithHelp("s", "sidebar"),
	),
	KeyCycleGroup: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "group by"),
	),
	KeyEvents: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "events"),
	),
	KeyYank: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy lat,lng"),
	),
	KeyZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	KeyZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	KeyClearSelection: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
	KeyReload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	KeyGoto: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "go to"),
	),

	// -- Special keybindings --

	KeySubmitSearch: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply filter"),
	),
}
