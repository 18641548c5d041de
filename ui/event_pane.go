package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
)

// EventDisplay is a pre-formatted event for rendering in the event pane.
type EventDisplay struct {
	Time    string         // formatted as "15:04:05"
	Kind    string         // event kind string (e.g. "node_selected")
	Icon    string         // single-char icon
	Message string         // human-readable message
	Color   lipgloss.Color // icon color
	Level   string         // "info", "warn", "error"
}

// EventPane renders a scrollable list of recent map events below the map.
type EventPane struct {
	events      []EventDisplay
	viewport    viewport.Model
	width       int
	height      int
	visible     bool
	filterLabel string
}

// NewEventPane creates a new EventPane (hidden until toggled).
func NewEventPane() *EventPane {
	vp := viewport.New(0, 0)
	return &EventPane{viewport: vp}
}

// SetSize updates the pane dimensions and rebuilds the viewport content.
func (p *EventPane) SetSize(w, h int) {
	p.width = w
	// Reserve 1 line for the header.
	bodyH := max(h-1, 0)
	p.height = h
	p.viewport.Width = w
	p.viewport.Height = bodyH
	p.viewport.SetContent(p.renderBody())
}

func (p *EventPane) Height() int { return p.height }

// SetEvents replaces the event list (newest first) and refreshes the viewport.
func (p *EventPane) SetEvents(events []EventDisplay) {
	p.events = events
	p.viewport.SetContent(p.renderBody())
	p.viewport.GotoTop()
}

// SetFilter updates the filter label shown in the header.
func (p *EventPane) SetFilter(label string) {
	p.filterLabel = label
}

func (p *EventPane) ScrollDown(n int) {
	p.viewport.LineDown(n)
}

func (p *EventPane) ScrollUp(n int) {
	p.viewport.LineUp(n)
}

func (p *EventPane) Visible() bool {
	return p.visible
}

func (p *EventPane) ToggleVisible() {
	p.visible = !p.visible
}

var (
	eventHeaderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	eventTimeStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	eventMsgStyle    = lipgloss.NewStyle().Foreground(ColorText)
	eventWarnStyle   = lipgloss.NewStyle().Foreground(ColorGold)
	eventErrorStyle  = lipgloss.NewStyle().Foreground(ColorLove)
	eventEmptyStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// String renders the event pane: a 1-line header + scrollable body.
func (p *EventPane) String() string {
	return zone.Mark(ZoneEventPane, lipgloss.JoinVertical(lipgloss.Left, p.renderHeader(), p.viewport.View()))
}

func (p *EventPane) renderHeader() string {
	left := "── events ──"
	right := p.filterLabel
	if right == "" {
		right = "this session"
	}
	gap := max(p.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return eventHeaderStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (p *EventPane) renderBody() string {
	if len(p.events) == 0 {
		return eventEmptyStyle.Render("· no events")
	}

	// time (8) + spaces + icon
	msgWidth := max(p.width-11, 8)
	lines := make([]string, 0, len(p.events))
	for _, e := range p.events {
		icon := lipgloss.NewStyle().Foreground(e.Color).Render(e.Icon)
		msgStyle := eventMsgStyle
		switch e.Level {
		case "warn":
			msgStyle = eventWarnStyle
		case "error":
			msgStyle = eventErrorStyle
		}
		msg := msgStyle.Render(ansi.Truncate(e.Message, msgWidth, "…"))
		lines = append(lines, eventTimeStyle.Render(e.Time)+" "+icon+" "+msg)
	}
	return strings.Join(lines, "\n")
}

// EventKindIcon returns the icon and color for a given event kind string.
// Used by the app layer when building EventDisplay values.
func EventKindIcon(kind string) (icon string, color lipgloss.Color) {
	switch kind {
	case "node_selected":
		return "◆", ColorIris
	case "map_focus":
		return "⌖", ColorFoam
	case "popup_opened":
		return "▣", ColorFoam
	case "popup_skipped":
		return "▢", ColorMuted
	case "focus_skipped":
		return "∅", ColorGold
	case "group_toggled":
		return "▾", ColorSubtle
	case "grouping_changed":
		return "≡", ColorRose
	case "sidebar_toggled":
		return "☰", ColorSubtle
	case "scenario_loaded":
		return "✓", ColorFoam
	case "scenario_error", "error":
		return "!", ColorLove
	default:
		return "·", ColorMuted
	}
}
