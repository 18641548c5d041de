// Package eventlog records what the operator did and what the map did in
// response, one sqlite row per event, grouped by session.
package eventlog

import "time"

// EventKind identifies the type of event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Focus events.
const (
	EventNodeSelected EventKind = "node_selected"
	EventMapFocus     EventKind = "map_focus"
	EventPopupOpened  EventKind = "popup_opened"
	EventPopupSkipped EventKind = "popup_skipped"
	EventFocusSkipped EventKind = "focus_skipped"
)

// Node list events.
const (
	EventGroupToggled    EventKind = "group_toggled"
	EventGroupingChanged EventKind = "grouping_changed"
	EventSidebarToggled  EventKind = "sidebar_toggled"
)

// Scenario events.
const (
	EventScenarioLoaded EventKind = "scenario_loaded"
	EventScenarioError  EventKind = "scenario_error"
)

// AllKinds lists every kind, for flag validation and help text.
var AllKinds = []EventKind{
	EventNodeSelected, EventMapFocus, EventPopupOpened, EventPopupSkipped, EventFocusSkipped,
	EventGroupToggled, EventGroupingChanged, EventSidebarToggled,
	EventScenarioLoaded, EventScenarioError,
}

// Event is a single event log entry.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	Session   string
	Scenario  string
	NodeID    string
	GroupMode string
	GroupKey  string
	Message   string
	Detail    string // JSON-encoded extra data
	Level     string // info, warn, error
}
