package ui

import (
	"github.com/aerogrid/netmap/model"
)

// Zone ID constants for bubblezone hit detection.
// These are used both in render paths (zone.Mark) and input paths (zone.Get().InBounds).
const (
	ZoneSidebar       = "zone-sidebar"
	ZoneSidebarToggle = "zone-sidebar-toggle"
	ZoneGroupMode     = "zone-group-mode"
	ZoneSearch        = "zone-search"
	ZoneMapPane       = "zone-map-pane"
	ZoneEventPane     = "zone-event-pane"
)

// GroupHeaderZoneID returns the zone ID for the header row of a group.
func GroupHeaderZoneID(key string) string {
	return "zone-group-" + key
}

// NodeRowZoneID returns the zone ID for the list row of a node.
func NodeRowZoneID(id model.NodeID) string {
	return "zone-node-" + string(id)
}

