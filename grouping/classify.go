// Package grouping partitions nodes into the labeled buckets shown in the
// node list and tracks which of those buckets are collapsed.
package grouping

import (
	"slices"

	"github.com/aerogrid/netmap/model"
)

// Mode is the dimension nodes are grouped by.
type Mode string

const (
	ModeLayer Mode = "layer"
	ModeType  Mode = "type"
)

// ModeOption describes a grouping mode for the mode toggle.
type ModeOption struct {
	Mode  Mode
	Label string
	Icon  string
}

// Modes is the fixed cycle order of the grouping toggle.
var Modes = []ModeOption{
	{Mode: ModeLayer, Label: "by layer", Icon: "≡"},
	{Mode: ModeType, Label: "by type", Icon: "▦"},
}

// Option returns the option for m, or the first option when m is unknown.
func Option(m Mode) ModeOption {
	for _, opt := range Modes {
		if opt.Mode == m {
			return opt
		}
	}
	return Modes[0]
}

// Next returns the mode after m, wrapping around.
func Next(m Mode) Mode {
	idx := slices.IndexFunc(Modes, func(o ModeOption) bool { return o.Mode == m })
	return Modes[(idx+1)%len(Modes)].Mode
}

// ParseMode maps a flag or config string to a Mode.
func ParseMode(s string) (Mode, bool) {
	for _, opt := range Modes {
		if string(opt.Mode) == s {
			return opt.Mode, true
		}
	}
	return "", false
}

// LayerMetaEntry is the display metadata of a network layer.
type LayerMetaEntry struct {
	Label string
	Color string
}

// LayerMeta is the static layer table.
var LayerMeta = map[string]LayerMetaEntry{
	model.LayerBackbone: {Label: "backbone", Color: "#1f78b4"},
	model.LayerAir:      {Label: "ad-hoc (air)", Color: "#f28e2b"},
	model.LayerAccess:   {Label: "access", Color: "#59a14f"},
	model.LayerSpace:    {Label: "space", Color: "#9467bd"},
}

// LayerOrder and TypeOrder are the preferred group orders. Keys not listed
// are appended in first-seen order.
var (
	LayerOrder = []string{model.LayerBackbone, model.LayerAir, model.LayerAccess, model.LayerSpace}
	TypeOrder  = []string{model.TypeGroundStation, model.TypeGroundUser, model.TypeUAV, model.TypeSatellite}
)

// otherKey buckets nodes whose grouping key is empty.
const otherKey = "other"

// Group is one bucket of the node list.
type Group struct {
	Key   string
	Label string
	Color string
	Nodes []model.Node
}

// Classify partitions nodes into groups by mode. Groups follow the mode's
// preferred order, then unknown keys in first-seen order; nodes keep their
// source order. An empty input yields no groups.
func Classify(nodes []model.Node, mode Mode, typeMeta model.TypeMetaTable) []Group {
	if len(nodes) == 0 {
		return nil
	}

	keyOf := func(n model.Node) string { return n.Layer }
	order := LayerOrder
	meta := layerGroupMeta
	if mode == ModeType {
		keyOf = func(n model.Node) string { return n.Type }
		order = TypeOrder
		meta = func(key string) (string, string) { return typeGroupMeta(typeMeta, key) }
	}

	byKey := make(map[string]*Group)
	var seen []string
	for _, n := range nodes {
		key := keyOf(n)
		if key == "" {
			key = otherKey
		}
		g, ok := byKey[key]
		if !ok {
			label, color := meta(keyOf(n))
			g = &Group{Key: key, Label: label, Color: color}
			byKey[key] = g
			seen = append(seen, key)
		}
		g.Nodes = append(g.Nodes, n)
	}

	groups := make([]Group, 0, len(byKey))
	for _, key := range order {
		if g, ok := byKey[key]; ok {
			groups = append(groups, *g)
		}
	}
	for _, key := range seen {
		if slices.Contains(order, key) {
			continue
		}
		groups = append(groups, *byKey[key])
	}
	return groups
}

func layerGroupMeta(key string) (string, string) {
	if m, ok := LayerMeta[key]; ok {
		return m.Label, m.Color
	}
	if key == "" {
		return "unknown layer", model.NeutralColor
	}
	return key, model.NeutralColor
}

func typeGroupMeta(table model.TypeMetaTable, key string) (string, string) {
	m := table.Resolve(key)
	return m.Label, m.Color
}
