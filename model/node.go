package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NeutralColor is used for any type or layer without metadata.
const NeutralColor = "#7f7f7f"

// Well-known node type keys.
const (
	TypeGroundStation = "ground-station"
	TypeGroundUser    = "ground-user"
	TypeUAV           = "uav"
	TypeSatellite     = "satellite"
)

// Well-known layer keys.
const (
	LayerBackbone = "backbone"
	LayerAir      = "air"
	LayerAccess   = "access"
	LayerSpace    = "space"
)

// NodeID identifies a node. Scenario files may spell it as an integer or a
// string; both end up here as the same textual form.
type NodeID string

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

// Valid reports whether the position lies inside the usual WGS84 bounds.
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ParseLatLng reads "lat,lng" (the form String produces, spaces allowed).
func ParseLatLng(s string) (LatLng, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return LatLng{}, fmt.Errorf("position %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("position %q: latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("position %q: longitude: %w", s, err)
	}
	p := LatLng{Lat: lat, Lng: lng}
	if !p.Valid() {
		return LatLng{}, fmt.Errorf("position %q: out of range", s)
	}
	return p, nil
}

// Node is a single network element shown on the map and in the node list.
// Nodes are never mutated after loading; a reload replaces the whole slice.
type Node struct {
	ID       NodeID
	Name     string
	Position LatLng
	Type     string
	Layer    string
}

// Matches reports whether q (already lower-cased) appears in the node's
// name, id, type or layer.
func (n Node) Matches(q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{n.Name, string(n.ID), n.Type, n.Layer} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Link is a connectivity line between two positions.
type Link struct {
	From LatLng
	To   LatLng
}

// NodeTypeMeta is the display metadata of a node type.
type NodeTypeMeta struct {
	Label string
	Color string
	Icon  string
}

// TypeMetaTable maps a type key to its display metadata.
type TypeMetaTable map[string]NodeTypeMeta

// Resolve returns the metadata for key, falling back to the raw key and a
// neutral color when the key is unmapped. An empty key resolves to
// "unknown type".
func (t TypeMetaTable) Resolve(key string) NodeTypeMeta {
	meta, ok := t[key]
	if !ok {
		label := key
		if label == "" {
			label = "unknown type"
		}
		return NodeTypeMeta{Label: label, Color: NeutralColor, Icon: DefaultIcon}
	}
	if meta.Label == "" {
		meta.Label = key
	}
	if meta.Color == "" {
		meta.Color = NeutralColor
	}
	if meta.Icon == "" {
		meta.Icon = DefaultIcon
	}
	return meta
}

// DefaultIcon is drawn for node types without an icon.
const DefaultIcon = "○"

// DefaultTypeMeta is the metadata used when a scenario does not define its
// own type table.
func DefaultTypeMeta() TypeMetaTable {
	return TypeMetaTable{
		TypeGroundStation: {Label: "ground station", Color: "#e15759", Icon: "▲"},
		TypeUAV:           {Label: "uav", Color: "#f28e2b", Icon: "✈"},
		TypeGroundUser:    {Label: "ground user", Color: "#59a14f", Icon: "◉"},
		TypeSatellite:     {Label: "satellite", Color: "#9467bd", Icon: "✦"},
	}
}

// FindNode returns the node with the given id.
func FindNode(nodes []Node, id NodeID) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
