// Package check audits a loaded scenario for problems the loader tolerates:
// nodes the map and list can show, but only in a degraded way.
package check

import (
	"sort"

	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/scenario"
)

// NodeStatus is the audit verdict for one node.
type NodeStatus int

const (
	StatusOK           NodeStatus = iota
	StatusUnknownType             // no type metadata, drawn with the neutral color
	StatusNoLayer                 // empty layer, lands in the "other" group
	StatusUnknownLayer            // layer missing from the layer table
	StatusIsolated                // no link ends at the node
)

func (s NodeStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownType:
		return "unknown type"
	case StatusNoLayer:
		return "no layer"
	case StatusUnknownLayer:
		return "unknown layer"
	case StatusIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// Blocking reports whether the status counts against health. Isolated nodes
// are legal, so they only inform.
func (s NodeStatus) Blocking() bool {
	return s != StatusOK && s != StatusIsolated
}

// NodeEntry is one node's audit result.
type NodeEntry struct {
	ID     model.NodeID
	Name   string
	Status NodeStatus
	Detail string
}

// GroupCount is the size of one group under a grouping mode.
type GroupCount struct {
	Mode  grouping.Mode
	Key   string
	Label string
	Count int
}

// Result is the complete output of netmap check.
type Result struct {
	Scenario string
	Nodes    []NodeEntry
	Groups   []GroupCount
	// Warnings are the loader's recoverable problems, e.g. dropped links.
	Warnings []string
}

// Audit inspects s.
func Audit(s *scenario.Scenario) *Result {
	r := &Result{Scenario: s.Name, Warnings: append([]string(nil), s.Warnings...)}

	linked := make(map[model.LatLng]bool, len(s.Links)*2)
	for _, l := range s.Links {
		linked[l.From] = true
		linked[l.To] = true
	}

	for _, n := range s.Nodes {
		entry := NodeEntry{ID: n.ID, Name: n.Name, Status: StatusOK}
		_, knownType := s.TypeMeta[n.Type]
		_, knownLayer := grouping.LayerMeta[n.Layer]
		switch {
		case !knownType:
			entry.Status = StatusUnknownType
			entry.Detail = n.Type
			if n.Type == "" {
				entry.Detail = "(empty)"
			}
		case n.Layer == "":
			entry.Status = StatusNoLayer
		case !knownLayer:
			entry.Status = StatusUnknownLayer
			entry.Detail = n.Layer
		case len(s.Links) > 0 && !linked[n.Position]:
			entry.Status = StatusIsolated
		}
		r.Nodes = append(r.Nodes, entry)
	}

	for _, mode := range []grouping.Mode{grouping.ModeLayer, grouping.ModeType} {
		for _, g := range grouping.Classify(s.Nodes, mode, s.TypeMeta) {
			r.Groups = append(r.Groups, GroupCount{Mode: mode, Key: g.Key, Label: g.Label, Count: len(g.Nodes)})
		}
	}
	return r
}

// Summary returns the number of healthy checks and the total. Every node is
// one check and every loader warning a failed one.
func (r *Result) Summary() (ok, total int) {
	for _, n := range r.Nodes {
		total++
		if !n.Status.Blocking() {
			ok++
		}
	}
	total += len(r.Warnings)
	return ok, total
}

// Problems returns the non-OK nodes ordered by status, then id.
func (r *Result) Problems() []NodeEntry {
	var out []NodeEntry
	for _, n := range r.Nodes {
		if n.Status != StatusOK {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].ID < out[j].ID
	})
	return out
}
