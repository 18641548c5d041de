// Package selection owns the selected node and turns selection changes into
// imperative map commands: fly to the node, open its popup once the flight
// has settled, and raise its marker above its neighbours.
package selection

import (
	"math"
	"time"

	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/surface"
)

// Config tunes the focus sequence.
type Config struct {
	// MinFocusZoom is the lowest zoom a focus will leave the map at.
	MinFocusZoom float64
	// BaselineZoom stands in for the current zoom when the surface cannot
	// report one.
	BaselineZoom float64
	FlyDuration  time.Duration
	Easing       surface.Easing
	// PopupDelay is the wait before opening the popup of a mounted marker.
	PopupDelay time.Duration
	// PopupDelayUnmounted is used instead when the marker was not yet
	// registered at selection time.
	PopupDelayUnmounted time.Duration
	RaisedZIndex        int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MinFocusZoom:        15,
		BaselineZoom:        13,
		FlyDuration:         800 * time.Millisecond,
		Easing:              surface.DefaultEasing,
		PopupDelay:          350 * time.Millisecond,
		PopupDelayUnmounted: 600 * time.Millisecond,
		RaisedZIndex:        1000,
	}
}

// EventKind classifies an Event.
type EventKind string

const (
	EventSelected     EventKind = "selected"
	EventFocus        EventKind = "focus"
	EventFocusSkipped EventKind = "focus_skipped"
	EventPopupOpened  EventKind = "popup_opened"
	EventPopupSkipped EventKind = "popup_skipped"
)

// Event reports one step of the focus sequence.
type Event struct {
	Kind   EventKind
	NodeID model.NodeID
	// Zoom is the fly-to target; only set for EventFocus.
	Zoom float64
}

// Observer receives every Event. It runs synchronously inside the
// controller and must not call back into it.
type Observer func(Event)

// Controller is the single source of truth for the selected node.
type Controller struct {
	cfg      Config
	surface  surface.MapSurface
	registry *surface.Registry
	sched    schedule.Scheduler
	observer Observer

	nodes    []model.Node
	selected model.NodeID
	hasSel   bool

	// active is the node the last effect focused; cleanup lowers its marker.
	active     model.NodeID
	hasActive  bool
	popupTimer schedule.Timer
}

// New returns a controller with no selection.
func New(cfg Config, surf surface.MapSurface, registry *surface.Registry, sched schedule.Scheduler) *Controller {
	return &Controller{cfg: cfg, surface: surf, registry: registry, sched: sched}
}

// SetObserver installs o, replacing any earlier observer.
func (c *Controller) SetObserver(o Observer) {
	c.observer = o
}

// SetConfig swaps the tuning. It applies from the next effect on.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg
}

// Selected returns the selected id, whether or not it resolves to a node.
func (c *Controller) Selected() (model.NodeID, bool) {
	return c.selected, c.hasSel
}

// SelectedNode resolves the selection against the current nodes.
func (c *Controller) SelectedNode() (model.Node, bool) {
	if !c.hasSel {
		return model.Node{}, false
	}
	return model.FindNode(c.nodes, c.selected)
}

// Select makes id the selection and runs the focus sequence. Selecting the
// already selected id replays the sequence.
func (c *Controller) Select(id model.NodeID) {
	c.selected, c.hasSel = id, true
	c.emit(Event{Kind: EventSelected, NodeID: id})
	c.run()
}

// Clear drops the selection and undoes the last focus.
func (c *Controller) Clear() {
	c.hasSel = false
	c.selected = ""
	c.cleanup()
}

// SetNodes replaces the node collection. The focus sequence re-runs only
// when the selected node appears or disappears.
func (c *Controller) SetNodes(nodes []model.Node) {
	_, before := c.SelectedNode()
	c.nodes = nodes
	_, after := c.SelectedNode()
	if c.hasSel && before != after {
		c.run()
	}
}

// Close cancels pending work and lowers the focused marker.
func (c *Controller) Close() {
	c.cleanup()
}

func (c *Controller) run() {
	c.cleanup()
	if !c.hasSel {
		return
	}
	node, ok := c.SelectedNode()
	if !ok {
		c.emit(Event{Kind: EventFocusSkipped, NodeID: c.selected})
		return
	}

	zoom, ok := c.surface.CurrentZoom()
	if !ok {
		zoom = c.cfg.BaselineZoom
	}
	target := math.Max(zoom, c.cfg.MinFocusZoom)
	c.surface.FlyTo(node.Position, target, surface.FlyOptions{
		Duration: c.cfg.FlyDuration,
		Easing:   c.cfg.Easing,
	})
	c.emit(Event{Kind: EventFocus, NodeID: node.ID, Zoom: target})

	id := node.ID
	c.active, c.hasActive = id, true
	delay := c.cfg.PopupDelay
	if _, mounted := c.registry.Lookup(id); !mounted {
		delay = c.cfg.PopupDelayUnmounted
	}
	c.popupTimer = c.sched.After(delay, func() {
		c.popupTimer = nil
		h, ok := c.registry.Lookup(id)
		if !ok {
			c.emit(Event{Kind: EventPopupSkipped, NodeID: id})
			return
		}
		h.OpenPopup()
		h.SetZIndexOffset(c.cfg.RaisedZIndex)
		c.emit(Event{Kind: EventPopupOpened, NodeID: id})
	})
}

func (c *Controller) cleanup() {
	if c.popupTimer != nil {
		c.popupTimer.Stop()
		c.popupTimer = nil
	}
	if !c.hasActive {
		return
	}
	if h, ok := c.registry.Lookup(c.active); ok {
		h.SetZIndexOffset(0)
	}
	c.hasActive = false
}

func (c *Controller) emit(ev Event) {
	if c.observer != nil {
		c.observer(ev)
	}
}
