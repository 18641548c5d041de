// Package anim holds the expand/collapse animation of node list groups.
package anim

import (
	"math"
	"time"

	"github.com/aerogrid/netmap/schedule"
	"github.com/charmbracelet/harmonica"
)

// Phase is the state of a Collapse.
type Phase int

const (
	Closed Phase = iota
	Opening
	Open
	Closing
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "closed"
	}
}

// RelaxedBound is the row limit of a settled open section; large enough to
// never clip, so later content growth shows without re-measuring.
const RelaxedBound = 2000

// Config tunes a Collapse.
type Config struct {
	// Duration is how long a transition runs before its follow-up step.
	Duration     time.Duration
	RelaxedBound int
	// Frame is the tween interval; it should match the scheduler's frame.
	Frame time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		Duration:     320 * time.Millisecond,
		RelaxedBound: RelaxedBound,
		Frame:        schedule.DefaultFrame,
	}
}

const settleEpsilon = 0.05

// Collapse animates the height of one collapsible section.
//
// Opening bounds the section at its measured height, then relaxes the bound
// once the transition has run. Closing pins the bound at the height being
// rendered right now and drops it to zero on the next frame, so the drop
// animates from the real height instead of from the relaxed bound. A new
// request always cancels the follow-ups of the one it supersedes.
type Collapse struct {
	sched schedule.Scheduler
	cfg   Config

	phase   Phase
	bound   int
	opacity float64
	content int

	visible  float64
	velocity float64
	spring   harmonica.Spring

	followUp schedule.Timer
	frame    schedule.Timer

	synced    bool
	lastOpen  bool
	lastCount int
}

// NewCollapse returns a closed section driven by sched.
func NewCollapse(sched schedule.Scheduler, cfg Config) *Collapse {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultConfig().Duration
	}
	if cfg.RelaxedBound <= 0 {
		cfg.RelaxedBound = RelaxedBound
	}
	if cfg.Frame <= 0 {
		cfg.Frame = schedule.DefaultFrame
	}
	fps := int(time.Second / cfg.Frame)
	if fps < 1 {
		fps = 1
	}
	return &Collapse{
		sched:  sched,
		cfg:    cfg,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 10.0, 1.0),
	}
}

// Sync feeds the section's current inputs. A transition runs on the first
// call and whenever open or childCount differ from the previous call;
// otherwise only the content height is refreshed.
func (c *Collapse) Sync(open bool, childCount int, measure func() int) {
	if !c.synced {
		c.synced = true
		c.lastOpen, c.lastCount = open, childCount
		c.content = measure()
		if open {
			c.phase, c.bound, c.opacity = Open, c.cfg.RelaxedBound, 1
			c.visible = float64(c.content)
			c.open(measure)
		} else {
			c.phase, c.bound, c.opacity = Closed, 0, 0
			c.visible = 0
			c.close()
		}
		return
	}
	if open == c.lastOpen && childCount == c.lastCount {
		c.content = measure()
		c.startTween()
		return
	}
	c.lastOpen, c.lastCount = open, childCount
	if open {
		c.open(measure)
	} else {
		c.content = measure()
		c.close()
	}
}

func (c *Collapse) open(measure func() int) {
	c.cancelFollowUp()
	c.content = measure()
	c.bound = c.content
	c.opacity = 1
	c.phase = Opening
	c.followUp = c.sched.After(c.cfg.Duration, func() {
		c.followUp = nil
		c.bound = c.cfg.RelaxedBound
		c.phase = Open
		c.startTween()
	})
	c.startTween()
}

func (c *Collapse) close() {
	c.cancelFollowUp()
	c.bound = c.Height()
	c.phase = Closing
	c.followUp = c.sched.NextFrame(func() {
		c.bound = 0
		c.opacity = 0
		c.followUp = c.sched.After(c.cfg.Duration, func() {
			c.followUp = nil
			c.phase = Closed
		})
		c.startTween()
	})
}

// Stop cancels every pending step and freezes the section where it is.
func (c *Collapse) Stop() {
	c.cancelFollowUp()
	if c.frame != nil {
		c.frame.Stop()
		c.frame = nil
	}
	c.velocity = 0
}

func (c *Collapse) cancelFollowUp() {
	if c.followUp != nil {
		c.followUp.Stop()
		c.followUp = nil
	}
}

func (c *Collapse) target() float64 {
	return float64(min(c.bound, c.content))
}

func (c *Collapse) startTween() {
	if c.frame != nil {
		return
	}
	if c.settled() {
		c.visible, c.velocity = c.target(), 0
		return
	}
	c.frame = c.sched.NextFrame(c.step)
}

func (c *Collapse) step() {
	c.frame = nil
	c.visible, c.velocity = c.spring.Update(c.visible, c.velocity, c.target())
	if c.settled() {
		c.visible, c.velocity = c.target(), 0
		return
	}
	c.frame = c.sched.NextFrame(c.step)
}

func (c *Collapse) settled() bool {
	return math.Abs(c.visible-c.target()) < settleEpsilon && math.Abs(c.velocity) < settleEpsilon
}

// Height is the number of content rows to render right now.
func (c *Collapse) Height() int {
	h := int(math.Round(c.visible))
	if h < 0 {
		return 0
	}
	return min(h, c.content)
}

// Phase returns the current state.
func (c *Collapse) Phase() Phase { return c.phase }

// Bound returns the current row limit.
func (c *Collapse) Bound() int { return c.bound }

// Opacity is 1 while open or opening and 0 once a close has taken effect.
func (c *Collapse) Opacity() float64 { return c.opacity }

// Animating reports whether a tween or follow-up is still pending.
func (c *Collapse) Animating() bool {
	return c.frame != nil || c.followUp != nil
}
