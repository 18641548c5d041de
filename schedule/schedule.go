// Package schedule provides cancellable one-shot timers and frame callbacks
// for code that runs inside the single-threaded bubbletea update loop.
//
// Callbacks never run concurrently with Update: Loop turns each timer into a
// tea.Tick command and runs the callback when the resulting FiredMsg comes
// back through Update. A stopped timer's message is dropped on arrival.
package schedule

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultFrame is the frame interval used when none is configured (~60fps).
const DefaultFrame = 16 * time.Millisecond

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still
	// pending; stopping twice or after the callback ran is a no-op.
	Stop() bool
}

// Scheduler schedules callbacks on the owner's event loop.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	NextFrame(fn func()) Timer
}

// FiredMsg is delivered to Update when a Loop timer elapses.
type FiredMsg struct {
	ID uint64
}

// Loop is the bubbletea-backed Scheduler. The owning model must pass every
// FiredMsg to Fire and return Flush() from Update so newly scheduled ticks
// reach the runtime.
type Loop struct {
	frame   time.Duration
	nextID  uint64
	pending map[uint64]*loopTimer
	queued  []tea.Cmd
}

// NewLoop returns a Loop whose NextFrame fires after frame.
func NewLoop(frame time.Duration) *Loop {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Loop{frame: frame, pending: make(map[uint64]*loopTimer)}
}

type loopTimer struct {
	loop *Loop
	id   uint64
	fn   func()
}

func (t *loopTimer) Stop() bool {
	if _, ok := t.loop.pending[t.id]; !ok {
		return false
	}
	delete(t.loop.pending, t.id)
	return true
}

// After schedules fn to run d from now.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	l.nextID++
	id := l.nextID
	t := &loopTimer{loop: l, id: id, fn: fn}
	l.pending[id] = t
	l.queued = append(l.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return FiredMsg{ID: id}
	}))
	return t
}

// NextFrame schedules fn for the next frame.
func (l *Loop) NextFrame(fn func()) Timer {
	return l.After(l.frame, fn)
}

// Fire runs the callback of msg's timer if it is still pending. It reports
// whether a callback ran.
func (l *Loop) Fire(msg FiredMsg) bool {
	t, ok := l.pending[msg.ID]
	if !ok {
		return false
	}
	delete(l.pending, msg.ID)
	t.fn()
	return true
}

// Flush returns the ticks scheduled since the last Flush, or nil.
func (l *Loop) Flush() tea.Cmd {
	if len(l.queued) == 0 {
		return nil
	}
	cmds := l.queued
	l.queued = nil
	return tea.Batch(cmds...)
}

// Pending returns the number of timers that have not fired or been stopped.
func (l *Loop) Pending() int {
	return len(l.pending)
}
