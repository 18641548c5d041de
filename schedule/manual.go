package schedule

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Timers due at the
// same instant fire in the order they were scheduled.
type Manual struct {
	frame time.Duration
	now   time.Duration
	seq   uint64
	queue []*manualTimer
}

// NewManual returns a Manual scheduler with the given frame interval.
func NewManual(frame time.Duration) *Manual {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Manual{frame: frame}
}

type manualTimer struct {
	m       *Manual
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.m.remove(t)
	return true
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now + d, seq: m.seq, fn: fn}
	m.queue = append(m.queue, t)
	return t
}

func (m *Manual) NextFrame(fn func()) Timer {
	return m.After(m.frame, fn)
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers scheduled by callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.earliest()
		if next == nil || next.due > target {
			break
		}
		m.now = next.due
		m.remove(next)
		next.fired = true
		next.fn()
	}
	m.now = target
}

// Frame advances the clock by one frame interval.
func (m *Manual) Frame() {
	m.Advance(m.frame)
}

// Frames advances n frames.
func (m *Manual) Frames(n int) {
	for i := 0; i < n; i++ {
		m.Frame()
	}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of timers still queued.
func (m *Manual) Pending() int {
	return len(m.queue)
}

func (m *Manual) earliest() *manualTimer {
	if len(m.queue) == 0 {
		return nil
	}
	sort.SliceStable(m.queue, func(i, j int) bool {
		if m.queue[i].due != m.queue[j].due {
			return m.queue[i].due < m.queue[j].due
		}
		return m.queue[i].seq < m.queue[j].seq
	})
	return m.queue[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, q := range m.queue {
		if q == t {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}
