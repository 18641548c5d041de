package overlay

import (
	"fmt"
	"time"

	"github.com/aerogrid/netmap/schedule"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ToastType identifies the kind of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastError
)

// AnimPhase represents the current animation phase of a toast.
type AnimPhase int

const (
	PhaseSlidingIn AnimPhase = iota
	PhaseVisible
	PhaseSlidingOut
	PhaseDone
)

// Animation and display constants.
const (
	SlideInDuration  = 300 * time.Millisecond
	SlideOutDuration = 200 * time.Millisecond

	InfoDismissAfter    = 3 * time.Second
	SuccessDismissAfter = 3 * time.Second
	ErrorDismissAfter   = 5 * time.Second

	MinToastWidth = 30
	MaxToastWidth = 60
	MaxToasts     = 5
)

type toast struct {
	ID       string
	Type     ToastType
	Message  string
	Phase    AnimPhase
	Duration time.Duration
	Width    int // computed width based on message content

	// progress runs 0..1 through a slide phase.
	progress float64
	timer    schedule.Timer
}

func (t *toast) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// calcToastWidth computes the appropriate width for a toast based on its
// message content. The width includes border (2) + padding (2) + icon (1) + space (1).
func calcToastWidth(msg string) int {
	contentWidth := 2 + 1 + runewidth.StringWidth(msg) + 4
	return clampInt(contentWidth, MinToastWidth, MaxToastWidth)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToastManager manages the collection of active toast notifications. Phase
// changes run on the scheduler, so toasts advance with the rest of the UI.
type ToastManager struct {
	sched  schedule.Scheduler
	frame  time.Duration
	toasts []*toast
	nextID uint64
	width  int
	height int
}

func NewToastManager(sched schedule.Scheduler, frame time.Duration) *ToastManager {
	if frame <= 0 {
		frame = schedule.DefaultFrame
	}
	return &ToastManager{sched: sched, frame: frame}
}

// SetSize updates the available viewport dimensions for toast positioning.
func (tm *ToastManager) SetSize(width, height int) {
	tm.width = width
	tm.height = height
}

func (tm *ToastManager) Info(msg string) string {
	return tm.addToast(ToastInfo, msg, InfoDismissAfter)
}

func (tm *ToastManager) Success(msg string) string {
	return tm.addToast(ToastSuccess, msg, SuccessDismissAfter)
}

func (tm *ToastManager) Error(msg string) string {
	return tm.addToast(ToastError, msg, ErrorDismissAfter)
}

// HasActiveToasts returns true if any toast is still on screen.
func (tm *ToastManager) HasActiveToasts() bool {
	return len(tm.toasts) > 0
}

// Close cancels every pending phase change and drops all toasts.
func (tm *ToastManager) Close() {
	for _, t := range tm.toasts {
		t.stop()
	}
	tm.toasts = nil
}

func (tm *ToastManager) addToast(typ ToastType, msg string, duration time.Duration) string {
	// Deduplicate: if an identical toast (same type + message) already exists
	// and is still visible, restart its dismiss timer instead of creating a new one.
	for _, existing := range tm.toasts {
		if existing.Type == typ && existing.Message == msg && existing.Phase == PhaseVisible {
			tm.show(existing)
			return existing.ID
		}
		if existing.Type == typ && existing.Message == msg && existing.Phase == PhaseSlidingIn {
			return existing.ID
		}
	}

	tm.nextID++
	t := &toast{
		ID:       fmt.Sprintf("toast-%d", tm.nextID),
		Type:     typ,
		Message:  msg,
		Phase:    PhaseSlidingIn,
		Duration: duration,
		Width:    calcToastWidth(msg),
	}
	tm.enforceMaxToasts()
	tm.toasts = append(tm.toasts, t)
	tm.slide(t, SlideInDuration, func() { tm.show(t) })
	return t.ID
}

// slide advances t.progress frame by frame over d, then calls done.
func (tm *ToastManager) slide(t *toast, d time.Duration, done func()) {
	t.stop()
	t.progress = 0
	step := float64(tm.frame) / float64(d)
	var tick func()
	tick = func() {
		t.progress += step
		if t.progress >= 1 {
			t.progress = 1
			t.timer = nil
			done()
			return
		}
		t.timer = tm.sched.NextFrame(tick)
	}
	t.timer = tm.sched.NextFrame(tick)
}

func (tm *ToastManager) show(t *toast) {
	t.stop()
	t.Phase = PhaseVisible
	t.progress = 0
	t.timer = tm.sched.After(t.Duration, func() {
		t.timer = nil
		t.Phase = PhaseSlidingOut
		tm.slide(t, SlideOutDuration, func() { tm.remove(t) })
	})
}

func (tm *ToastManager) remove(t *toast) {
	t.stop()
	t.Phase = PhaseDone
	for i, other := range tm.toasts {
		if other == t {
			tm.toasts = append(tm.toasts[:i], tm.toasts[i+1:]...)
			return
		}
	}
}

// enforceMaxToasts drops the oldest toasts so one more fits under MaxToasts.
func (tm *ToastManager) enforceMaxToasts() {
	for len(tm.toasts) >= MaxToasts {
		tm.remove(tm.toasts[0])
	}
}

// toastColor returns the Rosé Pine Moon palette color for a toast type.
func toastColor(typ ToastType) lipgloss.Color {
	switch typ {
	case ToastError:
		return colorLove
	case ToastSuccess:
		return colorFoam
	default:
		return colorFoam
	}
}

func toastStyle(typ ToastType, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(toastColor(typ)).
		Padding(0, 1).
		Width(width)
}

func toastIcon(typ ToastType) string {
	style := lipgloss.NewStyle().Foreground(toastColor(typ))
	switch typ {
	case ToastSuccess:
		return style.Render("✓")
	case ToastError:
		return style.Render("✗")
	default:
		return style.Render("▸")
	}
}

// slideOffset returns the horizontal offset for a toast's slide animation.
func (t *toast) slideOffset() int {
	fullOffset := float64(t.Width + 4)
	switch t.Phase {
	case PhaseSlidingIn:
		// Ease-out
		p := 1 - (1-t.progress)*(1-t.progress)
		return int(fullOffset * (1 - p))
	case PhaseSlidingOut:
		// Ease-in
		return int(fullOffset * t.progress * t.progress)
	default:
		return 0
	}
}

// View renders all active toasts stacked vertically.
func (tm *ToastManager) View() string {
	if len(tm.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(tm.toasts))
	for _, t := range tm.toasts {
		rendered = append(rendered, toastStyle(t.Type, t.Width).Render(toastIcon(t.Type)+" "+t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// GetPosition returns the x, y coordinates for placing the toast overlay.
func (tm *ToastManager) GetPosition() (int, int) {
	// Use the widest active toast for right-edge alignment.
	widest := MinToastWidth
	maxOffset := 0
	for _, t := range tm.toasts {
		widest = max(widest, t.Width)
		maxOffset = max(maxOffset, t.slideOffset())
	}
	x := max(tm.width-widest-4, 0)
	return x + maxOffset, 1
}
