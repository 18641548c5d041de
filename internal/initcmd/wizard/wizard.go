// Package wizard collects config.toml tuning through a huh form.
package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/surface"
	"github.com/aerogrid/netmap/ui/overlay"
	"github.com/charmbracelet/huh"
)

// State holds the form values. Numbers stay strings until ToTOMLConfig so
// the inputs can bind to them directly.
type State struct {
	MinZoom      string
	BaselineZoom string
	Easing       string
	FlyMS        string
	PopupMS      string
	UnmountedMS  string
	CollapseMS   string
	FrameMS      string

	Telemetry bool
	EventLog  bool
}

// NewState pre-fills the form from existing, or from the defaults when
// existing is nil.
func NewState(existing *config.TOMLConfigResult) *State {
	t := config.DefaultTuning()
	telemetry, eventLog := true, true
	if existing != nil {
		t = existing.Tuning
		if existing.TelemetryEnabled != nil {
			telemetry = *existing.TelemetryEnabled
		}
		if existing.EventLogEnabled != nil {
			eventLog = *existing.EventLogEnabled
		}
	}
	ms := func(d time.Duration) string {
		return strconv.FormatInt(d.Milliseconds(), 10)
	}
	return &State{
		MinZoom:      strconv.FormatFloat(t.MinFocusZoom, 'g', -1, 64),
		BaselineZoom: strconv.FormatFloat(t.BaselineZoom, 'g', -1, 64),
		Easing:       string(t.Easing),
		FlyMS:        ms(t.FlyDuration),
		PopupMS:      ms(t.PopupDelay),
		UnmountedMS:  ms(t.PopupDelayUnmounted),
		CollapseMS:   ms(t.CollapseDuration),
		FrameMS:      ms(t.Frame),
		Telemetry:    telemetry,
		EventLog:     eventLog,
	}
}

func validateZoom(s string) error {
	z, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if z < 0 || z > config.MaxZoom {
		return fmt.Errorf("want 0..%d", config.MaxZoom)
	}
	return nil
}

func validateMS(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("whole milliseconds")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// ToTOMLConfig converts the form values. Every key is written out.
func (s *State) ToTOMLConfig() (*config.TOMLConfig, error) {
	t := config.DefaultTuning()
	tc := config.TOMLConfigFromTuning(t)

	for _, f := range []struct {
		name string
		raw  string
		into **float64
	}{
		{"min zoom", s.MinZoom, &tc.Focus.MinZoom},
		{"baseline zoom", s.BaselineZoom, &tc.Focus.BaselineZoom},
	} {
		if err := validateZoom(f.raw); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		v, _ := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		*f.into = &v
	}

	for _, f := range []struct {
		name string
		raw  string
		into **int
	}{
		{"fly duration", s.FlyMS, &tc.Focus.FlyDurationMS},
		{"popup delay", s.PopupMS, &tc.Focus.PopupDelayMS},
		{"unmounted popup delay", s.UnmountedMS, &tc.Focus.PopupDelayUnmountedMS},
		{"collapse duration", s.CollapseMS, &tc.Animation.CollapseDurationMS},
		{"frame", s.FrameMS, &tc.Animation.FrameMS},
	} {
		if err := validateMS(f.raw); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		v, _ := strconv.Atoi(strings.TrimSpace(f.raw))
		*f.into = &v
	}

	if _, ok := surface.ParseEasing(s.Easing); !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidEasing, s.Easing)
	}
	tc.Focus.Easing = s.Easing

	telemetry, eventLog := s.Telemetry, s.EventLog
	tc.TelemetryEnabled = &telemetry
	tc.EventLogEnabled = &eventLog
	return tc, tc.Validate()
}

// Form builds the three-page form bound to s.
func Form(s *State) *huh.Form {
	easings := []huh.Option[string]{
		huh.NewOption("ease-out", string(surface.EaseOut)),
		huh.NewOption("ease-in-out", string(surface.EaseInOut)),
		huh.NewOption("linear", string(surface.EaseLinear)),
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Focus").
				Description("How the map flies to a selected node."),
			huh.NewInput().Title("minimum focus zoom").Value(&s.MinZoom).Validate(validateZoom),
			huh.NewInput().Title("baseline zoom").Value(&s.BaselineZoom).Validate(validateZoom),
			huh.NewSelect[string]().Title("easing").Options(easings...).Value(&s.Easing),
			huh.NewInput().Title("fly duration (ms)").Value(&s.FlyMS).Validate(validateMS),
			huh.NewInput().Title("popup delay (ms)").Value(&s.PopupMS).Validate(validateMS),
			huh.NewInput().Title("popup delay, marker not yet mounted (ms)").Value(&s.UnmountedMS).Validate(validateMS),
		),
		huh.NewGroup(
			huh.NewNote().Title("Animation"),
			huh.NewInput().Title("group collapse duration (ms)").Value(&s.CollapseMS).Validate(validateMS),
			huh.NewInput().Title("frame interval (ms)").Value(&s.FrameMS).Validate(validateMS),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Record the event log?").Value(&s.EventLog),
			huh.NewConfirm().Title("Send crash reports?").Value(&s.Telemetry),
		),
	).WithTheme(overlay.ThemeRosePine())
}

// Run shows the form and returns the collected state.
func Run(existing *config.TOMLConfigResult) (*State, error) {
	s := NewState(existing)
	if err := Form(s).Run(); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return s, nil
}
