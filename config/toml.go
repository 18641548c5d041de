package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aerogrid/netmap/surface"
)

const TOMLConfigFileName = "config.toml"

// MaxZoom is the deepest zoom level a focus may target.
const MaxZoom = 22

var (
	ErrInvalidZoom     = errors.New("zoom out of range")
	ErrInvalidDuration = errors.New("negative duration")
	ErrInvalidEasing   = errors.New("unknown easing")
)

// Tuning holds the focus and animation timings.
type Tuning struct {
	MinFocusZoom        float64
	BaselineZoom        float64
	FlyDuration         time.Duration
	Easing              surface.Easing
	PopupDelay          time.Duration
	PopupDelayUnmounted time.Duration
	RaisedZIndex        int

	CollapseDuration time.Duration
	RelaxedBound     int
	Frame            time.Duration
}

// DefaultTuning returns the stock timings.
func DefaultTuning() Tuning {
	return Tuning{
		MinFocusZoom:        15,
		BaselineZoom:        13,
		FlyDuration:         800 * time.Millisecond,
		Easing:              surface.DefaultEasing,
		PopupDelay:          350 * time.Millisecond,
		PopupDelayUnmounted: 600 * time.Millisecond,
		RaisedZIndex:        1000,
		CollapseDuration:    320 * time.Millisecond,
		RelaxedBound:        2000,
		Frame:               16 * time.Millisecond,
	}
}

// TOMLFocus is the [focus] table.
type TOMLFocus struct {
	MinZoom               *float64 `toml:"min_zoom,omitempty"`
	BaselineZoom          *float64 `toml:"baseline_zoom,omitempty"`
	FlyDurationMS         *int     `toml:"fly_duration_ms,omitempty"`
	Easing                string   `toml:"easing,omitempty"`
	PopupDelayMS          *int     `toml:"popup_delay_ms,omitempty"`
	PopupDelayUnmountedMS *int     `toml:"popup_delay_unmounted_ms,omitempty"`
	RaisedZIndex          *int     `toml:"raised_z_index,omitempty"`
}

// TOMLAnimation is the [animation] table.
type TOMLAnimation struct {
	CollapseDurationMS *int `toml:"collapse_duration_ms,omitempty"`
	RelaxedBound       *int `toml:"relaxed_bound,omitempty"`
	FrameMS            *int `toml:"frame_ms,omitempty"`
}

// TOMLConfig is the on-disk shape of config.toml. Unset keys keep defaults.
type TOMLConfig struct {
	TelemetryEnabled *bool         `toml:"telemetry_enabled,omitempty"`
	EventLogEnabled  *bool         `toml:"event_log_enabled,omitempty"`
	Focus            TOMLFocus     `toml:"focus"`
	Animation        TOMLAnimation `toml:"animation"`
}

// TOMLConfigResult is a validated config.toml resolved against defaults.
type TOMLConfigResult struct {
	Tuning           Tuning
	TelemetryEnabled *bool
	EventLogEnabled  *bool
}

// Validate rejects values the focus sequence cannot honour.
func (tc *TOMLConfig) Validate() error {
	for name, z := range map[string]*float64{
		"min_zoom":      tc.Focus.MinZoom,
		"baseline_zoom": tc.Focus.BaselineZoom,
	} {
		if z != nil && (*z < 0 || *z > MaxZoom) {
			return fmt.Errorf("%w: %s = %v (want 0..%d)", ErrInvalidZoom, name, *z, MaxZoom)
		}
	}
	for name, ms := range map[string]*int{
		"fly_duration_ms":          tc.Focus.FlyDurationMS,
		"popup_delay_ms":           tc.Focus.PopupDelayMS,
		"popup_delay_unmounted_ms": tc.Focus.PopupDelayUnmountedMS,
		"collapse_duration_ms":     tc.Animation.CollapseDurationMS,
		"frame_ms":                 tc.Animation.FrameMS,
	} {
		if ms != nil && *ms < 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidDuration, name, *ms)
		}
	}
	if tc.Focus.Easing != "" {
		if _, ok := surface.ParseEasing(tc.Focus.Easing); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidEasing, tc.Focus.Easing)
		}
	}
	return nil
}

// Resolve applies tc over the defaults.
func (tc *TOMLConfig) Resolve() *TOMLConfigResult {
	t := DefaultTuning()
	ms := func(v *int, into *time.Duration) {
		if v != nil {
			*into = time.Duration(*v) * time.Millisecond
		}
	}
	if tc.Focus.MinZoom != nil {
		t.MinFocusZoom = *tc.Focus.MinZoom
	}
	if tc.Focus.BaselineZoom != nil {
		t.BaselineZoom = *tc.Focus.BaselineZoom
	}
	if e, ok := surface.ParseEasing(tc.Focus.Easing); ok {
		t.Easing = e
	}
	if tc.Focus.RaisedZIndex != nil {
		t.RaisedZIndex = *tc.Focus.RaisedZIndex
	}
	ms(tc.Focus.FlyDurationMS, &t.FlyDuration)
	ms(tc.Focus.PopupDelayMS, &t.PopupDelay)
	ms(tc.Focus.PopupDelayUnmountedMS, &t.PopupDelayUnmounted)
	ms(tc.Animation.CollapseDurationMS, &t.CollapseDuration)
	if tc.Animation.FrameMS != nil && *tc.Animation.FrameMS > 0 {
		t.Frame = time.Duration(*tc.Animation.FrameMS) * time.Millisecond
	}
	if tc.Animation.RelaxedBound != nil && *tc.Animation.RelaxedBound > 0 {
		t.RelaxedBound = *tc.Animation.RelaxedBound
	}
	return &TOMLConfigResult{
		Tuning:           t,
		TelemetryEnabled: tc.TelemetryEnabled,
		EventLogEnabled:  tc.EventLogEnabled,
	}
}

// TOMLConfigFromTuning builds a fully populated TOMLConfig, used by setup to
// write every key out.
func TOMLConfigFromTuning(t Tuning) *TOMLConfig {
	ms := func(d time.Duration) *int {
		v := int(d / time.Millisecond)
		return &v
	}
	minZoom, baseline, raised, bound := t.MinFocusZoom, t.BaselineZoom, t.RaisedZIndex, t.RelaxedBound
	return &TOMLConfig{
		Focus: TOMLFocus{
			MinZoom:               &minZoom,
			BaselineZoom:          &baseline,
			FlyDurationMS:         ms(t.FlyDuration),
			Easing:                string(t.Easing),
			PopupDelayMS:          ms(t.PopupDelay),
			PopupDelayUnmountedMS: ms(t.PopupDelayUnmounted),
			RaisedZIndex:          &raised,
		},
		Animation: TOMLAnimation{
			CollapseDurationMS: ms(t.CollapseDuration),
			RelaxedBound:       &bound,
			FrameMS:            ms(t.Frame),
		},
	}
}

// TOMLConfigPath returns the path of config.toml in the config dir.
func TOMLConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TOMLConfigFileName), nil
}

// LoadTOMLConfig loads config.toml from the config dir. A missing file is
// not an error and returns nil.
func LoadTOMLConfig() (*TOMLConfigResult, error) {
	path, err := TOMLConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadTOMLConfigFrom(path)
}

// LoadTOMLConfigFrom parses, validates and resolves the file at path.
func LoadTOMLConfigFrom(path string) (*TOMLConfigResult, error) {
	var tc TOMLConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return tc.Resolve(), nil
}

// SaveTOMLConfigTo writes tc to path, creating parent directories.
func SaveTOMLConfigTo(tc *TOMLConfig, path string) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tc); err != nil {
		return fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// SaveTOMLConfig writes tc to the config dir.
func SaveTOMLConfig(tc *TOMLConfig) error {
	path, err := TOMLConfigPath()
	if err != nil {
		return err
	}
	return SaveTOMLConfigTo(tc, path)
}
