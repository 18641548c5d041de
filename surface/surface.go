// Package surface is the capability boundary between the selection logic
// and whatever draws the map. Nothing outside an implementation may reach
// past these interfaces.
package surface

import (
	"math"
	"time"

	"github.com/aerogrid/netmap/model"
)

// Easing names a fly-to timing curve.
type Easing string

const (
	EaseLinear    Easing = "linear"
	EaseOut       Easing = "ease-out"
	EaseInOut     Easing = "ease-in-out"
	DefaultEasing        = EaseOut
)

// ParseEasing maps a config string to an Easing.
func ParseEasing(s string) (Easing, bool) {
	switch e := Easing(s); e {
	case EaseLinear, EaseOut, EaseInOut:
		return e, true
	}
	return "", false
}

// Apply maps progress t in [0,1] through the curve. Unknown names behave
// like DefaultEasing.
func (e Easing) Apply(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	switch e {
	case EaseLinear:
		return t
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	default:
		return 1 - math.Pow(1-t, 3)
	}
}

// FlyOptions tunes an animated viewport move.
type FlyOptions struct {
	Duration time.Duration
	Easing   Easing
}

// MapSurface is the viewport capability.
type MapSurface interface {
	// CurrentZoom returns the current zoom level, or false when the surface
	// is not ready to report one.
	CurrentZoom() (float64, bool)
	// FlyTo animates the viewport to center on pos at zoom. A new call
	// supersedes a running animation.
	FlyTo(pos model.LatLng, zoom float64, opts FlyOptions)
}

// MarkerHandle is the per-node marker capability.
type MarkerHandle interface {
	OpenPopup()
	SetZIndexOffset(offset int)
}
