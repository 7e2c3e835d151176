package scroll

import (
	"math"
	"strings"
)

// EaseFunc maps animation progress t in [0, 1] to eased progress.
type EaseFunc func(t float64) float64

func Linear(t float64) float64 { return t }

// EaseIn is cubic ease-in.
func EaseIn(t float64) float64 { return t * t * t }

// EaseOut is cubic ease-out, the default.
func EaseOut(t float64) float64 { return 1 - math.Pow(1-t, 3) }

// EaseInOut is cubic ease-in-out.
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseByName resolves "linear", "ease-in", "ease-out" or "ease-in-out".
// Anything else returns EaseOut.
func EaseByName(name string) EaseFunc {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear
	case "ease-in", "easein":
		return EaseIn
	case "ease-in-out", "easeinout":
		return EaseInOut
	default:
		return EaseOut
	}
}
