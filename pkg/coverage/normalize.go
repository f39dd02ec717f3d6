package coverage

import (
	"fmt"
	"math"
)

// Baseline is the green intensity given to the least covered entry, so that
// every covered entry stays visibly green.
const Baseline = 0.35

// tint is the maximum red and blue channel value, applied to the least
// covered entry and fading to zero at full coverage.
const tint = 30

// Intensity is a normalized coverage score and its display color.
type Intensity struct {
	// Score is in [0,1].
	Score float64
	// Color is "#RRGGBB" with uppercase hex digits.
	Color string
}

// Normalize filters and rescales a coverage mapping.
//
// Entries with a score <= 0 (or NaN/+Inf) are dropped. The remaining scores
// are mapped linearly so the minimum becomes 0 and the maximum becomes 1;
// if they are all equal every entry becomes 1. The input is not modified.
func Normalize[K comparable](scores map[K]float64) map[K]Intensity {
	kept := make(map[K]float64, len(scores))
	lo, hi := math.Inf(1), math.Inf(-1)
	for k, s := range scores {
		if !(s > 0) || math.IsInf(s, 1) {
			continue
		}
		kept[k] = s
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	out := make(map[K]Intensity, len(kept))
	for k, s := range kept {
		v := 1.0
		if hi > lo {
			v = (s - lo) / (hi - lo)
		}
		out[k] = Intensity{Score: v, Color: Color(v)}
	}
	return out
}

// Color maps a normalized score v in [0,1] to a hex RGB string. Green grows
// from Baseline to full intensity; red and blue fade from a faint tint to 0.
// Values outside [0,1] are clamped.
func Color(v float64) string {
	v = math.Max(0, math.Min(1, v))
	intensity := Baseline + (1-Baseline)*v
	g := int(math.Round(255 * intensity))
	rb := int(math.Round(tint * (1 - v)))
	return fmt.Sprintf("#%02X%02X%02X", rb, g, rb)
}
