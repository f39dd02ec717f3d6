// Package coverage turns raw coverage scores into comparable intensities.
//
// Scores come from an external measurement (for example test execution
// counts) and are keyed by node signature or edge key. [Normalize] drops
// uncovered entries, rescales the rest to [0,1] and assigns each a green
// shade:
//
//	norm := coverage.Normalize(map[string]float64{"a": 1, "b": 3})
//	norm["a"].Color // "#1E591E" (baseline intensity)
//	norm["b"].Color // "#00FF00" (full intensity)
//
// Keys missing from the result have no color.
package coverage
