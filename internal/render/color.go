package render

import (
	"math"

	"github.com/luki/sensorlcd/internal/config"
)

// BandIndex returns the threshold band of v: 0 below t[0], 1 in
// [t[0], t[1]), 2 in [t[1], t[2]) and 3 at t[2] or above. A value equal to
// a threshold belongs to the higher band.
func BandIndex(v float64, t [3]float64) int {
	switch {
	case v < t[0]:
		return 0
	case v < t[1]:
		return 1
	case v < t[2]:
		return 2
	default:
		return 3
	}
}

// ColorFor maps a value to its band colour.
func ColorFor(v float64, set config.ThresholdSet) config.Color {
	return set.C[BandIndex(v, set.T)]
}

// FillWidth is the filled part of a bar barWidth pixels wide:
// round(clamp(v/max, 0, 1) * barWidth). A non-positive max fills nothing.
func FillWidth(v, max float64, barWidth int) int {
	if max <= 0 || barWidth <= 0 || math.IsNaN(v) {
		return 0
	}
	ratio := math.Max(0, math.Min(1, v/max))
	return int(math.Round(ratio * float64(barWidth)))
}
