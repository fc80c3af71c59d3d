package render

import (
	"testing"

	"github.com/luki/sensorlcd/internal/config"
)

var (
	green      = config.MustHex("#00ff00")
	orange     = config.MustHex("#ffa500")
	darkOrange = config.MustHex("#ff8c00")
	red        = config.MustHex("#ff0000")
)

func TestColorForBoundaries(t *testing.T) {
	set := config.ThresholdSet{
		T: [3]float64{55, 65, 75},
		C: [4]config.Color{green, orange, darkOrange, red},
	}
	tests := []struct {
		value float64
		want  config.Color
	}{
		{-10, green},
		{54.9, green},
		{55.0, orange},
		{64.9, orange},
		{65.0, darkOrange},
		{74.99, darkOrange},
		{75.0, red},
		{120, red},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.value, set); got != tt.want {
			t.Errorf("ColorFor(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBandIndex(t *testing.T) {
	th := [3]float64{25, 28, 31}
	for v, want := range map[float64]int{24.99: 0, 25: 1, 27.9: 1, 28: 2, 31: 3} {
		if got := BandIndex(v, th); got != want {
			t.Errorf("BandIndex(%v) = %d, want %d", v, got, want)
		}
	}
}

func TestFillWidthMonotonic(t *testing.T) {
	const barWidth = 228
	const max = 115.0
	prev := -1
	for v := -20.0; v <= 200; v += 0.5 {
		got := FillWidth(v, max, barWidth)
		if got < prev {
			t.Fatalf("FillWidth(%v) = %d < FillWidth(prev) = %d", v, got, prev)
		}
		if got < 0 || got > barWidth {
			t.Fatalf("FillWidth(%v) = %d out of [0, %d]", v, got, barWidth)
		}
		if v >= max && got != barWidth {
			t.Errorf("FillWidth(%v) = %d, want clamp to %d", v, got, barWidth)
		}
		prev = got
	}
}

func TestFillWidthEdges(t *testing.T) {
	tests := []struct {
		v, max float64
		w      int
		want   int
	}{
		{0, 100, 200, 0},
		{50, 100, 200, 100},
		{50, 0, 200, 0},
		{50, -1, 200, 0},
		{70, 115, 228, 139},
		{10, 100, 0, 0},
	}
	for _, tt := range tests {
		if got := FillWidth(tt.v, tt.max, tt.w); got != tt.want {
			t.Errorf("FillWidth(%v, %v, %d) = %d, want %d", tt.v, tt.max, tt.w, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := map[float64]string{48.0: "48", 48.9: "48", 100: "100", 2400.4: "2400", -3.5: "-3"}
	for v, want := range tests {
		if got := FormatValue(v); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", v, got, want)
		}
	}
}
