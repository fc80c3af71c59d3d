package display

import (
	"math"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/logging"
)

var logger = logging.New("display")

const (
	defaultContentScale = 0.98
	defaultBarWidth     = 0.98
	baseCornerRadius    = 8.0
)

// Params are the derived, per-frame layout constants.
type Params struct {
	Width, Height     int
	ScaleX, ScaleY    float64
	ScaleAvg          float64
	InscribeFactor    float64
	Circular          bool
	SafeBarWidth      int
	SafeContentMargin float64
	CornerRadius      float64
}

// Calculate derives Params from the configuration and the detected shape.
// It is a pure function of its inputs.
func Calculate(cfg config.Config, shape Shape) Params {
	w := float64(cfg.Display.Width)
	h := float64(cfg.Display.Height)

	p := Params{
		Width:          cfg.Display.Width,
		Height:         cfg.Display.Height,
		ScaleX:         w / ReferenceSize,
		ScaleY:         h / ReferenceSize,
		InscribeFactor: shape.InscribeFactor,
		Circular:       shape.Circular,
	}
	p.ScaleAvg = (p.ScaleX + p.ScaleY) / 2

	contentScale := defaultContentScale
	if cs := cfg.Display.ContentScale; cs != nil && *cs > 0 && *cs <= 1 {
		contentScale = *cs
	}
	barWidthFactor := defaultBarWidth
	if pct := cfg.Layout.BarWidthPercent; pct > 0 {
		barWidthFactor = pct / 100
	}

	safeArea := w * p.InscribeFactor
	p.SafeBarWidth = int(math.Floor(safeArea * contentScale * barWidthFactor))
	p.SafeContentMargin = (w - float64(p.SafeBarWidth)) / 2
	p.CornerRadius = baseCornerRadius * p.ScaleAvg

	if logger.IsDebug() {
		logger.Debug("scaling", "circular", p.Circular, "inscribe", p.InscribeFactor,
			"bar_width", p.SafeBarWidth, "margin", p.SafeContentMargin, "radius", p.CornerRadius)
	}
	return p
}

// Detect runs the ShapeDetector for cfg and the device name, then the
// ScalingCalculator.
func Detect(cfg config.Config, deviceName string) Params {
	shape := DetectShape(ShapeInput{
		DeviceName:    deviceName,
		Width:         cfg.Display.Width,
		Height:        cfg.Display.Height,
		Override:      ParseOverride(cfg.Display.Shape),
		ForceCircular: cfg.Display.ForceCircular,
		Inscribe:      cfg.Display.InscribeFactor,
	})
	return Calculate(cfg, shape)
}

// Scale returns v at the reference resolution scaled by the average factor.
func (p Params) Scale(v float64) float64 {
	return v * p.ScaleAvg
}

// ScaleYInt returns a vertical reference length in device pixels.
func (p Params) ScaleYInt(v int) int {
	return int(math.Round(float64(v) * p.ScaleY))
}
