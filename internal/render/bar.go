package render

import (
	"math"
	"strconv"

	"golang.org/x/image/font"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/display"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

const (
	// fillSideMargin insets the fill from each bar end, as a share of the
	// display width.
	fillSideMargin = 0.0025
	// degreeScale sizes the degree sign relative to the value font.
	degreeScale = 0.60
	// degreeRise lifts the degree sign above the value baseline, as a
	// share of the value's ink height.
	degreeRise = 0.40
	// labelThreshold hides labels once a value needs three digits.
	labelThreshold = 99.0
	// referenceDigits anchors two-digit values so they don't jitter.
	referenceDigits = "88"
	degreeSign      = "°"
)

// frame bundles what every draw helper needs for one render call.
type frame struct {
	canvas *Canvas
	params display.Params
	cfg    config.Config
	fonts  *Fonts
}

// barRect is a bar's outline in device pixels.
type barRect struct {
	x, y, w, h float64
}

// horizontalBar returns the centred bar span shared by every layout.
func (f *frame) horizontalBar(y, h int) barRect {
	return barRect{
		x: math.Round(f.params.SafeContentMargin),
		y: float64(y),
		w: float64(f.params.SafeBarWidth),
		h: float64(h),
	}
}

// drawBar draws the background, the value fill and the optional border.
func (f *frame) drawBar(r barRect, s slot.Slot) {
	radius := f.params.CornerRadius
	f.canvas.FillRoundRect(r.x, r.y, r.w, r.h, radius, f.cfg.Colors.BarBackground)

	margin := math.Round(float64(f.params.Width) * fillSideMargin)
	fillX := r.x + margin
	fillMax := int(r.w - 2*margin)
	fw := float64(FillWidth(s.Value, s.MaxScale, fillMax))
	if fw > 0 {
		col := ColorFor(s.Value, s.Thresholds)
		if fw >= 2*radius {
			f.canvas.FillRoundRect(fillX, r.y, fw, r.h, radius, col)
		} else {
			f.canvas.FillRect(fillX, r.y, fw, r.h, col)
		}
	}

	if f.cfg.Layout.BorderOn() {
		lw := f.params.Scale(f.cfg.Layout.BorderWidth)
		f.canvas.StrokeRoundRect(r.x, r.y, r.w, r.h, radius, lw, f.cfg.Colors.BarBorder)
	}
}

// valueFace returns the face for value digits.
func (f *frame) valueFace() (font.Face, error) {
	return f.fonts.Face(f.params.Scale(f.cfg.Font.SizeValue))
}

// labelFace returns the face for slot labels.
func (f *frame) labelFace() (font.Face, error) {
	return f.fonts.Face(f.params.Scale(f.cfg.Font.SizeLabel))
}

// FormatValue renders a reading the way the panel shows it: whole units.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	return strconv.Itoa(int(v))
}

// valueMetrics are the measured extents of one value string.
type valueMetrics struct {
	text   string
	width  int // anchor width: "88" below 100, measured above
	height int // ink height above the baseline
}

func measureValue(face font.Face, v float64) valueMetrics {
	m := valueMetrics{text: FormatValue(v)}
	if v < 100 {
		m.width = MeasureText(face, referenceDigits)
	} else {
		m.width = MeasureText(face, m.text)
	}
	m.height = InkHeight(face, referenceDigits)
	return m
}

// drawValue centres the value horizontally with its baseline at y, applies
// the slot's offset and adds the degree sign for temperatures.
func (f *frame) drawValue(face font.Face, m valueMetrics, s slot.Slot, baseline int) error {
	x := (f.params.Width - m.width) / 2
	x, baseline = s.ValueOffset.Apply(x, baseline)
	f.canvas.Text(face, m.text, x, baseline, f.cfg.Colors.Value)

	if s.Category != sensor.CategoryTemp {
		return nil
	}
	degFace, err := f.fonts.Face(f.params.Scale(f.cfg.Font.SizeValue * degreeScale))
	if err != nil {
		return err
	}
	degX := x + m.width + int(math.Round(f.params.Scale(float64(f.cfg.Layout.DegreeSpacing))))
	degY := baseline - int(math.Round(degreeRise*float64(m.height)))
	f.canvas.Text(degFace, degreeSign, degX, degY, f.cfg.Colors.Value)
	return nil
}

// spacing returns the configured value-to-bar gap in device pixels.
func (f *frame) spacing() int {
	return f.params.ScaleYInt(f.cfg.Layout.ValueSpacing)
}
