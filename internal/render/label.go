package render

import (
	"math"

	"golang.org/x/image/font"

	"github.com/luki/sensorlcd/internal/slot"
)

// labelBottomGap keeps circle-mode labels off the bezel, in reference px.
const labelBottomGap = 8

// drawSideLabel places the label at the bar's left edge, vertically centred
// on the value digits whose baseline is valueBaseline.
func (f *frame) drawSideLabel(face font.Face, s slot.Slot, valueBaseline, valueHeight int) {
	lh := InkHeight(face, s.Label)
	x := int(math.Round(f.params.SafeContentMargin))
	y := valueBaseline - (valueHeight-lh)/2
	x, y = s.LabelOffset.Apply(x, y)
	f.canvas.Text(face, s.Label, x, y, f.cfg.Colors.Label)
}

// drawBottomLabel centres the label near the bottom edge, inside the
// inscribed area on round panels.
func (f *frame) drawBottomLabel(face font.Face, s slot.Slot) {
	w := MeasureText(face, s.Label)
	x := (f.params.Width - w) / 2
	inset := float64(f.params.Height) * (1 - f.params.InscribeFactor) / 2
	y := f.params.Height - int(math.Round(inset)) - f.params.ScaleYInt(labelBottomGap)
	x, y = s.LabelOffset.Apply(x, y)
	f.canvas.Text(face, s.Label, x, y, f.cfg.Colors.Label)
}
