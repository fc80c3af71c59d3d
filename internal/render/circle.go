package render

import (
	"github.com/luki/sensorlcd/internal/slot"
)

// renderCircle draws the single slot at pos centred on the panel: value
// above the bar and the label near the bottom edge.
func (f *frame) renderCircle(a slot.Assignment, pos slot.Position) (bool, error) {
	s := a[pos]
	if !s.Active {
		return false, nil
	}

	valueFace, err := f.valueFace()
	if err != nil {
		return false, err
	}
	labelFace, err := f.labelFace()
	if err != nil {
		return false, err
	}

	h := f.params.ScaleYInt(s.BarHeight)
	y := (f.params.Height - h) / 2
	m := measureValue(valueFace, s.Value)

	f.drawBar(f.horizontalBar(y, h), s)
	if err := f.drawValue(valueFace, m, s, y-f.spacing()); err != nil {
		return false, err
	}
	f.drawBottomLabel(labelFace, s)
	return true, nil
}
