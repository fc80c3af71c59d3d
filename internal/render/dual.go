package render

import (
	"github.com/luki/sensorlcd/internal/slot"
)

// renderDual lays out the up and down slots as one vertically centred
// block: upper value above its bar, lower value below its bar. The mid
// slot is not part of this layout. It reports whether anything was drawn.
func (f *frame) renderDual(a slot.Assignment) (bool, error) {
	up, down := a[slot.Up], a[slot.Down]
	if !up.Active && !down.Active {
		return false, nil
	}

	var hUp, hDown, gap int
	if up.Active {
		hUp = f.params.ScaleYInt(up.BarHeight)
	}
	if down.Active {
		hDown = f.params.ScaleYInt(down.BarHeight)
	}
	if up.Active && down.Active {
		gap = f.params.ScaleYInt(f.cfg.Layout.BarGap)
	}
	startY := (f.params.Height - (hUp + hDown + gap)) / 2
	upY := startY
	downY := startY + hUp + gap

	valueFace, err := f.valueFace()
	if err != nil {
		return false, err
	}
	labelFace, err := f.labelFace()
	if err != nil {
		return false, err
	}

	showLabels := !labelsSuppressed(up, down)
	spacing := f.spacing()

	if up.Active {
		m := measureValue(valueFace, up.Value)
		f.drawBar(f.horizontalBar(upY, hUp), up)
		baseline := upY - spacing
		if err := f.drawValue(valueFace, m, up, baseline); err != nil {
			return false, err
		}
		if showLabels {
			f.drawSideLabel(labelFace, up, baseline, m.height)
		}
	}
	if down.Active {
		m := measureValue(valueFace, down.Value)
		f.drawBar(f.horizontalBar(downY, hDown), down)
		baseline := downY + hDown + spacing + m.height
		if err := f.drawValue(valueFace, m, down, baseline); err != nil {
			return false, err
		}
		if showLabels {
			f.drawSideLabel(labelFace, down, baseline, m.height)
		}
	}
	return true, nil
}

// labelsSuppressed hides every label of the frame once either active value
// reaches three digits.
func labelsSuppressed(up, down slot.Slot) bool {
	return (up.Active && up.Value >= labelThreshold) || (down.Active && down.Value >= labelThreshold)
}
