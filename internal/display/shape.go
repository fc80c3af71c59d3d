// Package display classifies panels as round or rectangular and derives
// the pixel-space layout constants every renderer shares.
package display

import (
	"math"
	"strings"
)

// DefaultInscribeFactor is the side of the square inscribed in a unit
// circle: 1/√2.
const DefaultInscribeFactor = 1 / math.Sqrt2

// ReferenceSize is the baseline panel edge all layout values are given for.
const ReferenceSize = 240.0

// Override is the configured shape request.
type Override int

const (
	ShapeAuto Override = iota
	ShapeRectangular
	ShapeCircular
)

// ParseOverride maps "rectangular"/"circular" to their override; anything
// else is auto.
func ParseOverride(s string) Override {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangular":
		return ShapeRectangular
	case "circular":
		return ShapeCircular
	}
	return ShapeAuto
}

// Shape is the ShapeDetector result.
type Shape struct {
	Circular       bool
	InscribeFactor float64
}

// Rectangular is a full-width, square-cornered panel.
var Rectangular = Shape{Circular: false, InscribeFactor: 1.0}

// ShapeInput is everything the detector looks at.
type ShapeInput struct {
	DeviceName    string
	Width, Height int
	Override      Override
	ForceCircular bool     // legacy switch, below Override in priority
	Inscribe      *float64 // configured inscribe factor, nil for default
}

// deviceShapeMap lists device families whose panel shape depends on the
// resolution. A device is circular when its name contains the substring
// and either dimension exceeds minCircular.
var deviceShapeMap = []struct {
	substring   string
	minCircular int
}{
	{"Kraken", 240},
}

// DetectShape classifies the panel. Priority: explicit override, legacy
// force flag, then the device name heuristic. Unknown devices are
// rectangular.
func DetectShape(in ShapeInput) Shape {
	switch in.Override {
	case ShapeRectangular:
		return Rectangular
	case ShapeCircular:
		return circular(in.Inscribe)
	}
	if in.ForceCircular {
		return circular(in.Inscribe)
	}
	for _, entry := range deviceShapeMap {
		if !strings.Contains(in.DeviceName, entry.substring) {
			continue
		}
		if in.Width > entry.minCircular || in.Height > entry.minCircular {
			return circular(in.Inscribe)
		}
		return Rectangular
	}
	return Rectangular
}

// circular resolves the inscribe factor: a configured value in (0, 1] wins,
// anything else (including an explicit 0) selects 1/√2.
func circular(inscribe *float64) Shape {
	f := DefaultInscribeFactor
	if inscribe != nil && *inscribe > 0 && *inscribe <= 1 {
		f = *inscribe
	}
	return Shape{Circular: true, InscribeFactor: f}
}
