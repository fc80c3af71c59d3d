package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-stack/stack"
	"github.com/golang/freetype/truetype"
	"github.com/karlmutch/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// Fonts builds faces of one TrueType font at any size. Faces are cached
// per size; a Fonts value must not be shared between concurrent renders.
type Fonts struct {
	font  *truetype.Font
	faces map[float64]font.Face
}

// LoadFonts parses the TrueType file at path, or the built-in Go Bold face
// when path is empty.
func LoadFonts(path string) (*Fonts, error) {
	raw := gobold.TTF
	if path != "" {
		b, errGo := os.ReadFile(path)
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
		}
		raw = b
	}
	f, errGo := truetype.Parse(raw)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	return &Fonts{font: f, faces: make(map[float64]font.Face)}, nil
}

// Face returns the face at size points (72 DPI, so points are pixels).
func (f *Fonts) Face(size float64) (font.Face, error) {
	if f == nil || f.font == nil {
		return nil, fmt.Errorf("%w: no font loaded", ErrText)
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("%w: invalid font size %v", ErrText, size)
	}
	size = math.Round(size*4) / 4
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(f.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	f.faces[size] = face
	return face, nil
}
