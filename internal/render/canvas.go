package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrCanvas is returned when the frame buffer or its drawing context
	// cannot be created.
	ErrCanvas = errors.New("canvas unavailable")
	// ErrText is returned when a font face cannot be built.
	ErrText = errors.New("text shaping failed")
)

// maxCanvasEdge bounds the frame buffer; device panels are a few hundred
// pixels square.
const maxCanvasEdge = 4096

// Canvas is one frame's pixel buffer and vector context. It counts draw
// operations and records drawn strings so callers can tell an empty frame
// from a drawn one.
type Canvas struct {
	img   *image.RGBA
	gc    *draw2dimg.GraphicContext
	ops   int
	texts []string
}

// NewCanvas allocates a width×height buffer cleared to bg.
func NewCanvas(width, height int, bg color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 || width > maxCanvasEdge || height > maxCanvasEdge {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrCanvas, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	gc := draw2dimg.NewGraphicContext(img)
	if gc == nil {
		return nil, fmt.Errorf("%w: no graphic context", ErrCanvas)
	}
	return &Canvas{img: img, gc: gc}, nil
}

// Close releases the drawing context. The image stays valid.
func (c *Canvas) Close() {
	c.gc = nil
}

// Image returns the frame buffer.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Ops is the number of draw operations issued since NewCanvas.
func (c *Canvas) Ops() int { return c.ops }

// Texts returns every string drawn, in order.
func (c *Canvas) Texts() []string { return c.texts }

// Bounds returns the frame rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// FillRect fills an axis-aligned rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.ops++
	c.gc.BeginPath()
	draw2dkit.Rectangle(c.gc, x, y, x+w, y+h)
	c.gc.SetFillColor(col)
	c.gc.Fill()
}

// FillRoundRect fills a rectangle with corners of radius r.
func (c *Canvas) FillRoundRect(x, y, w, h, r float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r = clampRadius(r, w, h)
	c.ops++
	c.gc.BeginPath()
	draw2dkit.RoundedRectangle(c.gc, x, y, x+w, y+h, 2*r, 2*r)
	c.gc.SetFillColor(col)
	c.gc.Fill()
}

// StrokeRoundRect outlines a rounded rectangle with a line of width lw.
func (c *Canvas) StrokeRoundRect(x, y, w, h, r, lw float64, col color.Color) {
	if w <= 0 || h <= 0 || lw <= 0 {
		return
	}
	r = clampRadius(r, w, h)
	c.ops++
	c.gc.BeginPath()
	draw2dkit.RoundedRectangle(c.gc, x, y, x+w, y+h, 2*r, 2*r)
	c.gc.SetStrokeColor(col)
	c.gc.SetLineWidth(lw)
	c.gc.Stroke()
}

// Text draws s with its baseline origin at (x, y).
func (c *Canvas) Text(face font.Face, s string, x, y int, col color.Color) {
	if s == "" {
		return
	}
	c.ops++
	c.texts = append(c.texts, s)
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// MeasureText returns the advance width of s.
func MeasureText(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// InkHeight returns how far the glyphs of s rise above the baseline.
func InkHeight(face font.Face, s string) int {
	bounds, _ := font.BoundString(face, s)
	return (-bounds.Min.Y).Ceil()
}

func clampRadius(r, w, h float64) float64 {
	return math.Max(0, math.Min(r, math.Min(w, h)/2))
}
