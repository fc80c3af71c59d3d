package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	fonts, err := LoadFonts("")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	return NewEngine(fonts)
}

func snapshot(values map[string]float64) sensor.Snapshot {
	snap := sensor.NewSnapshot(t0)
	for k, v := range values {
		snap.Set(sensor.Reading{Key: k, Value: v, Category: sensor.CategoryTemp})
	}
	return snap
}

func contains(texts []string, s string) bool {
	for _, t := range texts {
		if t == s {
			return true
		}
	}
	return false
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func TestRenderNoActiveSlots(t *testing.T) {
	for _, mode := range []string{"dual", "circle"} {
		cfg := config.Default()
		cfg.Display.Mode = mode
		cfg.Slots = config.Slots{Up: "none", Mid: "none", Down: "none"}
		cfg.Colors.Background = config.MustHex("#102030")

		frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 50}), "", t0)
		if err != nil {
			t.Fatalf("%s: Render: %v", mode, err)
		}
		if frame.Drawn {
			t.Errorf("%s: Drawn = true, want false", mode)
		}
		if frame.Ops != 0 {
			t.Errorf("%s: Ops = %d, want 0", mode, frame.Ops)
		}
		b := frame.Image.Bounds()
		if b.Dx() != 240 || b.Dy() != 240 {
			t.Errorf("%s: size %v", mode, b)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if !sameColor(frame.Image.At(x, y), cfg.Colors.Background) {
					t.Fatalf("%s: pixel (%d,%d) = %v, want background", mode, x, y, frame.Image.At(x, y))
				}
			}
		}
	}
}

func TestRenderDualLabelSuppression(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 100, "gpu": 50}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !frame.Drawn {
		t.Fatal("Drawn = false")
	}
	if contains(frame.Texts, "CPU") || contains(frame.Texts, "GPU") {
		t.Errorf("labels drawn with a three-digit value: %q", frame.Texts)
	}
	if !contains(frame.Texts, "100") || !contains(frame.Texts, "50") {
		t.Errorf("values missing: %q", frame.Texts)
	}
}

func TestRenderDualLabels(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 98.9, "gpu": 50}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !contains(frame.Texts, "CPU") || !contains(frame.Texts, "GPU") {
		t.Errorf("labels missing below 99: %q", frame.Texts)
	}
	if n := strings.Count(strings.Join(frame.Texts, ""), degreeSign); n != 2 {
		t.Errorf("degree signs = %d, want 2", n)
	}
	if len(frame.Shown) != 2 || frame.Shown[0] != slot.Up || frame.Shown[1] != slot.Down {
		t.Errorf("Shown = %v", frame.Shown)
	}
}

func TestRenderDualIgnoresMid(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "none", Mid: "liquid", Down: "none"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"liquid": 30}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Drawn || frame.Ops != 0 {
		t.Errorf("dual mode drew the mid slot: drawn=%v ops=%d", frame.Drawn, frame.Ops)
	}
}

func TestRenderDualFillColor(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 70, "gpu": 40}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Bars are 24px with a 12px gap, centred: up spans y 90..114, down
	// 126..150. Fills start at x=6.
	if got := frame.Image.At(50, 102); !sameColor(got, cfg.Thresholds.CPU.C[2]) {
		t.Errorf("cpu fill = %v, want band 2 %v", got, cfg.Thresholds.CPU.C[2])
	}
	if got := frame.Image.At(40, 138); !sameColor(got, cfg.Thresholds.GPU.C[0]) {
		t.Errorf("gpu fill = %v, want band 0 %v", got, cfg.Thresholds.GPU.C[0])
	}
	// Past the gpu fill (40/115*228 = 79px) the bar background shows.
	if got := frame.Image.At(150, 138); !sameColor(got, cfg.Colors.BarBackground) {
		t.Errorf("gpu bar background = %v, want %v", got, cfg.Colors.BarBackground)
	}
	if got := frame.Image.At(120, 120); !sameColor(got, cfg.Colors.Background) {
		t.Errorf("gap = %v, want background", got)
	}
}

func TestRenderMissingSensorDrawsEmptyBar(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 45}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !frame.Drawn || frame.Assignment[slot.Down].Found {
		t.Fatalf("drawn=%v found=%v", frame.Drawn, frame.Assignment[slot.Down].Found)
	}
	if !contains(frame.Texts, "0") {
		t.Errorf("missing sensor should show 0: %q", frame.Texts)
	}
	if got := frame.Image.At(40, 138); !sameColor(got, cfg.Colors.BarBackground) {
		t.Errorf("missing sensor bar = %v, want unfilled background", got)
	}
}

func TestRenderCircleCycling(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Mode = "circle"
	cfg.Display.CircleSwitchInterval = 5
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}
	snap := snapshot(map[string]float64{"cpu": 41, "gpu": 62})

	e := testEngine(t)
	steps := []struct {
		at    time.Duration
		want  slot.Position
		value string
		label string
	}{
		{0, slot.Up, "41", "CPU"},
		{4 * time.Second, slot.Up, "41", "CPU"},
		{5 * time.Second, slot.Down, "62", "GPU"},
		{10 * time.Second, slot.Up, "41", "CPU"},
	}
	for _, step := range steps {
		frame, err := e.Render(cfg, snap, "Kraken Z73", t0.Add(step.at))
		if err != nil {
			t.Fatalf("t=%v: Render: %v", step.at, err)
		}
		if len(frame.Shown) != 1 || frame.Shown[0] != step.want {
			t.Errorf("t=%v: Shown = %v, want %v", step.at, frame.Shown, step.want)
		}
		if !contains(frame.Texts, step.value) || !contains(frame.Texts, step.label) {
			t.Errorf("t=%v: texts %q, want %s and %s", step.at, frame.Texts, step.value, step.label)
		}
		if e.Cycle().Index != step.want {
			t.Errorf("t=%v: cycle index %v", step.at, e.Cycle().Index)
		}
	}
}

func TestRenderCircleUnnormalizedInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Mode = "circle"
	cfg.Display.CircleSwitchInterval = 0
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "gpu"}
	snap := snapshot(map[string]float64{"cpu": 41, "gpu": 62})

	e := testEngine(t)
	for _, at := range []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second} {
		frame, err := e.Render(cfg, snap, "", t0.Add(at))
		if err != nil {
			t.Fatalf("t=%v: Render: %v", at, err)
		}
		if len(frame.Shown) != 1 || frame.Shown[0] != slot.Up {
			t.Errorf("t=%v: Shown = %v, want up until the default interval", at, frame.Shown)
		}
	}
	frame, err := e.Render(cfg, snap, "", t0.Add(5*time.Second))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame.Shown[0] != slot.Down {
		t.Errorf("t=5s: Shown = %v, want down", frame.Shown)
	}
}

func TestRenderCircleThreeDigitKeepsLabel(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Mode = "circle"
	cfg.Slots = config.Slots{Up: "none", Mid: "cpu", Down: "none"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 101}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !contains(frame.Texts, "CPU") || !contains(frame.Texts, "101") {
		t.Errorf("texts %q", frame.Texts)
	}
}

func TestRenderCanvasFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Width = 0
	cfg.Display.Mode = "circle"

	e := testEngine(t)
	frame, err := e.Render(cfg, snapshot(map[string]float64{"cpu": 50}), "", t0)
	if !errors.Is(err, ErrCanvas) {
		t.Fatalf("err = %v, want ErrCanvas", err)
	}
	if frame != nil {
		t.Error("failed render returned a frame")
	}
	if e.Cycle().Started {
		t.Error("failed render advanced the cycle")
	}
}

func TestRenderTextFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "none"}

	_, err := NewEngine(nil).Render(cfg, snapshot(map[string]float64{"cpu": 50}), "", t0)
	if !errors.Is(err, ErrText) {
		t.Fatalf("err = %v, want ErrText", err)
	}
}

func TestRenderCircularPanelSize(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Width, cfg.Display.Height = 320, 320

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 50, "gpu": 60}), "Kraken Z73", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !frame.Params.Circular {
		t.Error("Kraken at 320px should be circular")
	}
	if b := frame.Image.Bounds(); b.Dx() != 320 || b.Dy() != 320 {
		t.Errorf("size %v, want 320x320", b)
	}
	// Bars stay inside the inscribed square.
	if got := frame.Image.At(30, 160); !sameColor(got, cfg.Colors.Background) {
		t.Errorf("pixel outside inscribed area = %v, want background", got)
	}
}

func ptr[T any](v T) *T { return &v }

// inkBox returns the bounds of the pixels inside r that are exactly col.
func inkBox(img image.Image, r image.Rectangle, col color.Color) image.Rectangle {
	box := image.Rectangle{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if sameColor(img.At(x, y), col) {
				box = box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return box
}

// With a single active bar the block is centred: a 24px bar spans y
// 108..131 on a 240px panel and the fill starts at x=6.

func TestRenderFillCorners(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  func(cfg config.Config) color.Color
	}{
		// 5/115*228 = 10px, narrower than two radii: a plain rectangle
		// that covers its corner pixel.
		{"thin", 5, func(cfg config.Config) color.Color { return cfg.Thresholds.CPU.C[0] }},
		// 70/115*228 = 139px: rounded, the corner pixel stays clear of
		// both the fill and the bar background.
		{"wide", 70, func(cfg config.Config) color.Color { return cfg.Colors.Background }},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.Layout.BorderEnabled = ptr(false)
		cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "none"}

		frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": tt.value}), "", t0)
		if err != nil {
			t.Fatalf("%s: Render: %v", tt.name, err)
		}
		if got, want := frame.Image.At(6, 108), tt.want(cfg); !sameColor(got, want) {
			t.Errorf("%s: corner pixel = %v, want %v", tt.name, got, want)
		}
		if got := frame.Image.At(10, 120); !sameColor(got, ColorFor(tt.value, cfg.Thresholds.CPU)) {
			t.Errorf("%s: fill = %v", tt.name, got)
		}
	}
}

func TestRenderBorderOverFill(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.BorderWidth = 4
	cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "none"}

	frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 70}), "", t0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// The 4px stroke is centred on the bar outline: rows 106..109 on the
	// top edge, columns 233..236 on the right edge, 3..6 on the left.
	border := []image.Point{
		{50, 107},  // top edge, above the fill
		{50, 109},  // top edge, over the fill
		{160, 109}, // top edge, past the fill
		{6, 120},   // left edge, over the fill
		{234, 120}, // right edge
		{120, 132}, // bottom edge
	}
	for _, p := range border {
		if got := frame.Image.At(p.X, p.Y); !sameColor(got, cfg.Colors.BarBorder) {
			t.Errorf("pixel %v = %v, want border %v", p, got, cfg.Colors.BarBorder)
		}
	}
	if got := frame.Image.At(50, 120); !sameColor(got, cfg.Thresholds.CPU.C[2]) {
		t.Errorf("fill = %v, want band 2", got)
	}
	if got := frame.Image.At(160, 120); !sameColor(got, cfg.Colors.BarBackground) {
		t.Errorf("unfilled = %v, want bar background", got)
	}
}

func TestRenderValueOffset(t *testing.T) {
	valueInk := func(off config.Offset) image.Rectangle {
		cfg := config.Default()
		cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "none"}
		cfg.Offsets.Value.CPU = off
		frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 50}), "", t0)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return inkBox(frame.Image, image.Rect(0, 0, 240, 108), cfg.Colors.Value)
	}

	base := valueInk(config.Offset{})
	if base.Empty() {
		t.Fatal("no value ink above the bar")
	}
	moved := valueInk(config.Offset{X: ptr(-15), Y: ptr(-10)})
	if want := base.Add(image.Pt(-15, -10)); moved != want {
		t.Errorf("offset ink = %v, want %v", moved, want)
	}
	if onlyY := valueInk(config.Offset{Y: ptr(4)}); onlyY != base.Add(image.Pt(0, 4)) {
		t.Errorf("y-only offset ink = %v, want %v", onlyY, base.Add(image.Pt(0, 4)))
	}
}

func TestRenderDegreeSign(t *testing.T) {
	fonts, err := LoadFonts("")
	if err != nil {
		t.Fatalf("LoadFonts: %v", err)
	}
	face, err := fonts.Face(100)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	w, h := MeasureText(face, "88"), InkHeight(face, "88")
	digitsRight := (240-w)/2 + w
	// Up-only: bar top at 108, value baseline 8px above it.
	baseline := 100
	degTop := baseline - int(math.Round(0.40*float64(h)))

	degreeInk := func(spacing int) image.Rectangle {
		cfg := config.Default()
		cfg.Layout.DegreeSpacing = spacing
		cfg.Slots = config.Slots{Up: "cpu", Mid: "none", Down: "none"}
		frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"cpu": 50}), "", t0)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return inkBox(frame.Image, image.Rect(digitsRight, 0, 240, 108), cfg.Colors.Value)
	}

	ink := degreeInk(16)
	if ink.Empty() {
		t.Fatal("no degree sign right of the digits")
	}
	if degX := digitsRight + 16; ink.Min.X < degX {
		t.Errorf("degree ink starts at x=%d, want >= %d", ink.Min.X, degX)
	}
	if ink.Max.Y > degTop {
		t.Errorf("degree ink reaches y=%d, want above %d (lifted 0.40 of the digit height)", ink.Max.Y, degTop)
	}

	wider := degreeInk(26)
	if dx := wider.Min.X - ink.Min.X; dx != 10 {
		t.Errorf("10px more spacing moved the degree sign %dpx", dx)
	}
}

func TestRenderSingleBarCentred(t *testing.T) {
	for _, height := range []int{24, 30} {
		cfg := config.Default()
		cfg.Layout.BorderEnabled = ptr(false)
		cfg.Layout.BarHeight = height
		cfg.Slots = config.Slots{Up: "none", Mid: "none", Down: "gpu"}

		frame, err := testEngine(t).Render(cfg, snapshot(map[string]float64{"gpu": 60}), "", t0)
		if err != nil {
			t.Fatalf("h=%d: Render: %v", height, err)
		}
		top := (240 - height) / 2
		fill := cfg.Thresholds.GPU.C[1]
		for _, y := range []int{top, top + height - 1} {
			if got := frame.Image.At(50, y); !sameColor(got, fill) {
				t.Errorf("h=%d: row %d = %v, want fill %v", height, y, got, fill)
			}
		}
		for _, y := range []int{top - 1, top + height} {
			if got := frame.Image.At(50, y); !sameColor(got, cfg.Colors.Background) {
				t.Errorf("h=%d: row %d = %v, want background", height, y, got)
			}
		}
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))

	var buf bytes.Buffer
	if err := Encode(&buf, img, "png"); err != nil {
		t.Fatalf("png: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil || decoded.Bounds() != img.Bounds() {
		t.Errorf("png decode: %v %v", err, decoded)
	}

	buf.Reset()
	if err := Encode(&buf, img, "bmp"); err != nil {
		t.Fatalf("bmp: %v", err)
	}
	if decoded, err := bmp.Decode(&buf); err != nil || decoded.Bounds() != img.Bounds() {
		t.Errorf("bmp decode: %v", err)
	}

	if err := Encode(&buf, img, "gif"); err == nil {
		t.Error("gif should be rejected")
	}
	if ContentType("bmp") != "image/bmp" || ContentType("png") != "image/png" {
		t.Error("content types")
	}
}
