// Package render turns a configuration and a sensor snapshot into a laid
// out, coloured frame. Dual mode shows the up and down slots together;
// circle mode shows one slot at a time and cycles on a timer.
package render

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/display"
	"github.com/luki/sensorlcd/internal/logging"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

var logger = logging.New("render")

// Mode selects the layout.
type Mode int

const (
	ModeDual Mode = iota
	ModeCircle
)

func (m Mode) String() string {
	if m == ModeCircle {
		return "circle"
	}
	return "dual"
}

// ParseMode maps "circle" to ModeCircle; everything else, including the
// empty string, is dual.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "circle") {
		return ModeCircle
	}
	return ModeDual
}

// Frame is the outcome of one render call.
type Frame struct {
	Image *image.RGBA
	// Drawn is false when no slot was active; Image then only holds the
	// background. It is not an error.
	Drawn      bool
	Mode       Mode
	Shown      []slot.Position
	Params     display.Params
	Assignment slot.Assignment
	Ops        int
	Texts      []string
}

// Engine dispatches frames to the dual or circle layout and owns circle
// mode's CycleState. Render must not be called concurrently.
type Engine struct {
	fonts *Fonts
	cycle CycleState
	mode  Mode
}

// NewEngine creates an engine drawing text with fonts.
func NewEngine(fonts *Fonts) *Engine {
	return &Engine{fonts: fonts}
}

// Cycle returns the current circle-mode state.
func (e *Engine) Cycle() CycleState { return e.cycle }

// Render draws one frame for cfg and snap at time now. deviceName feeds
// the shape heuristic. A canvas or text failure returns an error and no
// frame; the cycle state then stays as it was.
func (e *Engine) Render(cfg config.Config, snap sensor.Snapshot, deviceName string, now time.Time) (*Frame, error) {
	params := display.Detect(cfg, deviceName)
	assignment := slot.Resolve(cfg, snap)
	mode := ParseMode(cfg.Display.Mode)
	if mode != e.mode {
		logger.Info("display mode", "mode", mode)
		e.mode = mode
	}

	canvas, err := NewCanvas(params.Width, params.Height, cfg.Colors.Background)
	if err != nil {
		return nil, err
	}
	defer canvas.Close()

	f := &frame{canvas: canvas, params: params, cfg: cfg, fonts: e.fonts}
	out := &Frame{Mode: mode, Params: params, Assignment: assignment}

	switch mode {
	case ModeCircle:
		next := e.cycle.Advance(assignment.ActiveMask(), now, cfg.Display.CircleInterval())
		drawn, err := f.renderCircle(assignment, next.Index)
		if err != nil {
			return nil, fmt.Errorf("circle frame: %w", err)
		}
		if next.Index != e.cycle.Index || !e.cycle.Started {
			logger.Debug("circle slot", "slot", next.Index)
		}
		e.cycle = next
		out.Drawn = drawn
		if drawn {
			out.Shown = []slot.Position{next.Index}
		}
	default:
		drawn, err := f.renderDual(assignment)
		if err != nil {
			return nil, fmt.Errorf("dual frame: %w", err)
		}
		out.Drawn = drawn
		for _, pos := range []slot.Position{slot.Up, slot.Down} {
			if drawn && assignment[pos].Active {
				out.Shown = append(out.Shown, pos)
			}
		}
	}

	if !out.Drawn {
		logger.Debug("nothing to draw: no active slot")
	}
	for _, pos := range out.Shown {
		if !assignment[pos].Found {
			logger.Warn("sensor missing, drawn empty", "slot", pos, "key", assignment[pos].Key)
		}
	}

	out.Image = canvas.Image()
	out.Ops = canvas.Ops()
	out.Texts = canvas.Texts()
	return out, nil
}
