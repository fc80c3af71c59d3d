// Package runner is the driver loop around the renderer: once per tick it
// polls the sensors, renders a frame, encodes it and uploads it.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cnf/structhash"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/logging"
	"github.com/luki/sensorlcd/internal/render"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

var logger = logging.New("runner")

// Uploader receives encoded frames.
type Uploader interface {
	Upload(ctx context.Context, deviceUID string, frame []byte, contentType string, brightness, orientation int) error
}

// Recorder logs the resolved slots of each frame.
type Recorder interface {
	Write(a slot.Assignment, t time.Time) error
}

// Target is the display frames are sent to.
type Target struct {
	UID  string
	Name string
}

// Tick is the outcome of one Step.
type Tick struct {
	Time     time.Time
	Snapshot sensor.Snapshot
	Frame    *render.Frame
	Encoded  []byte
	Uploaded bool
	// Unchanged is set when the frame matched the previous upload and was
	// not sent again.
	Unchanged bool
}

// Runner owns the per-process state of the loop: the engine with its
// circle-mode cycle, the smoothing windows and the last frame hash.
// SetConfig and Config may be called while Step or Run is running.
type Runner struct {
	// step serialises Step; the engine and smoother are only touched
	// while it is held.
	step sync.Mutex
	// mu guards cfg, cfgHash, smoother and lastSent.
	mu sync.Mutex

	cfg      config.Config
	cfgHash  string
	source   sensor.Source
	smoother *sensor.Smoother
	engine   *render.Engine
	uploader Uploader
	recorder Recorder
	target   Target
	lastSent []byte

	// Now is the clock; time.Now unless replaced by tests.
	Now func() time.Time
}

// New creates a runner. uploader and recorder may be nil.
func New(cfg config.Config, source sensor.Source, engine *render.Engine, uploader Uploader, recorder Recorder, target Target) *Runner {
	r := &Runner{
		source:   source,
		engine:   engine,
		uploader: uploader,
		recorder: recorder,
		target:   target,
		Now:      time.Now,
	}
	r.SetConfig(cfg)
	return r
}

// SetConfig swaps the configuration used from the next tick on.
func (r *Runner) SetConfig(cfg config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := structhash.Hash(cfg, 1)
	if err != nil {
		logger.Warn("config fingerprint", "err", err)
	}
	if r.cfgHash != "" && hash != r.cfgHash {
		logger.Info("configuration changed", "hash", hash)
	}
	if r.smoother == nil || cfg.Runtime.SmoothingWindow != r.cfg.Runtime.SmoothingWindow {
		r.smoother = sensor.NewSmoother(cfg.Runtime.SmoothingWindow)
	}
	r.cfg = cfg
	r.cfgHash = hash
	r.lastSent = nil
}

// Config returns the active configuration.
func (r *Runner) Config() config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// frameKey is what makes two frames look the same on the panel.
type frameKey struct {
	Config string
	Mode   int
	Shown  []int
	Values [slot.Count]string
}

// Step runs one poll → render → encode → upload pass.
func (r *Runner) Step(ctx context.Context) (Tick, error) {
	r.step.Lock()
	defer r.step.Unlock()

	r.mu.Lock()
	cfg, cfgHash, smoother := r.cfg, r.cfgHash, r.smoother
	r.mu.Unlock()

	now := r.Now()
	tick := Tick{Time: now}

	snap, err := r.source.Poll(ctx)
	if err != nil {
		return tick, fmt.Errorf("poll: %w", err)
	}
	snap = smoother.Apply(snap)
	tick.Snapshot = snap

	frame, err := r.engine.Render(cfg, snap, r.target.Name, now)
	if err != nil {
		return tick, fmt.Errorf("render: %w", err)
	}
	tick.Frame = frame

	if r.recorder != nil {
		if err := r.recorder.Write(frame.Assignment, now); err != nil {
			logger.Warn("reading log", "err", err)
		}
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, frame.Image, cfg.Display.Format); err != nil {
		return tick, fmt.Errorf("encode: %w", err)
	}
	tick.Encoded = buf.Bytes()

	if r.uploader == nil {
		return tick, nil
	}

	key := structhash.Md5(frameKeyOf(cfgHash, frame), 1)
	r.mu.Lock()
	unchanged := r.lastSent != nil && bytes.Equal(key, r.lastSent)
	r.mu.Unlock()
	if unchanged {
		tick.Unchanged = true
		return tick, nil
	}
	err = r.uploader.Upload(ctx, r.target.UID, tick.Encoded, render.ContentType(cfg.Display.Format),
		cfg.Display.Brightness, cfg.Display.Orientation)
	if err != nil {
		return tick, fmt.Errorf("upload: %w", err)
	}
	r.mu.Lock()
	r.lastSent = key
	r.mu.Unlock()
	tick.Uploaded = true
	return tick, nil
}

func frameKeyOf(cfgHash string, f *render.Frame) frameKey {
	k := frameKey{Config: cfgHash, Mode: int(f.Mode)}
	for _, pos := range f.Shown {
		k.Shown = append(k.Shown, int(pos))
	}
	for i, s := range f.Assignment {
		if s.Found {
			k.Values[i] = strconv.FormatFloat(s.Value, 'f', 3, 64)
		}
	}
	return k
}

// Run calls Step every refresh interval until ctx is done. A failed tick
// is logged and the next tick tries again. A refresh interval changed by
// SetConfig takes effect after the next tick.
func (r *Runner) Run(ctx context.Context) error {
	every := r.Config().Runtime.RefreshEvery()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if _, err := r.Step(ctx); err != nil {
			logger.Warn("frame failed", "err", err)
		}
		if next := r.Config().Runtime.RefreshEvery(); next > 0 && next != every {
			every = next
			ticker.Reset(every)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
