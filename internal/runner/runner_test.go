package runner

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/render"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
)

var t0 = time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

type fakeSource struct {
	values map[string]float64
	err    error
	polls  int
}

func (f *fakeSource) Poll(ctx context.Context) (sensor.Snapshot, error) {
	f.polls++
	if f.err != nil {
		return sensor.Snapshot{}, f.err
	}
	snap := sensor.NewSnapshot(t0)
	for k, v := range f.values {
		snap.Set(sensor.Reading{Key: k, Value: v, Category: sensor.CategoryTemp})
	}
	return snap, nil
}

type fakeUploader struct {
	frames [][]byte
	uid    string
	ctype  string
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, uid string, frame []byte, contentType string, brightness, orientation int) error {
	if f.err != nil {
		return f.err
	}
	f.uid = uid
	f.ctype = contentType
	f.frames = append(f.frames, frame)
	return nil
}

type fakeRecorder struct {
	rows int
}

func (f *fakeRecorder) Write(a slot.Assignment, t time.Time) error {
	f.rows++
	return nil
}

func newTestRunner(t *testing.T, cfg config.Config, src sensor.Source, up Uploader, rec Recorder) *Runner {
	t.Helper()
	fonts, err := render.LoadFonts("")
	if err != nil {
		t.Fatal(err)
	}
	r := New(cfg, src, render.NewEngine(fonts), up, rec, Target{UID: "kr1", Name: "Kraken Z73"})
	now := t0
	r.Now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return r
}

func TestStepUploadsPNG(t *testing.T) {
	src := &fakeSource{values: map[string]float64{"cpu": 45, "gpu": 60}}
	up := &fakeUploader{}
	rec := &fakeRecorder{}
	r := newTestRunner(t, config.Default(), src, up, rec)

	tick, err := r.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !tick.Uploaded || len(up.frames) != 1 || up.uid != "kr1" || up.ctype != "image/png" {
		t.Fatalf("upload: tick=%+v frames=%d uid=%q type=%q", tick.Uploaded, len(up.frames), up.uid, up.ctype)
	}
	img, err := png.Decode(bytes.NewReader(up.frames[0]))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 240 {
		t.Errorf("frame width %d", img.Bounds().Dx())
	}
	if rec.rows != 1 {
		t.Errorf("recorder rows = %d", rec.rows)
	}
}

func TestStepSkipsUnchangedFrame(t *testing.T) {
	src := &fakeSource{values: map[string]float64{"cpu": 45, "gpu": 60}}
	up := &fakeUploader{}
	r := newTestRunner(t, config.Default(), src, up, nil)

	for i := 0; i < 3; i++ {
		if _, err := r.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(up.frames) != 1 {
		t.Errorf("uploads = %d, want 1 for identical frames", len(up.frames))
	}

	src.values["cpu"] = 46
	tick, err := r.Step(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !tick.Uploaded || len(up.frames) != 2 {
		t.Errorf("changed value not uploaded: uploads=%d", len(up.frames))
	}

	cfg := config.Default()
	cfg.Display.Brightness = 30
	r.SetConfig(cfg)
	if tick, _ := r.Step(context.Background()); !tick.Uploaded {
		t.Error("config change should force an upload")
	}
}

func TestStepCircleCyclesWithClock(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Mode = "circle"
	cfg.Display.CircleSwitchInterval = 2
	src := &fakeSource{values: map[string]float64{"cpu": 45, "gpu": 60}}
	r := newTestRunner(t, cfg, src, nil, nil)

	var shown []slot.Position
	for i := 0; i < 5; i++ {
		tick, err := r.Step(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		shown = append(shown, tick.Frame.Shown[0])
	}
	want := []slot.Position{slot.Up, slot.Up, slot.Down, slot.Down, slot.Up}
	for i := range want {
		if shown[i] != want[i] {
			t.Fatalf("shown = %v, want %v", shown, want)
		}
	}
}

func TestStepErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("daemon down")}
	r := newTestRunner(t, config.Default(), src, nil, nil)
	if _, err := r.Step(context.Background()); err == nil {
		t.Error("poll error not returned")
	}

	src.err = nil
	src.values = map[string]float64{"cpu": 40}
	up := &fakeUploader{err: errors.New("503")}
	r = newTestRunner(t, config.Default(), src, up, nil)
	if _, err := r.Step(context.Background()); err == nil {
		t.Error("upload error not returned")
	}
	up.err = nil
	if tick, err := r.Step(context.Background()); err != nil || !tick.Uploaded {
		t.Errorf("retry after failed upload: uploaded=%v err=%v", tick.Uploaded, err)
	}
}

func TestStepBMP(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Format = "bmp"
	up := &fakeUploader{}
	r := newTestRunner(t, cfg, &fakeSource{values: map[string]float64{"cpu": 40}}, up, nil)
	if _, err := r.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if up.ctype != "image/bmp" || !bytes.HasPrefix(up.frames[0], []byte("BM")) {
		t.Errorf("bmp upload: type=%q", up.ctype)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Runtime.RefreshInterval = 0.01
	src := &fakeSource{values: map[string]float64{"cpu": 40}}
	r := newTestRunner(t, cfg, src, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want deadline exceeded", err)
	}
	if src.polls < 2 {
		t.Errorf("polls = %d, want several", src.polls)
	}
}

// Run with -race: the reload path in the daemon calls SetConfig from the
// signal goroutine while the loop is stepping.
func TestSetConfigWhileStepping(t *testing.T) {
	src := &fakeSource{values: map[string]float64{"cpu": 45, "gpu": 60}}
	up := &fakeUploader{}
	r := newTestRunner(t, config.Default(), src, up, nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			cfg := config.Default()
			cfg.Display.Brightness = 40 + i%2*40
			cfg.Runtime.SmoothingWindow = 1 + i%3
			r.SetConfig(cfg)
			_ = r.Config()
		}
	}()

	for i := 0; i < 20; i++ {
		if _, err := r.Step(context.Background()); err != nil {
			t.Errorf("Step %d: %v", i, err)
		}
	}
	close(done)
	wg.Wait()

	if len(up.frames) == 0 {
		t.Errorf("no frames uploaded")
	}
	if b := r.Config().Display.Brightness; b != 40 && b != 80 {
		t.Errorf("brightness = %d", b)
	}
}
