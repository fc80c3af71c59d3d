package sensor

import (
	"github.com/asecurityteam/rolling"
)

// Smoother averages each key over its last N polls so single-poll spikes
// don't flicker the bar colour.
type Smoother struct {
	window  int
	windows map[string]*smoothWindow
}

type smoothWindow struct {
	points *rolling.PointPolicy
	seen   int
}

// NewSmoother creates a smoother over window polls. A window of 1 or less
// passes values through unchanged.
func NewSmoother(window int) *Smoother {
	return &Smoother{
		window:  window,
		windows: make(map[string]*smoothWindow),
	}
}

// Apply records every reading of snap and returns a copy whose values are
// the rolling averages.
func (s *Smoother) Apply(snap Snapshot) Snapshot {
	if s.window <= 1 {
		return snap
	}
	out := NewSnapshot(snap.Time)
	for key, r := range snap.Readings {
		w, ok := s.windows[key]
		if !ok {
			w = &smoothWindow{points: rolling.NewPointPolicy(rolling.NewWindow(s.window))}
			s.windows[key] = w
		}
		w.points.Append(r.Value)
		if w.seen < s.window {
			w.seen++
		}
		// Unfilled buckets hold zero, so the sum only covers seen polls.
		r.Value = w.points.Reduce(rolling.Sum) / float64(w.seen)
		out.Set(r)
	}
	return out
}
