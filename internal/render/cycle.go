package render

import (
	"time"

	"github.com/luki/sensorlcd/internal/slot"
)

// CycleState is circle mode's memory between frames. The zero value has
// not shown any slot yet. It has a single writer: the caller that threads
// it from one render to the next.
type CycleState struct {
	Index      slot.Position
	LastSwitch time.Time
	Started    bool
}

// Advance returns the state for a frame rendered at now. The first call
// picks the first active slot scanning up, mid, down. Later calls move to
// the next active slot once interval has elapsed since the last switch,
// skipping inactive ones and wrapping. With no active slot the state is
// returned unchanged.
func (s CycleState) Advance(active [slot.Count]bool, now time.Time, interval time.Duration) CycleState {
	if !s.Started {
		idx, ok := nextActive(active, slot.Count-1)
		if !ok {
			return s
		}
		return CycleState{Index: idx, LastSwitch: now, Started: true}
	}

	if !active[s.Index] {
		// The shown slot was unbound by a config change: move on now.
		idx, ok := nextActive(active, s.Index)
		if !ok {
			return s
		}
		return CycleState{Index: idx, LastSwitch: now, Started: true}
	}

	if now.Sub(s.LastSwitch) < interval {
		return s
	}
	idx, ok := nextActive(active, s.Index)
	if !ok {
		return s
	}
	return CycleState{Index: idx, LastSwitch: now, Started: true}
}

// nextActive scans forward from after, wrapping, and returns the first
// active position. after itself is checked last.
func nextActive(active [slot.Count]bool, after slot.Position) (slot.Position, bool) {
	for step := 1; step <= slot.Count; step++ {
		idx := slot.Position((int(after) + step) % slot.Count)
		if active[idx] {
			return idx, true
		}
	}
	return 0, false
}
