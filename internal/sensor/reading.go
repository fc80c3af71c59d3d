// Package sensor models polled sensor values and the sources that produce
// them. It combines lm-sensors (JSON + text fallback), nvidia-smi and the
// cooling daemon's status endpoint into one keyed snapshot.
package sensor

import (
	"sort"
	"time"
)

// Category tags what a reading measures.
type Category int

const (
	CategoryTemp Category = iota
	CategoryRPM
	CategoryDuty
	CategoryWatts
	CategoryFreq
)

var categoryNames = [...]string{"temp", "rpm", "duty", "watts", "freq"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory maps a category name to its value. Unknown names are temp.
func ParseCategory(s string) Category {
	for i, name := range categoryNames {
		if name == s {
			return Category(i)
		}
	}
	return CategoryTemp
}

// Reading represents a single polled value.
type Reading struct {
	Key      string   // "cpu", "gpu", "liquid" or "deviceUid:sensorName"
	Value    float64  // degrees Celsius, RPM, percent, watts or MHz
	Category Category // what Value measures
}

// Snapshot is one poll's readings keyed by sensor identity.
type Snapshot struct {
	Time     time.Time
	Readings map[string]Reading
}

// NewSnapshot creates an empty snapshot stamped with t.
func NewSnapshot(t time.Time) Snapshot {
	return Snapshot{Time: t, Readings: make(map[string]Reading)}
}

// Set records a reading, replacing any previous one with the same key.
func (s *Snapshot) Set(r Reading) {
	if s.Readings == nil {
		s.Readings = make(map[string]Reading)
	}
	s.Readings[r.Key] = r
}

// Lookup returns the reading for key, if present.
func (s Snapshot) Lookup(key string) (Reading, bool) {
	r, ok := s.Readings[key]
	return r, ok
}

// Keys returns the snapshot keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Readings))
	for k := range s.Readings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies every reading of other into s.
func (s *Snapshot) Merge(other Snapshot) {
	for _, r := range other.Readings {
		s.Set(r)
	}
}
