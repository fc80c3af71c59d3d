// Package history keeps a bounded series of recent values per sensor key,
// with running min/peak, for the preview sparklines.
package history

import (
	"math"
	"sort"
	"time"

	"github.com/luki/sensorlcd/internal/sensor"
)

// Point is one sample.
type Point struct {
	Value float64
	Time  time.Time
}

// Series is a fixed-capacity ring of samples for one sensor key. Once full,
// the oldest sample is dropped on every Push.
type Series struct {
	Points   []Point
	Capacity int
	Min      float64
	Peak     float64
}

// NewSeries creates an empty series holding at most capacity points.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		Points:   make([]Point, 0, capacity),
		Capacity: capacity,
		Min:      math.MaxFloat64,
		Peak:     -math.MaxFloat64,
	}
}

// Push appends a sample. Non-finite values are dropped.
func (s *Series) Push(v float64, t time.Time) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	p := Point{Value: v, Time: t}
	if len(s.Points) >= s.Capacity {
		copy(s.Points, s.Points[1:])
		s.Points[len(s.Points)-1] = p
	} else {
		s.Points = append(s.Points, p)
	}
	s.Min = math.Min(s.Min, v)
	s.Peak = math.Max(s.Peak, v)
}

// Len is the number of stored samples.
func (s *Series) Len() int { return len(s.Points) }

// Last returns the newest value, or 0 when empty.
func (s *Series) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value
}

// Avg is the mean of the stored samples.
func (s *Series) Avg() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.Points {
		sum += p.Value
	}
	return sum / float64(len(s.Points))
}

// Tail returns a copy of the newest n points, oldest first.
func (s *Series) Tail(n int) []Point {
	if n <= 0 || len(s.Points) == 0 {
		return nil
	}
	start := len(s.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(s.Points)-start)
	copy(out, s.Points[start:])
	return out
}

// Store holds one series per sensor key.
type Store struct {
	series   map[string]*Series
	capacity int
}

// NewStore creates a store whose series each hold capacity points.
func NewStore(capacity int) *Store {
	return &Store{
		series:   make(map[string]*Series),
		capacity: capacity,
	}
}

// Record pushes one value for key.
func (s *Store) Record(key string, v float64, t time.Time) {
	ser, ok := s.series[key]
	if !ok {
		ser = NewSeries(s.capacity)
		s.series[key] = ser
	}
	ser.Push(v, t)
}

// RecordSnapshot pushes every reading of snap, stamped with the
// snapshot time.
func (s *Store) RecordSnapshot(snap sensor.Snapshot) {
	for key, r := range snap.Readings {
		s.Record(key, r.Value, snap.Time)
	}
}

// Get returns the series for key, or nil.
func (s *Store) Get(key string) *Series {
	return s.series[key]
}

// Keys lists recorded keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
