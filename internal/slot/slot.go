// Package slot resolves the three display positions to concrete sensors,
// values, labels and per-sensor settings.
package slot

import (
	"time"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/logging"
	"github.com/luki/sensorlcd/internal/sensor"
)

var logger = logging.New("slot")

// Position is one of the three display slots.
type Position int

const (
	Up Position = iota
	Mid
	Down
)

// Count is the number of display slots.
const Count = 3

func (p Position) String() string {
	return config.SlotNames[p]
}

// Slot is one resolved display position.
type Slot struct {
	Position Position
	Key      sensor.Key
	// Active is false for "none" slots; they take no space in any layout.
	Active bool
	// Found is false when the snapshot lacked the sensor; Value is then 0.
	Found      bool
	Value      float64
	Category   sensor.Category
	Label      string
	Thresholds config.ThresholdSet
	MaxScale   float64
	// BarHeight is in reference (240px) pixels.
	BarHeight   int
	ValueOffset config.Offset
	LabelOffset config.Offset
}

// Assignment is the resolved up/mid/down triple.
type Assignment [Count]Slot

// Any reports whether at least one slot is active.
func (a Assignment) Any() bool {
	for _, s := range a {
		if s.Active {
			return true
		}
	}
	return false
}

// ActiveMask returns which positions are active.
func (a Assignment) ActiveMask() [Count]bool {
	var m [Count]bool
	for i, s := range a {
		m[i] = s.Active
	}
	return m
}

var legacyLabels = map[sensor.Kind]string{
	sensor.KindCPU:    "CPU",
	sensor.KindGPU:    "GPU",
	sensor.KindLiquid: "LIQ",
}

// Resolve binds every slot of cfg against snap. It never fails: an
// unparsable key makes the slot inactive, a missing sensor resolves to 0.
// Duplicate or all-none assignments are rendered as given.
func Resolve(cfg config.Config, snap sensor.Snapshot) Assignment {
	var a Assignment
	bindings := [Count]string{cfg.Slots.Up, cfg.Slots.Mid, cfg.Slots.Down}
	slotHeights := [Count]*int{cfg.Layout.BarHeightUp, cfg.Layout.BarHeightMid, cfg.Layout.BarHeightDown}

	for i, binding := range bindings {
		pos := Position(i)
		key, err := sensor.ParseKey(binding)
		if err != nil {
			logger.Warn("ignoring slot", "slot", pos, "err", err)
			key = sensor.None
		}
		a[i] = resolveOne(cfg, snap, pos, key, slotHeights[i])
	}
	return a
}

// Describe resolves key against cfg alone, as if a reading of category c
// were present. Logged values are coloured with it.
func Describe(cfg config.Config, key sensor.Key, c sensor.Category) Slot {
	snap := sensor.NewSnapshot(time.Time{})
	snap.Set(sensor.Reading{Key: key.String(), Category: c})
	s := resolveOne(cfg, snap, Up, key, nil)
	s.Found = false
	return s
}

func resolveOne(cfg config.Config, snap sensor.Snapshot, pos Position, key sensor.Key, slotHeight *int) Slot {
	s := Slot{Position: pos, Key: key}
	if key.IsNone() {
		return s
	}
	s.Active = true

	if r, ok := snap.Lookup(key.String()); ok {
		s.Found = true
		s.Value = r.Value
		s.Category = r.Category
	} else {
		logger.Debug("sensor missing from snapshot", "slot", pos, "key", key)
	}

	s.BarHeight = cfg.Layout.BarHeight

	switch key.Kind {
	case sensor.KindCPU:
		s.Category = sensor.CategoryTemp
		s.Label = legacyLabels[key.Kind]
		s.Thresholds = cfg.Thresholds.CPU
		s.MaxScale = cfg.MaxScale.CPU
		s.ValueOffset = cfg.Offsets.Value.CPU
		s.LabelOffset = cfg.Offsets.Label.CPU
	case sensor.KindGPU:
		s.Category = sensor.CategoryTemp
		s.Label = legacyLabels[key.Kind]
		s.Thresholds = cfg.Thresholds.GPU
		s.MaxScale = cfg.MaxScale.GPU
		s.ValueOffset = cfg.Offsets.Value.GPU
		s.LabelOffset = cfg.Offsets.Label.GPU
	case sensor.KindLiquid:
		s.Category = sensor.CategoryTemp
		s.Label = legacyLabels[key.Kind]
		s.Thresholds = cfg.Thresholds.Liquid
		s.MaxScale = cfg.MaxScale.Liquid
		s.ValueOffset = cfg.Offsets.Value.Liquid
		s.LabelOffset = cfg.Offsets.Label.Liquid
	case sensor.KindDynamic:
		resolveDynamic(cfg, key, &s)
	}

	if slotHeight != nil && *slotHeight > 0 {
		s.BarHeight = *slotHeight
	}
	if s.MaxScale <= 0 {
		s.MaxScale = cfg.MaxScale.CPU
	}
	return s
}

func resolveDynamic(cfg config.Config, key sensor.Key, s *Slot) {
	override, hasOverride := cfg.Sensors[key.String()]
	if !s.Found && hasOverride && override.Category != "" {
		s.Category = sensor.ParseCategory(override.Category)
	}

	s.Label = sensor.DeriveLabel(key.Name)
	if hasOverride && override.Label != "" {
		s.Label = override.Label
	}

	s.MaxScale = CategoryMaxScale(cfg.MaxScale, s.Category)
	if hasOverride && override.MaxScale != nil && *override.MaxScale > 0 {
		s.MaxScale = *override.MaxScale
	}

	switch {
	case hasOverride && override.Thresholds != nil:
		s.Thresholds = *override.Thresholds
	case s.Category == sensor.CategoryTemp:
		s.Thresholds = cfg.Thresholds.CPU
	default:
		s.Thresholds = ScaledThresholds(s.MaxScale)
	}

	if hasOverride && override.BarHeight != nil && *override.BarHeight > 0 {
		s.BarHeight = *override.BarHeight
	}
	s.ValueOffset = cfg.Offsets.Value.Dynamic
	s.LabelOffset = cfg.Offsets.Label.Dynamic
}

// CategoryMaxScale returns the default full-bar value for a category.
// Temperatures use the CPU scale.
func CategoryMaxScale(m config.MaxScale, c sensor.Category) float64 {
	switch c {
	case sensor.CategoryRPM:
		return m.RPM
	case sensor.CategoryDuty:
		return m.Duty
	case sensor.CategoryWatts:
		return m.Watts
	case sensor.CategoryFreq:
		return m.Freq
	}
	return m.CPU
}

// ScaledThresholds places the bands at 25, 50 and 75 percent of max.
func ScaledThresholds(max float64) config.ThresholdSet {
	return config.ThresholdSet{
		T: [3]float64{max * 0.25, max * 0.5, max * 0.75},
		C: config.DefaultBands,
	}
}
