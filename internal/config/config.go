// Package config holds the per-frame settings of the LCD renderer. Every
// optional value is a pointer so "unset" is never confused with zero.
package config

import (
	"time"
)

// Config is the fully defaulted, read-only configuration handed to the
// renderer once per polling cycle.
type Config struct {
	Display    Display                   `json:"display" yaml:"display"`
	Layout     Layout                    `json:"layout" yaml:"layout"`
	Colors     Colors                    `json:"colors" yaml:"colors"`
	Font       Font                      `json:"font" yaml:"font"`
	Thresholds Thresholds                `json:"thresholds" yaml:"thresholds"`
	MaxScale   MaxScale                  `json:"max_scale" yaml:"max_scale"`
	Offsets    Offsets                   `json:"offsets" yaml:"offsets"`
	Slots      Slots                     `json:"slots" yaml:"slots"`
	Sensors    map[string]SensorOverride `json:"sensors,omitempty" yaml:"sensors,omitempty"`
	Daemon     Daemon                    `json:"daemon" yaml:"daemon"`
	Runtime    Runtime                   `json:"runtime" yaml:"runtime"`
}

// Display describes the panel and how it is driven.
type Display struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Shape is "auto", "rectangular" or "circular".
	Shape string `json:"shape" yaml:"shape"`
	// ForceCircular is the legacy switch predating Shape.
	ForceCircular bool `json:"force_circular,omitempty" yaml:"force_circular,omitempty"`

	// Mode is "dual" or "circle".
	Mode                 string   `json:"mode" yaml:"mode"`
	CircleSwitchInterval int      `json:"circle_switch_interval" yaml:"circle_switch_interval"`
	ContentScale         *float64 `json:"content_scale_factor,omitempty" yaml:"content_scale_factor,omitempty"`
	InscribeFactor       *float64 `json:"inscribe_factor,omitempty" yaml:"inscribe_factor,omitempty"`

	Brightness  int    `json:"brightness" yaml:"brightness"`
	Orientation int    `json:"orientation" yaml:"orientation"`
	Format      string `json:"format" yaml:"format"`
}

// Layout holds bar geometry at the 240px reference resolution.
type Layout struct {
	BarHeight       int     `json:"bar_height" yaml:"bar_height"`
	BarHeightUp     *int    `json:"bar_height_up,omitempty" yaml:"bar_height_up,omitempty"`
	BarHeightMid    *int    `json:"bar_height_mid,omitempty" yaml:"bar_height_mid,omitempty"`
	BarHeightDown   *int    `json:"bar_height_down,omitempty" yaml:"bar_height_down,omitempty"`
	BarWidthPercent float64 `json:"bar_width_percent" yaml:"bar_width_percent"`
	BarGap          int     `json:"bar_gap" yaml:"bar_gap"`
	// BorderEnabled nil means automatic: a border is drawn when BorderWidth > 0.
	BorderEnabled *bool   `json:"border_enabled,omitempty" yaml:"border_enabled,omitempty"`
	BorderWidth   float64 `json:"border_width" yaml:"border_width"`
	DegreeSpacing int     `json:"degree_spacing" yaml:"degree_spacing"`
	ValueSpacing  int     `json:"value_spacing" yaml:"value_spacing"`
}

// Colors are the fixed, non-threshold colours of a frame.
type Colors struct {
	Background    Color `json:"background" yaml:"background"`
	BarBackground Color `json:"bar_background" yaml:"bar_background"`
	BarBorder     Color `json:"bar_border" yaml:"bar_border"`
	Value         Color `json:"value" yaml:"value"`
	Label         Color `json:"label" yaml:"label"`
}

// Font selects the face and its sizes at the 240px reference resolution.
type Font struct {
	// Face is a TrueType file; empty selects the built-in Go Bold face.
	Face      string  `json:"face,omitempty" yaml:"face,omitempty"`
	SizeValue float64 `json:"size_value" yaml:"size_value"`
	SizeLabel float64 `json:"size_label" yaml:"size_label"`
}

// ThresholdSet maps a value to one of four colours: below T[0] is C[0],
// [T[0],T[1]) is C[1], [T[1],T[2]) is C[2], and T[2] or above is C[3].
type ThresholdSet struct {
	T [3]float64 `json:"thresholds" yaml:"thresholds"`
	C [4]Color   `json:"colors" yaml:"colors"`
}

// Thresholds are the independent threshold sets of the legacy kinds.
type Thresholds struct {
	CPU    ThresholdSet `json:"cpu" yaml:"cpu"`
	GPU    ThresholdSet `json:"gpu" yaml:"gpu"`
	Liquid ThresholdSet `json:"liquid" yaml:"liquid"`
}

// MaxScale is the value that fills a bar completely, per legacy kind and
// per category for dynamic sensors.
type MaxScale struct {
	CPU    float64 `json:"cpu" yaml:"cpu"`
	GPU    float64 `json:"gpu" yaml:"gpu"`
	Liquid float64 `json:"liquid" yaml:"liquid"`
	RPM    float64 `json:"rpm" yaml:"rpm"`
	Duty   float64 `json:"duty" yaml:"duty"`
	Watts  float64 `json:"watts" yaml:"watts"`
	Freq   float64 `json:"freq" yaml:"freq"`
}

// Offset is an optional pixel nudge added to a computed position.
type Offset struct {
	X *int `json:"x,omitempty" yaml:"x,omitempty"`
	Y *int `json:"y,omitempty" yaml:"y,omitempty"`
}

// Apply adds the set components of o to (x, y).
func (o Offset) Apply(x, y int) (int, int) {
	if o.X != nil {
		x += *o.X
	}
	if o.Y != nil {
		y += *o.Y
	}
	return x, y
}

// KindOffsets holds one offset per sensor kind.
type KindOffsets struct {
	CPU     Offset `json:"cpu" yaml:"cpu"`
	GPU     Offset `json:"gpu" yaml:"gpu"`
	Liquid  Offset `json:"liquid" yaml:"liquid"`
	Dynamic Offset `json:"dynamic" yaml:"dynamic"`
}

// Offsets are user nudges for value text and labels.
type Offsets struct {
	Value KindOffsets `json:"value" yaml:"value"`
	Label KindOffsets `json:"label" yaml:"label"`
}

// Slots binds the three display positions to sensor keys.
type Slots struct {
	Up   string `json:"up" yaml:"up"`
	Mid  string `json:"mid" yaml:"mid"`
	Down string `json:"down" yaml:"down"`
}

// SensorOverride customizes one dynamic "deviceUid:sensorName" sensor.
type SensorOverride struct {
	Label      string        `json:"label,omitempty" yaml:"label,omitempty"`
	Category   string        `json:"category,omitempty" yaml:"category,omitempty"`
	MaxScale   *float64      `json:"max_scale,omitempty" yaml:"max_scale,omitempty"`
	Thresholds *ThresholdSet `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	BarHeight  *int          `json:"bar_height,omitempty" yaml:"bar_height,omitempty"`
}

// Daemon locates the cooling daemon's HTTP API.
type Daemon struct {
	Address   string `json:"address" yaml:"address"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DeviceUID string `json:"device_uid,omitempty" yaml:"device_uid,omitempty"`
	Timeout   int    `json:"timeout" yaml:"timeout"`
}

// Runtime tunes the driver loop.
type Runtime struct {
	RefreshInterval float64 `json:"refresh_interval" yaml:"refresh_interval"`
	SmoothingWindow int     `json:"smoothing_window" yaml:"smoothing_window"`
	// Source is "daemon" or "local".
	Source string `json:"source" yaml:"source"`
	LogDir string `json:"log_dir,omitempty" yaml:"log_dir,omitempty"`
}

// RefreshEvery returns the driver tick as a duration.
func (r Runtime) RefreshEvery() time.Duration {
	return time.Duration(r.RefreshInterval * float64(time.Second))
}

// CircleInterval returns the circle-mode switch interval as a duration,
// clamped the same way Normalize clamps it so that configurations built in
// code never switch on every frame.
func (d Display) CircleInterval() time.Duration {
	return time.Duration(clampCircleInterval(d.CircleSwitchInterval)) * time.Second
}

// BorderOn reports whether bar borders are drawn.
func (l Layout) BorderOn() bool {
	if l.BorderEnabled != nil {
		return *l.BorderEnabled && l.BorderWidth > 0
	}
	return l.BorderWidth > 0
}
