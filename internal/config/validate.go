package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luki/sensorlcd/internal/sensor"
)

var (
	// ErrNoActiveSlot means every slot is bound to "none".
	ErrNoActiveSlot = errors.New("all display slots are none")
	// ErrDuplicateSlot means two active slots show the same sensor.
	ErrDuplicateSlot = errors.New("sensor assigned to more than one slot")
)

// Normalize clamps ranges and fills zero values the loaders may leave
// behind. It never rejects input; see Validate.
func (c *Config) Normalize() {
	if c.Display.Width <= 0 {
		c.Display.Width = DefaultWidth
	}
	if c.Display.Height <= 0 {
		c.Display.Height = DefaultHeight
	}
	c.Display.Shape = strings.ToLower(strings.TrimSpace(c.Display.Shape))
	if c.Display.Shape == "" {
		c.Display.Shape = "auto"
	}
	c.Display.Mode = strings.ToLower(strings.TrimSpace(c.Display.Mode))
	c.Display.Format = strings.ToLower(strings.TrimSpace(c.Display.Format))
	if c.Display.Format == "" {
		c.Display.Format = "png"
	}

	c.Display.CircleSwitchInterval = clampCircleInterval(c.Display.CircleSwitchInterval)

	if c.Display.Brightness < 0 {
		c.Display.Brightness = 0
	} else if c.Display.Brightness > 100 {
		c.Display.Brightness = 100
	}

	if c.Layout.BarHeight <= 0 {
		c.Layout.BarHeight = Default().Layout.BarHeight
	}
	if c.Layout.BarGap < 0 {
		c.Layout.BarGap = 0
	}
	if c.Layout.DegreeSpacing <= 0 {
		c.Layout.DegreeSpacing = DefaultDegreeSpacing
	}
	if c.Font.SizeValue <= 0 {
		c.Font.SizeValue = Default().Font.SizeValue
	}
	if c.Font.SizeLabel <= 0 {
		c.Font.SizeLabel = Default().Font.SizeLabel
	}

	if c.Runtime.RefreshInterval <= 0 {
		c.Runtime.RefreshInterval = Default().Runtime.RefreshInterval
	}
	if c.Runtime.SmoothingWindow < 1 {
		c.Runtime.SmoothingWindow = 1
	}
	if c.Runtime.Source == "" {
		c.Runtime.Source = "daemon"
	}
	if c.Daemon.Timeout <= 0 {
		c.Daemon.Timeout = Default().Daemon.Timeout
	}
}

// SlotKeys parses the up/mid/down bindings.
func (c Config) SlotKeys() ([3]sensor.Key, error) {
	var keys [3]sensor.Key
	for i, s := range [3]string{c.Slots.Up, c.Slots.Mid, c.Slots.Down} {
		k, err := sensor.ParseKey(s)
		if err != nil {
			return keys, fmt.Errorf("slot %s: %w", SlotNames[i], err)
		}
		keys[i] = k
	}
	return keys, nil
}

// SlotNames are the display positions in scan order.
var SlotNames = [3]string{"up", "mid", "down"}

// Validate reports caller errors: unparsable slot keys, duplicate active
// slots, all slots none, and unknown enum strings.
func (c Config) Validate() error {
	keys, err := c.SlotKeys()
	if err != nil {
		return err
	}

	seen := make(map[sensor.Key]string)
	active := 0
	for i, k := range keys {
		if k.IsNone() {
			continue
		}
		active++
		if prev, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s in slots %s and %s", ErrDuplicateSlot, k, prev, SlotNames[i])
		}
		seen[k] = SlotNames[i]
	}
	if active == 0 {
		return ErrNoActiveSlot
	}

	switch c.Display.Shape {
	case "auto", "rectangular", "circular":
	default:
		return fmt.Errorf("display shape %q: want auto, rectangular or circular", c.Display.Shape)
	}
	switch c.Display.Format {
	case "png", "bmp":
	default:
		return fmt.Errorf("display format %q: want png or bmp", c.Display.Format)
	}
	switch c.Runtime.Source {
	case "daemon", "local":
	default:
		return fmt.Errorf("runtime source %q: want daemon or local", c.Runtime.Source)
	}
	return nil
}

// clampCircleInterval maps 0 to the default and bounds everything else to
// [MinCircleInterval, MaxCircleInterval].
func clampCircleInterval(iv int) int {
	switch {
	case iv == 0:
		return DefaultCircleInterval
	case iv < MinCircleInterval:
		return MinCircleInterval
	case iv > MaxCircleInterval:
		return MaxCircleInterval
	}
	return iv
}
