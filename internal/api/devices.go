package api

import (
	"context"
	"fmt"
	"strings"
)

// Device is the subset of the daemon's device description the renderer
// needs.
type Device struct {
	UID  string     `json:"uid"`
	Name string     `json:"name"`
	Type string     `json:"type"`
	Info DeviceInfo `json:"info"`
}

// DeviceInfo describes a device's channels.
type DeviceInfo struct {
	Channels map[string]ChannelInfo `json:"channels"`
}

// ChannelInfo describes one channel; LCD channels carry screen geometry.
type ChannelInfo struct {
	LCD *LCDInfo `json:"lcd_info,omitempty"`
}

// LCDInfo is an LCD channel's resolution.
type LCDInfo struct {
	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// Devices lists every device the daemon knows.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var resp devicesResponse
	if err := c.getJSON(ctx, "/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// LCD returns the device's LCD geometry, if it has one.
func (d Device) LCD() (LCDInfo, bool) {
	for _, ch := range d.Info.Channels {
		if ch.LCD != nil {
			return *ch.LCD, true
		}
	}
	return LCDInfo{}, false
}

// FindLCD picks the LCD device: the one with uid when uid is set,
// otherwise the first device with an LCD channel.
func FindLCD(devices []Device, uid string) (Device, error) {
	for _, d := range devices {
		if _, ok := d.LCD(); !ok {
			continue
		}
		if uid == "" || strings.EqualFold(d.UID, uid) {
			return d, nil
		}
	}
	if uid != "" {
		return Device{}, fmt.Errorf("no LCD device with uid %q", uid)
	}
	return Device{}, fmt.Errorf("no device with an LCD channel")
}
