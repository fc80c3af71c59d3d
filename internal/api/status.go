package api

import (
	"context"
	"strings"
	"time"

	"github.com/luki/sensorlcd/internal/sensor"
)

type statusResponse struct {
	Devices []deviceStatus `json:"devices"`
}

type deviceStatus struct {
	UID     string        `json:"uid"`
	Type    string        `json:"type"`
	History []statusEntry `json:"status_history"`
}

type statusEntry struct {
	Temps    []tempStatus    `json:"temps"`
	Channels []channelStatus `json:"channels"`
}

type tempStatus struct {
	Name string  `json:"name"`
	Temp float64 `json:"temp"`
}

type channelStatus struct {
	Name  string   `json:"name"`
	RPM   *float64 `json:"rpm"`
	Duty  *float64 `json:"duty"`
	Watts *float64 `json:"watts"`
	Freq  *float64 `json:"freq"`
}

// Status fetches the latest readings of every device as a snapshot.
func (c *Client) Status(ctx context.Context) (sensor.Snapshot, error) {
	var resp statusResponse
	if err := c.getJSON(ctx, "/status", &resp); err != nil {
		return sensor.Snapshot{}, err
	}
	return resp.snapshot(time.Now()), nil
}

// Source adapts the client to sensor.Source.
type Source struct {
	Client *Client
}

// Poll implements sensor.Source.
func (s Source) Poll(ctx context.Context) (sensor.Snapshot, error) {
	return s.Client.Status(ctx)
}

// snapshot keys every temperature and channel as "uid:name" and fills the
// legacy keys: the first CPU and GPU device temperatures, and the first
// temperature named like a coolant sensor.
func (r statusResponse) snapshot(now time.Time) sensor.Snapshot {
	snap := sensor.NewSnapshot(now)
	for _, d := range r.Devices {
		if len(d.History) == 0 {
			continue
		}
		latest := d.History[len(d.History)-1]

		for i, t := range latest.Temps {
			snap.Set(sensor.Reading{Key: d.UID + ":" + t.Name, Value: t.Temp, Category: sensor.CategoryTemp})

			if legacy := legacyKind(d.Type, t.Name); legacy != sensor.KindNone {
				if _, seen := snap.Lookup(legacy.String()); !seen && (legacy == sensor.KindLiquid || i == 0) {
					snap.Set(sensor.Reading{Key: legacy.String(), Value: t.Temp, Category: sensor.CategoryTemp})
				}
			}
		}

		for _, ch := range latest.Channels {
			if reading, ok := ch.reading(d.UID); ok {
				snap.Set(reading)
			}
		}
	}
	return snap
}

func legacyKind(deviceType, tempName string) sensor.Kind {
	switch strings.ToUpper(deviceType) {
	case "CPU":
		return sensor.KindCPU
	case "GPU":
		return sensor.KindGPU
	}
	if sensor.DeriveLabel(tempName) == "LIQ" {
		return sensor.KindLiquid
	}
	return sensor.KindNone
}

// reading returns the channel's primary metric: rpm, then duty, watts and
// frequency.
func (ch channelStatus) reading(uid string) (sensor.Reading, bool) {
	key := uid + ":" + ch.Name
	switch {
	case ch.RPM != nil:
		return sensor.Reading{Key: key, Value: *ch.RPM, Category: sensor.CategoryRPM}, true
	case ch.Duty != nil:
		return sensor.Reading{Key: key, Value: *ch.Duty, Category: sensor.CategoryDuty}, true
	case ch.Watts != nil:
		return sensor.Reading{Key: key, Value: *ch.Watts, Category: sensor.CategoryWatts}, true
	case ch.Freq != nil:
		return sensor.Reading{Key: key, Value: *ch.Freq, Category: sensor.CategoryFreq}, true
	}
	return sensor.Reading{}, false
}
