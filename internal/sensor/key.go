package sensor

import (
	"fmt"
	"strings"
)

// Kind is the closed set of slot bindings.
type Kind int

const (
	KindNone Kind = iota
	KindCPU
	KindGPU
	KindLiquid
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCPU:
		return "cpu"
	case KindGPU:
		return "gpu"
	case KindLiquid:
		return "liquid"
	case KindDynamic:
		return "dynamic"
	}
	return "unknown"
}

// Key identifies the sensor bound to a slot. Device and Name are only set
// for KindDynamic.
type Key struct {
	Kind   Kind
	Device string
	Name   string
}

// None is the unbound key.
var None = Key{Kind: KindNone}

// ParseKey parses a slot binding: "none" or "", a legacy key ("cpu", "gpu",
// "liquid") or a dynamic "deviceUid:sensorName" key.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "cpu":
		return Key{Kind: KindCPU}, nil
	case "gpu":
		return Key{Kind: KindGPU}, nil
	case "liquid":
		return Key{Kind: KindLiquid}, nil
	}
	idx := strings.Index(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return None, fmt.Errorf("invalid sensor key %q: want cpu, gpu, liquid, none or deviceUid:sensorName", s)
	}
	return Key{Kind: KindDynamic, Device: s[:idx], Name: s[idx+1:]}, nil
}

// IsNone reports whether the key binds nothing.
func (k Key) IsNone() bool {
	return k.Kind == KindNone
}

// String returns the snapshot key for k.
func (k Key) String() string {
	if k.Kind == KindDynamic {
		return k.Device + ":" + k.Name
	}
	return k.Kind.String()
}
