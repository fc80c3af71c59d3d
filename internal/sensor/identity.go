package sensor

import "strings"

// chipKindMap maps chip name prefixes to the legacy slot they feed.
var chipKindMap = []struct {
	prefix string
	kind   Kind
}{
	{"coretemp", KindCPU},
	{"k10temp", KindCPU},
	{"zenpower", KindCPU},
	{"amdgpu", KindGPU},
	{"radeon", KindGPU},
	{"nouveau", KindGPU},
	{"nvidia-gpu", KindGPU},
	{"nvidia", KindGPU},
	{"i915", KindGPU},
	{"kraken", KindLiquid},
	{"nzxt", KindLiquid},
	{"corsair", KindLiquid},
	{"aquacomputer", KindLiquid},
}

// ChipKind returns the legacy kind a chip's temperatures belong to, or
// KindNone if the chip is not a CPU, GPU or liquid sensor.
func ChipKind(chip string) Kind {
	lower := strings.ToLower(chip)
	for _, entry := range chipKindMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.kind
		}
	}
	return KindNone
}

// labelMap maps sensor name prefixes to short display labels.
var labelMap = []struct {
	prefix string
	label  string
}{
	{"liquid", "LIQ"},
	{"coolant", "LIQ"},
	{"water", "LIQ"},
	{"cpu", "CPU"},
	{"package", "CPU"},
	{"tctl", "CPU"},
	{"tdie", "CPU"},
	{"gpu", "GPU"},
	{"pump", "PMP"},
	{"fan", "FAN"},
}

// labelMaxLen bounds derived labels so they fit beside a bar.
const labelMaxLen = 4

// DeriveLabel returns a short display label for a dynamic sensor name.
func DeriveLabel(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, entry := range labelMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.label
		}
	}
	word := strings.Fields(name)
	if len(word) == 0 {
		return "?"
	}
	label := []rune(strings.ToUpper(word[0]))
	if len(label) > labelMaxLen {
		label = label[:labelMaxLen]
	}
	return string(label)
}
