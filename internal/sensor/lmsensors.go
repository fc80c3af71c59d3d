package sensor

import (
	"encoding/json"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ChipReading is one temperature line reported by lm-sensors.
type ChipReading struct {
	Chip    string  // e.g. "coretemp-isa-0000"
	Adapter string  // e.g. "ISA adapter"
	Label   string  // e.g. "Package id 0"
	Temp    float64 // degrees Celsius
}

// Key returns the dynamic snapshot key for this reading.
func (r ChipReading) Key() string {
	return r.Chip + ":" + r.Label
}

// ReadLMSensors runs `sensors -j`, falling back to the text output on
// older lm-sensors releases.
func ReadLMSensors() ([]ChipReading, error) {
	out, err := exec.Command("sensors", "-j").Output()
	if err == nil {
		if readings, err := ParseSensorsJSON(out); err == nil {
			return readings, nil
		}
	}
	out, err = exec.Command("sensors").Output()
	if err != nil {
		return nil, err
	}
	return ParseSensorsText(string(out)), nil
}

// ── JSON parser (primary) ────────────────────────────────────────────

// ParseSensorsJSON parses `sensors -j` output.
func ParseSensorsJSON(out []byte) ([]ChipReading, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, err
	}

	chipNames := make([]string, 0, len(data))
	for k := range data {
		chipNames = append(chipNames, k)
	}
	sort.Strings(chipNames)

	var readings []ChipReading
	for _, chipName := range chipNames {
		var chip map[string]json.RawMessage
		if err := json.Unmarshal(data[chipName], &chip); err != nil {
			continue
		}

		adapter := ""
		if raw, ok := chip["Adapter"]; ok {
			_ = json.Unmarshal(raw, &adapter)
		}

		labels := make([]string, 0, len(chip))
		for k := range chip {
			if k != "Adapter" {
				labels = append(labels, k)
			}
		}
		sort.Strings(labels)

		for _, label := range labels {
			var fields map[string]float64
			if err := json.Unmarshal(chip[label], &fields); err != nil {
				continue
			}
			temp, ok := tempInput(fields)
			if !ok || temp < -200 {
				continue
			}
			readings = append(readings, ChipReading{
				Chip:    chipName,
				Adapter: adapter,
				Label:   label,
				Temp:    temp,
			})
		}
	}
	return readings, nil
}

func tempInput(fields map[string]float64) (float64, bool) {
	for k, v := range fields {
		if strings.HasPrefix(k, "temp") && strings.HasSuffix(k, "_input") {
			return v, true
		}
	}
	return 0, false
}

// ── Text parser (fallback) ───────────────────────────────────────────

var (
	adapterRe = regexp.MustCompile(`^Adapter:\s+(.+)$`)
	tempValRe = regexp.MustCompile(`([+-]?\d+\.?\d*)°C`)
)

// ParseSensorsText parses the human-readable `sensors` output.
func ParseSensorsText(output string) []ChipReading {
	var readings []ChipReading
	var currentChip, currentAdapter string

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := adapterRe.FindStringSubmatch(line); m != nil {
			currentAdapter = m[1]
			continue
		}

		if strings.Contains(line, "°C") {
			idx := strings.Index(line, ":")
			if idx < 0 {
				continue
			}
			m := tempValRe.FindStringSubmatch(line[idx+1:])
			if m == nil {
				continue
			}
			temp, err := strconv.ParseFloat(m[1], 64)
			if err != nil || temp < -200 {
				continue
			}
			readings = append(readings, ChipReading{
				Chip:    currentChip,
				Adapter: currentAdapter,
				Label:   strings.TrimSpace(line[:idx]),
				Temp:    temp,
			})
			continue
		}

		// Chip header: non-indented line without °C
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			currentChip = strings.TrimSpace(line)
		}
	}

	return readings
}

// cpuLabelPriority orders the labels that best describe a whole CPU package.
var cpuLabelPriority = []string{"Package id 0", "Tctl", "Tdie", "Tccd1"}

// liquidLabels are the label prefixes AIO drivers use for coolant sensors.
var liquidLabels = []string{"Coolant", "Liquid", "Water"}

// Aggregate folds chip readings into legacy cpu/liquid readings and adds a
// dynamic reading for every line.
func Aggregate(readings []ChipReading, snap *Snapshot) {
	var cpu, liquid *ChipReading
	cpuRank := len(cpuLabelPriority)

	for i := range readings {
		r := &readings[i]
		snap.Set(Reading{Key: r.Key(), Value: r.Temp, Category: CategoryTemp})

		switch ChipKind(r.Chip) {
		case KindCPU:
			rank := len(cpuLabelPriority)
			for j, l := range cpuLabelPriority {
				if r.Label == l {
					rank = j
					break
				}
			}
			if cpu == nil || rank < cpuRank || (rank == cpuRank && r.Temp > cpu.Temp) {
				cpu, cpuRank = r, rank
			}
		case KindLiquid:
			for _, l := range liquidLabels {
				if strings.HasPrefix(r.Label, l) && liquid == nil {
					liquid = r
				}
			}
		}
	}

	if cpu != nil {
		snap.Set(Reading{Key: KindCPU.String(), Value: cpu.Temp, Category: CategoryTemp})
	}
	if liquid != nil {
		snap.Set(Reading{Key: KindLiquid.String(), Value: liquid.Temp, Category: CategoryTemp})
	}
}
