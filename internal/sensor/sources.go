package sensor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Source produces one snapshot per call.
type Source interface {
	Poll(ctx context.Context) (Snapshot, error)
}

// LocalSource reads lm-sensors and nvidia-smi on the host itself, for use
// without the cooling daemon.
type LocalSource struct {
	// Now stamps snapshots; time.Now when nil.
	Now func() time.Time
}

// Poll implements Source.
func (l LocalSource) Poll(ctx context.Context) (Snapshot, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	snap := NewSnapshot(now())

	readings, err := ReadLMSensors()
	if err != nil {
		return snap, fmt.Errorf("lm-sensors: %w", err)
	}
	Aggregate(readings, &snap)

	for _, g := range ReadNvidiaGPU(ctx) {
		snap.Set(g)
	}
	return snap, nil
}

// ReadNvidiaGPU reads GPU temperatures via nvidia-smi. The first GPU also
// feeds the legacy "gpu" key. Returns nil (no error) if nvidia-smi is not
// available.
func ReadNvidiaGPU(ctx context.Context) []Reading {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil || path == "" {
		return nil
	}

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=index,name,temperature.gpu",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return nil
	}
	return ParseNvidiaCSV(string(out))
}

// ParseNvidiaCSV parses nvidia-smi's "index, name, temperature" CSV rows.
func ParseNvidiaCSV(out string) []Reading {
	var readings []Reading
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, ", ", 3)
		if len(parts) < 3 {
			continue
		}

		idx := strings.TrimSpace(parts[0])
		temp, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}

		if len(readings) == 0 {
			readings = append(readings, Reading{Key: KindGPU.String(), Value: temp, Category: CategoryTemp})
		}
		readings = append(readings, Reading{
			Key:      fmt.Sprintf("nvidia-gpu-%s:GPU Temp", idx),
			Value:    temp,
			Category: CategoryTemp,
		})
	}
	return readings
}
