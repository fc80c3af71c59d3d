package viewer

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/history"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
	"github.com/luki/sensorlcd/internal/store"
)

func writeLog(t *testing.T, dir string, day time.Time, n int) {
	t.Helper()
	ds, err := store.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()
	for i := 0; i < n; i++ {
		var a slot.Assignment
		a[slot.Up] = slot.Slot{Position: slot.Up, Key: sensor.Key{Kind: sensor.KindCPU}, Active: true, Found: true, Value: float64(40 + i), Label: "CPU"}
		a[slot.Down] = slot.Slot{Position: slot.Down, Key: sensor.Key{Kind: sensor.KindDynamic, Device: "kr1", Name: "Pump"}, Active: true, Found: true, Value: 2000, Category: sensor.CategoryRPM}
		if err := ds.Write(a, day.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadDayBuildsSeries(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local), 10)
	writeLog(t, dir, time.Date(2026, 2, 20, 9, 0, 0, 0, time.Local), 3)

	days, err := store.ListDays(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := newModel(config.Default(), dir, days)
	if m.err != nil {
		t.Fatal(m.err)
	}
	if len(m.series) != 2 || m.series[0].slot != "up" || m.series[1].key != "kr1:Pump" {
		t.Fatalf("series order: %+v", m.series)
	}
	if len(m.times) != 10 || m.cursor != 9 {
		t.Errorf("times=%d cursor=%d", len(m.times), m.cursor)
	}
	if m.series[1].desc.Label != "PMP" || m.series[1].desc.Category != sensor.CategoryRPM {
		t.Errorf("pump description: %+v", m.series[1].desc)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	m = next.(model)
	if m.dayIdx != 1 || len(m.times) != 3 {
		t.Errorf("previous day: idx=%d times=%d", m.dayIdx, len(m.times))
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	if view := next.View(); !strings.Contains(view, "2026-02-20") || !strings.Contains(view, "UP") {
		t.Error("view missing day or slot")
	}
}

func TestCursorClamps(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local), 5)
	days, _ := store.ListDays(dir)
	m := newModel(config.Default(), dir, days)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	if got := next.(model).cursor; got != 4 {
		t.Errorf("cursor after L = %d, want 4", got)
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("H")})
	if got := next.(model).cursor; got != 0 {
		t.Errorf("cursor after H = %d, want 0", got)
	}
}

func TestValueAt(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)
	pts := []history.Point{
		{Value: 1, Time: base},
		{Value: 2, Time: base.Add(10 * time.Second)},
		{Value: 3, Time: base.Add(20 * time.Second)},
	}
	tests := []struct {
		at   time.Duration
		want float64
	}{
		{-time.Minute, 1},
		{9 * time.Second, 2},
		{16 * time.Second, 3},
		{time.Hour, 3},
	}
	for _, tt := range tests {
		if got := valueAt(pts, base.Add(tt.at)); got != tt.want {
			t.Errorf("valueAt(+%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}
