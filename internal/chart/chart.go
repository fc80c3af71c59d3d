// Package chart draws terminal sparklines, timelines and threshold scales
// for the preview, coloured with the same threshold bands as the LCD bars.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/history"
	"github.com/luki/sensorlcd/internal/render"
	"github.com/luki/sensorlcd/internal/sensor"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	tickStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

// BandColor is the terminal colour of v under set: the same band colour
// the bar fill would get on the panel.
func BandColor(v float64, set config.ThresholdSet) lipgloss.Color {
	return lipgloss.Color(render.ColorFor(v, set).String())
}

func bandStyle(v float64, set config.ThresholdSet) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(BandColor(v, set))
	if render.BandIndex(v, set.T) == 3 {
		style = style.Bold(true)
	}
	return style
}

// Sparkline renders the newest width points scaled into [lo, hi]. Short
// series are left-padded with a dim dashed line, and a tick is drawn
// where the wall-clock minute changes.
func Sparkline(points []history.Point, width int, lo, hi float64, set config.ThresholdSet) string {
	if width <= 0 {
		return ""
	}
	if len(points) == 0 {
		return dimStyle.Render(strings.Repeat("╌", width))
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := hi - lo
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	sb.WriteString(dimStyle.Render(strings.Repeat("╌", width-len(points))))
	for i, p := range points {
		if minuteTick(points, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}
		norm := math.Max(0, math.Min(1, (p.Value-lo)/span))
		idx := int(norm * 7)
		sb.WriteString(bandStyle(p.Value, set).Render(string(sparkBlocks[idx])))
	}
	return sb.String()
}

func minuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if p.Time.Second() == 0 {
		return true
	}
	return i > 0 && !points[i-1].Time.IsZero() && p.Time.Minute() != points[i-1].Time.Minute()
}

// Timeline renders HH:MM labels under the minute ticks of Sparkline.
// Labels that would overlap are skipped.
func Timeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	pad := width - len(points)

	line := []rune(strings.Repeat(" ", width))
	lastEnd := -1
	for i, p := range points {
		if !minuteTick(points, i) {
			continue
		}
		label := p.Time.Format("15:04")
		start := pad + i - 2
		if start < 0 {
			start = 0
		}
		end := start + len(label)
		if end > width || start <= lastEnd+1 {
			continue
		}
		copy(line[start:], []rune(label))
		lastEnd = end
	}
	return tickStyle.Render(string(line))
}

// Scale renders a 0..max track with a marker at each threshold and a
// diamond at current.
func Scale(current, max float64, set config.ThresholdSet, width int) string {
	if width <= 0 {
		return ""
	}
	if max <= 0 {
		max = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * v / max)
		if p < 0 {
			return 0
		}
		if p >= width {
			return width - 1
		}
		return p
	}

	markers := make(map[int]int, len(set.T))
	for band, t := range set.T {
		if t > 0 && t <= max {
			markers[pos(t)] = band + 1
		}
	}

	cur := pos(current)
	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch band, ok := markers[i]; {
		case i == cur:
			sb.WriteString(bandStyle(current, set).Render("◆"))
		case ok:
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(set.C[band].String()))
			sb.WriteString(style.Render("▪"))
		default:
			sb.WriteString(dimStyle.Render("·"))
		}
	}
	return sb.String()
}

// Unit is the suffix shown after a value of category c.
func Unit(c sensor.Category) string {
	switch c {
	case sensor.CategoryRPM:
		return " rpm"
	case sensor.CategoryDuty:
		return "%"
	case sensor.CategoryWatts:
		return " W"
	case sensor.CategoryFreq:
		return " MHz"
	default:
		return "°C"
	}
}

// Value renders v with its unit in its band colour.
func Value(v float64, c sensor.Category, set config.ThresholdSet) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dimStyle.Render("  --" + Unit(c))
	}
	return bandStyle(v, set).Render(fmt.Sprintf("%5.1f%s", v, Unit(c)))
}
