// Package viewer browses the reading log written by the store: one day at
// a time, with a time cursor and sparkline windows per logged sensor.
package viewer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/sensorlcd/internal/chart"
	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/history"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/slot"
	"github.com/luki/sensorlcd/internal/store"
)

// Run opens the browser on the logs in dir, coloured with cfg's bands.
func Run(cfg config.Config, dir string) error {
	if dir == "" {
		dir = store.DataDir()
	}
	days, err := store.ListDays(dir)
	if err != nil {
		return fmt.Errorf("reading log dir %s: %w", dir, err)
	}
	if len(days) == 0 {
		return fmt.Errorf("no reading logs in %s", dir)
	}

	p := tea.NewProgram(newModel(cfg, dir, days), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorSlotName = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorCursor   = lipgloss.Color("214")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

// series is everything logged for one sensor key on the loaded day.
type series struct {
	key    string
	slot   string
	desc   slot.Slot
	points []history.Point
	byTime map[int64]float64
	lo, pk float64
}

type model struct {
	cfg    config.Config
	dir    string
	days   []string
	dayIdx int
	rows   int
	series []*series
	times  []time.Time
	cursor int
	scroll int
	width  int
	height int
	err    error
}

func newModel(cfg config.Config, dir string, days []string) model {
	m := model{cfg: cfg, dir: dir, days: days}
	m.loadDay()
	return m
}

func (m *model) loadDay() {
	rows, err := store.LoadFile(filepath.Join(m.dir, m.days[m.dayIdx]+".csv"))
	if err != nil {
		m.err = err
		m.series, m.times, m.rows = nil, nil, 0
		return
	}
	m.err = nil
	m.rows = len(rows)

	byKey := make(map[string]*series)
	timeSet := make(map[int64]time.Time)
	for _, r := range rows {
		s, ok := byKey[r.Key]
		if !ok {
			key, err := sensor.ParseKey(r.Key)
			if err != nil {
				continue
			}
			s = &series{
				key:    r.Key,
				slot:   r.Slot,
				desc:   slot.Describe(m.cfg, key, r.Category),
				byTime: make(map[int64]float64),
				lo:     math.MaxFloat64,
				pk:     -math.MaxFloat64,
			}
			byKey[r.Key] = s
		}
		s.points = append(s.points, history.Point{Value: r.Value, Time: r.Time})
		s.byTime[r.Time.Unix()] = r.Value
		s.lo = math.Min(s.lo, r.Value)
		s.pk = math.Max(s.pk, r.Value)
		timeSet[r.Time.Unix()] = r.Time
	}

	m.series = m.series[:0]
	for _, s := range byKey {
		sort.Slice(s.points, func(i, j int) bool { return s.points[i].Time.Before(s.points[j].Time) })
		m.series = append(m.series, s)
	}
	sort.Slice(m.series, func(i, j int) bool {
		if m.series[i].slot != m.series[j].slot {
			return slotOrder(m.series[i].slot) < slotOrder(m.series[j].slot)
		}
		return m.series[i].key < m.series[j].key
	})

	m.times = m.times[:0]
	for _, t := range timeSet {
		m.times = append(m.times, t)
	}
	sort.Slice(m.times, func(i, j int) bool { return m.times[i].Before(m.times[j]) })

	m.cursor = len(m.times) - 1
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll = 0
}

func slotOrder(name string) int {
	for i, n := range config.SlotNames {
		if n == name {
			return i
		}
	}
	return len(config.SlotNames)
}

// ── Init / Update ────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		last := len(m.times) - 1
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.cursor = clamp(m.cursor-1, 0, last)
		case "right", "l":
			m.cursor = clamp(m.cursor+1, 0, last)
		case "shift+left", "H":
			m.cursor = clamp(m.cursor-60, 0, last)
		case "shift+right", "L":
			m.cursor = clamp(m.cursor+60, 0, last)
		case "home":
			m.cursor = 0
		case "end":
			m.cursor = clamp(last, 0, last)
		case "[":
			if m.dayIdx < len(m.days)-1 {
				m.dayIdx++
				m.loadDay()
			}
		case "]":
			if m.dayIdx > 0 {
				m.dayIdx--
				m.loadDay()
			}
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// ── View ─────────────────────────────────────────────────────────────

func (m model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{m.renderTitle(contentWidth)}

	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err)))
	}

	if len(m.times) == 0 {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(2, 0).
			Align(lipgloss.Center).
			Width(contentWidth).
			Render("No readings for this day."))
	} else {
		sections = append(sections, m.renderCursorInfo(contentWidth))
		sections = append(sections, m.renderPanel(contentWidth))
	}

	sections = append(sections, m.renderFooter(contentWidth))

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left, sections...), "\n")
	visible := m.height
	if visible < 5 {
		visible = 5
	}
	start := clamp(m.scroll, 0, clamp(len(lines)-visible, 0, len(lines)))
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func (m model) renderTitle(width int) string {
	dim := lipgloss.NewStyle().Foreground(colorDim)
	logo := lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg).Render("SENSOR LCD LOG")

	right := lipgloss.NewStyle().Foreground(colorCursor).Bold(true).Render(m.days[m.dayIdx]) +
		dim.Render(fmt.Sprintf("  [ %d/%d ]", m.dayIdx+1, len(m.days)))
	if len(m.times) > 0 {
		right += dim.Render(fmt.Sprintf("  %s - %s  (%d rows, %d sensors)",
			m.times[0].Format("15:04:05"), m.times[len(m.times)-1].Format("15:04:05"), m.rows, len(m.series)))
	}

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m model) renderCursorInfo(width int) string {
	ts := lipgloss.NewStyle().Foreground(colorCursor).Bold(true).Render(m.times[m.cursor].Format("15:04:05"))
	pos := lipgloss.NewStyle().Foreground(colorDim).Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.times)))

	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	return lipgloss.NewStyle().Padding(0, 1).Render("  " + ts + pos + "  " + m.renderScrubber(barWidth))
}

// renderScrubber draws the cursor's place in the day with a tick at every
// hour change.
func (m model) renderScrubber(width int) string {
	n := len(m.times)
	pos := 0
	if n > 1 {
		pos = m.cursor * (width - 1) / (n - 1)
	}

	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	curS := lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
			continue
		}
		idx := 0
		if n > 1 {
			idx = i * (n - 1) / (width - 1)
		}
		if idx > 0 && m.times[idx].Hour() != m.times[idx-1].Hour() {
			sb.WriteString(tickS.Render("│"))
			continue
		}
		sb.WriteString(dimS.Render("─"))
	}
	return sb.String()
}

func (m model) renderPanel(totalWidth int) string {
	cursorTime := m.times[m.cursor]

	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}
	chartWidth := innerWidth - 56
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}
	const slotW, labelW, valueW = 5, 8, 11

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var rows []string
	for _, s := range m.series {
		window := m.window(s, chartWidth)
		lo := math.Max(0, s.lo-5)
		hi := math.Max(s.pk+5, s.desc.Thresholds.T[2])

		slotName := lipgloss.NewStyle().Foreground(colorSlotName).Bold(true).Width(slotW).Render(strings.ToUpper(s.slot))
		label := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render(truncate(s.desc.Label, labelW))
		value := lipgloss.NewStyle().Width(valueW).Align(lipgloss.Right).
			Render(chart.Value(valueAt(s.points, cursorTime), s.desc.Category, s.desc.Thresholds))
		spark := frameL + chart.Sparkline(window, chartWidth, lo, hi, s.desc.Thresholds) + frameR
		stats := dimS.Render(" lo") + valS.Render(fmt.Sprintf("%6.1f", s.lo)) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%6.1f", s.pk))

		rows = append(rows, slotName+" "+label+" "+value+" "+spark+stats+" "+dimS.Render(s.key))
		if tl := chart.Timeline(window, chartWidth); strings.TrimSpace(tl) != "" {
			rows = append(rows, strings.Repeat(" ", slotW+labelW+valueW+4)+tl)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// window is the width samples of s ending at the cursor.
func (m model) window(s *series, width int) []history.Point {
	var out []history.Point
	for i := width - 1; i >= 0; i-- {
		idx := m.cursor - i
		if idx < 0 {
			continue
		}
		t := m.times[idx]
		if v, ok := s.byTime[t.Unix()]; ok {
			out = append(out, history.Point{Value: v, Time: t})
		}
	}
	return out
}

func (m model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  h/l") + keyS.Render(":scrub") +
		dimS.Render("  H/L") + keyS.Render(":skip 60") +
		dimS.Render("  home/end") + keyS.Render(":jump") +
		dimS.Render("  [/]") + keyS.Render(":day") +
		dimS.Render("  j/k") + keyS.Render(":scroll")

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}

// ── Helpers ──────────────────────────────────────────────────────────

// valueAt is the sample nearest to t. pts must be sorted and non-empty.
func valueAt(pts []history.Point, t time.Time) float64 {
	best := pts[0].Value
	bestDiff := absDuration(pts[0].Time.Sub(t))
	for _, p := range pts[1:] {
		diff := absDuration(p.Time.Sub(t))
		if diff < bestDiff {
			bestDiff, best = diff, p.Value
		} else if p.Time.After(t) {
			break
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
