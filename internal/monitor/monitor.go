// Package monitor is the terminal preview: it drives the same render loop
// as the daemon runner and shows what the panel would display, with
// per-slot sparklines and frame details.
package monitor

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/sensorlcd/internal/chart"
	"github.com/luki/sensorlcd/internal/history"
	"github.com/luki/sensorlcd/internal/render"
	"github.com/luki/sensorlcd/internal/runner"
	"github.com/luki/sensorlcd/internal/slot"
)

const historySize = 600

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type frameMsg runner.Tick

type savedMsg struct{ path string }

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the preview.
type Model struct {
	runner    *runner.Runner
	history   *history.Store
	tick      runner.Tick
	savePath  string
	saved     string
	err       error
	width     int
	height    int
	scroll    int
	frames    int
	startTime time.Time
	paused    bool
	busy      bool
}

// New creates the preview model around r. Pressing s writes the current
// frame to savePath.
func New(r *runner.Runner, savePath string) Model {
	return Model{
		runner:    r,
		history:   history.NewStore(historySize),
		savePath:  savePath,
		startTime: time.Now(),
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.runner.Config().Runtime.RefreshEvery(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func stepCmd(r *runner.Runner) tea.Cmd {
	return func() tea.Msg {
		tick, err := r.Step(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return frameMsg(tick)
	}
}

func saveCmd(path string, encoded []byte) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return errMsg{fmt.Errorf("save frame: %w", err)}
		}
		return savedMsg{path: path}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(stepCmd(m.runner), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case " ", "p":
			m.paused = !m.paused
		case "s":
			if len(m.tick.Encoded) > 0 && m.savePath != "" {
				return m, saveCmd(m.savePath, m.tick.Encoded)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// A step still in flight owns the engine; skip this tick.
		if m.paused || m.busy {
			return m, m.tickCmd()
		}
		m.busy = true
		return m, tea.Batch(stepCmd(m.runner), m.tickCmd())

	case frameMsg:
		m.busy = false
		m.err = nil
		m.tick = runner.Tick(msg)
		m.frames++
		m.history.RecordSnapshot(msg.Snapshot)

	case savedMsg:
		m.saved = msg.path

	case errMsg:
		m.busy = false
		m.err = msg.err
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorSlotName = lipgloss.Color("147")
	colorKey      = lipgloss.Color("243")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorShown    = lipgloss.Color("51")
	colorCrit     = lipgloss.Color("196")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err)))
	}

	if m.tick.Frame == nil {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for first frame..."))
	} else {
		sections = append(sections, m.renderFramePanel(contentWidth))
		sections = append(sections, m.renderSlotPanels(contentWidth)...)
	}

	sections = append(sections, m.renderFooter(contentWidth))

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left, sections...), "\n")
	visible := m.height
	if visible < 5 {
		visible = 5
	}
	maxScroll := len(lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	start := m.scroll
	if start > maxScroll {
		start = maxScroll
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitleBar(width int) string {
	dim := lipgloss.NewStyle().Foreground(colorDim)
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("SENSOR LCD PREVIEW")

	parts := []string{
		dim.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime)))),
		dim.Render(fmt.Sprintf("%d frames", m.frames)),
	}
	if !m.tick.Time.IsZero() {
		parts = append(parts, dim.Render(m.tick.Time.Format("15:04:05")))
	}
	if m.paused {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorPaused).Bold(true).Render("PAUSED"))
	}

	right := strings.Join(parts, dim.Render(" │ "))
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

func (m Model) renderFramePanel(width int) string {
	f := m.tick.Frame
	dim := lipgloss.NewStyle().Foreground(colorDim)
	val := lipgloss.NewStyle().Foreground(colorLabel)

	shape := "rectangular"
	if f.Params.Circular {
		shape = fmt.Sprintf("circular (inscribe %.3f)", f.Params.InscribeFactor)
	}
	var shown []string
	for _, pos := range f.Shown {
		shown = append(shown, pos.String())
	}
	if len(shown) == 0 {
		shown = []string{"nothing"}
	}

	status := "rendered"
	switch {
	case m.tick.Uploaded:
		status = "uploaded"
	case m.tick.Unchanged:
		status = "unchanged, not resent"
	}

	rows := []string{
		dim.Render("mode   ") + val.Render(f.Mode.String()) +
			dim.Render("   showing ") + lipgloss.NewStyle().Foreground(colorShown).Bold(true).Render(strings.Join(shown, " + ")),
		dim.Render("panel  ") + val.Render(fmt.Sprintf("%dx%d %s, scale %.2f", f.Params.Width, f.Params.Height, shape, f.Params.ScaleAvg)),
		dim.Render("frame  ") + val.Render(fmt.Sprintf("%s, %d bytes, %d draw ops, %d texts", status, len(m.tick.Encoded), f.Ops, len(f.Texts))),
	}
	if m.saved != "" {
		rows = append(rows, dim.Render("saved  ")+val.Render(m.saved))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderSlotPanels(totalWidth int) []string {
	f := m.tick.Frame

	innerWidth := totalWidth - 4
	if innerWidth < 30 {
		innerWidth = 30
	}
	chartWidth := innerWidth - 50
	if chartWidth < 15 {
		chartWidth = 15
	}
	if chartWidth > 140 {
		chartWidth = 140
	}
	const labelW, valueW = 8, 11

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	shown := make(map[slot.Position]bool)
	for _, pos := range f.Shown {
		shown[pos] = true
	}

	var panels []string
	for _, s := range f.Assignment {
		title := lipgloss.NewStyle().Bold(true).Foreground(colorSlotName).Render(strings.ToUpper(s.Position.String()))
		if !s.Active {
			panels = append(panels, lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, 1).
				Width(totalWidth).
				Render(title+dimS.Render("  none")))
			continue
		}

		head := title + "  " + lipgloss.NewStyle().Foreground(colorKey).Render(s.Key.String())
		if shown[s.Position] {
			head += lipgloss.NewStyle().Foreground(colorShown).Render("  ● on panel")
		}
		if !s.Found {
			head += lipgloss.NewStyle().Foreground(colorCrit).Render("  missing")
		}

		label := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render(truncate(s.Label, labelW))
		value := lipgloss.NewStyle().Width(valueW).Align(lipgloss.Right).Render(chart.Value(s.Value, s.Category, s.Thresholds))
		fill := render.FillWidth(s.Value, s.MaxScale, 100)
		row := label + " " + value + " " + dimS.Render(fmt.Sprintf("%3d%%", fill))

		rows := []string{head}
		ser := m.history.Get(s.Key.String())
		if ser != nil && ser.Len() > 0 {
			lo := math.Max(0, ser.Min-5)
			hi := math.Max(ser.Peak+5, s.Thresholds.T[2])
			pts := ser.Tail(chartWidth)
			row += " " + frameL + chart.Sparkline(pts, chartWidth, lo, hi, s.Thresholds) + frameR +
				dimS.Render(" avg") + valS.Render(fmt.Sprintf("%6.1f", ser.Avg())) +
				dimS.Render(" pk") + valS.Render(fmt.Sprintf("%6.1f", ser.Peak))
			rows = append(rows, row)
			if tl := chart.Timeline(pts, chartWidth); strings.TrimSpace(tl) != "" {
				rows = append(rows, strings.Repeat(" ", labelW+valueW+8)+tl)
			}
		} else {
			rows = append(rows, row)
		}
		rows = append(rows, strings.Repeat(" ", labelW+1)+chart.Scale(s.Value, s.MaxScale, s.Thresholds, chartWidth+valueW+5))

		panels = append(panels, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(totalWidth).
			Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}
	return panels
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	var legend string
	for i, c := range m.runner.Config().Thresholds.CPU.C {
		legend += lipgloss.NewStyle().Foreground(lipgloss.Color(c.String())).Render("██") +
			dimS.Render(fmt.Sprintf(" b%d ", i))
	}
	legend += lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│") + dimS.Render(" 1min")

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  j/k") + keyS.Render(":scroll") +
		dimS.Render("  p") + keyS.Render(":pause") +
		dimS.Render("  s") + keyS.Render(":save")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + keys)
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

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
