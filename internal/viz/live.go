package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isecsim/internal/sim"
)

const (
	historyCapacity = 600
	columnWidth     = 24
	graphWidth      = 60
	graphHeight     = 12
	maxSpeed        = 512
)

type TickMsg time.Time

// Model drives a column forward one tick at a time and renders it.
type Model struct {
	driver  *sim.Driver
	cfg     sim.Config
	initial []float64
	name    string

	running bool
	done    bool
	speed   int // steps per tick
	history [][]float64
	lo, hi  float64
	err     error
}

// NewModel prepares a live view over driver. initial holds the temperatures
// restored on reset; when nil the current ones are used.
func NewModel(driver *sim.Driver, cfg sim.Config, initial []float64, name string) Model {
	if initial == nil {
		initial = driver.Stack().Temperatures()
	}
	m := Model{
		driver:  driver,
		cfg:     cfg,
		initial: append([]float64(nil), initial...),
		name:    name,
		running: true,
		speed:   1,
	}
	m.clearHistory()
	m.done = cfg.Steps == 0
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.speed; i++ {
		if m.driver.Snapshot().Step >= m.cfg.Steps {
			m.done = true
			return
		}
		snap := m.driver.Step(m.cfg.TimeStep)
		if !snap.IsValid() {
			m.err = &sim.StepError{Step: snap.Step, Time: snap.Time, Wrapped: sim.ErrUnstable}
			m.done = true
			m.running = false
			return
		}
		m.record(snap.Temperatures)
	}
	if m.driver.Snapshot().Step >= m.cfg.Steps {
		m.done = true
	}
}

func (m *Model) record(temps []float64) {
	for i, t := range temps {
		h := append(m.history[i], t)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[i] = h
		m.lo = math.Min(m.lo, t)
		m.hi = math.Max(m.hi, t)
	}
}

func (m *Model) reset() {
	if err := m.driver.Reset(m.initial); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.done = m.cfg.Steps == 0
	m.clearHistory()
}

func (m *Model) clearHistory() {
	temps := m.driver.Stack().Temperatures()
	m.history = make([][]float64, len(temps))
	m.lo, m.hi = math.Inf(1), math.Inf(-1)
	m.record(temps)
}

// Step is the number of steps taken since the last reset.
func (m Model) Step() int { return m.driver.Snapshot().Step }

func (m Model) Running() bool { return m.running }
func (m Model) Done() bool    { return m.done }
func (m Model) Speed() int    { return m.speed }
func (m Model) Err() error    { return m.err }

func (m Model) View() string {
	snap := m.driver.Snapshot()

	var status string
	switch {
	case m.err != nil:
		status = StatusPaused.Render("UNSTABLE")
	case m.done:
		status = StatusDone.Render("DONE")
	case m.running:
		status = StatusRunning.Render("RUNNING")
	default:
		status = StatusPaused.Render("PAUSED")
	}

	progress := 1.0
	if m.cfg.Steps > 0 {
		progress = float64(snap.Step) / float64(m.cfg.Steps)
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s  %s", m.name, status)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  step %d/%d  t=%.2fs  x%d\n",
		ProgressBar(progress, 30), Subtle.Render(fmt.Sprintf("%3.0f%%", progress*100)),
		snap.Step, m.cfg.Steps, snap.Time, m.speed))
	if m.err != nil {
		b.WriteString(StatusPaused.Render(m.err.Error()))
		b.WriteString("\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		columnStyle.Render(m.renderColumn(snap)),
		statsStyle.Render(m.renderStats(snap)),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderGraph())
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("space pause • r reset • +/- speed • q quit"))
	return b.String()
}

// renderColumn draws the top layer first.
func (m Model) renderColumn(snap sim.Snapshot) string {
	layers := m.driver.Stack().Layers()
	rows := make([]string, 0, len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		t := snap.Temperatures[i]
		label := fmt.Sprintf("%d %-10s %8.2f°C", i, truncate(layers[i].Record().MaterialName, 10), t)
		block := lipgloss.NewStyle().
			Width(columnWidth).
			Foreground(lipgloss.Color("#ffffff")).
			Background(HeatColor(t, m.lo, m.hi)).
			Render(label)
		rows = append(rows, block)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderStats(snap sim.Snapshot) string {
	layers := m.driver.Stack().Layers()
	var b strings.Builder
	for i := len(layers) - 1; i >= 0; i-- {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("q%d (%s)", i, layers[i].Kind())))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%+10.3f W ", snap.Fluxes[i])))
		b.WriteString(SparklineChart(m.history[i], 20))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderGraph() string {
	if len(m.history) == 0 || len(m.history[0]) < 2 {
		return Subtle.Render("waiting for data...")
	}
	return asciigraph.PlotMany(m.history,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption("temperature (°C)"),
	)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Run opens the live view and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
