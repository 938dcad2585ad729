package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusDone = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	columnStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
)

const (
	coldColor = lipgloss.Color("#2255ff")
	hotColor  = lipgloss.Color("#ff3322")
)

var (
	cold, _ = colorful.Hex(string(coldColor))
	hot, _  = colorful.Hex(string(hotColor))
)

// HeatColor maps t within [lo, hi] onto the cold-to-hot gradient.
func HeatColor(t, lo, hi float64) lipgloss.Color {
	frac := 0.5
	if hi > lo {
		frac = math.Max(0, math.Min(1, (t-lo)/(hi-lo)))
	}
	return lipgloss.Color(cold.BlendRgb(hot, frac).Clamped().Hex())
}

// ProgressBar renders completion of a run.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent >= 1 {
		return StatusDone.Render(bar)
	}
	return StatusRunning.Render(bar)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SparklineChart draws the most recent width samples, each bar coloured by
// its place between the window's coldest and hottest value.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := floats.Min(values), floats.Max(values)
	var b strings.Builder
	for _, v := range values {
		frac := 0.5
		if hi > lo {
			frac = (v - lo) / (hi - lo)
		}
		bar := sparkRunes[int(math.Round(frac*float64(len(sparkRunes)-1)))]
		b.WriteString(lipgloss.NewStyle().Foreground(HeatColor(v, lo, hi)).Render(string(bar)))
	}
	return b.String()
}
