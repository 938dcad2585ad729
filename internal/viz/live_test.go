package viz

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/sim"
)

func testDriver(t *testing.T, temps ...float64) *sim.Driver {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	st := isec.NewStack(isec.WithLogger(logger))
	for _, temp := range temps {
		rec := isec.Record{
			CrossSectionArea: 1, Height: 1, Volume: 10, ShapeFamily: shape.Cylinder,
			MaterialName: "copper", Conductivity: 0.5, Density: 1, SpecificHeat: 1,
		}
		l, err := isec.NewStorage(rec, isec.WithTemperature(temp))
		if err != nil {
			t.Fatal(err)
		}
		if err := st.Stack(l); err != nil {
			t.Fatal(err)
		}
	}
	return sim.New(st, sim.WithLogger(logger))
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TickAdvances(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 10}, nil, "pair")
	m = update(m, TickMsg{})
	if m.Step() != 1 {
		t.Errorf("expected 1 step, got %d", m.Step())
	}
	if len(m.history[0]) != 2 {
		t.Errorf("expected initial + 1 samples, got %d", len(m.history[0]))
	}
}

func TestModel_Pause(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 10}, nil, "pair")
	m = update(m, key(" "))
	if m.Running() {
		t.Fatal("expected paused")
	}
	m = update(m, TickMsg{})
	if m.Step() != 0 {
		t.Errorf("paused model stepped to %d", m.Step())
	}
}

func TestModel_StopsAtSteps(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 3}, nil, "pair")
	for i := 0; i < 10; i++ {
		m = update(m, TickMsg{})
	}
	if m.Step() != 3 {
		t.Errorf("expected 3 steps, got %d", m.Step())
	}
	if !m.Done() {
		t.Error("expected done")
	}
}

func TestModel_Speed(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 100}, nil, "pair")
	m = update(m, key("+"))
	m = update(m, key("+"))
	if m.Speed() != 4 {
		t.Fatalf("expected speed 4, got %d", m.Speed())
	}
	m = update(m, TickMsg{})
	if m.Step() != 4 {
		t.Errorf("expected 4 steps, got %d", m.Step())
	}
	for i := 0; i < 5; i++ {
		m = update(m, key("-"))
	}
	if m.Speed() != 1 {
		t.Errorf("speed should floor at 1, got %d", m.Speed())
	}
}

func TestModel_Reset(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 5}, nil, "pair")
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg{})
	}
	m = update(m, key("r"))
	if m.Step() != 0 || m.Done() {
		t.Errorf("reset left step=%d done=%v", m.Step(), m.Done())
	}
	temps := m.driver.Stack().Temperatures()
	if temps[0] != 0 || temps[1] != 100 {
		t.Errorf("reset temperatures = %v", temps)
	}
	if len(m.history[1]) != 1 {
		t.Errorf("history not cleared: %d samples", len(m.history[1]))
	}
}

func TestModel_Unstable(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1e200, Steps: 5}, nil, "pair")
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if !errors.Is(m.Err(), sim.ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", m.Err())
	}
	if m.Running() {
		t.Error("unstable model should stop")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 5}, nil, "pair")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(testDriver(t, 0, 100), sim.Config{TimeStep: 1, Steps: 5}, nil, "pair")
	if !strings.Contains(m.View(), "waiting for data") {
		t.Error("expected placeholder graph before first step")
	}
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	v := m.View()
	for _, want := range []string{"pair", "copper", "step 2/5", "temperature"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHeatColor(t *testing.T) {
	tests := []struct {
		t, lo, hi float64
		want      lipgloss.Color
	}{
		{0, 0, 100, coldColor},
		{100, 0, 100, hotColor},
		{-5, 0, 100, coldColor},
		{500, 0, 100, hotColor},
	}
	for _, tt := range tests {
		if got := HeatColor(tt.t, tt.lo, tt.hi); got != tt.want {
			t.Errorf("HeatColor(%g) = %s, want %s", tt.t, got, tt.want)
		}
	}
	if HeatColor(5, 5, 5) == coldColor {
		t.Error("flat range should map to the midpoint")
	}
}

func TestSparklineChart_RecentWindow(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	got := []rune(ansi.Strip(SparklineChart(values, 5)))
	if len(got) != 5 {
		t.Fatalf("expected 5 bars, got %q", string(got))
	}
	if got[0] != '▁' || got[4] != '█' {
		t.Errorf("expected rising bars over the last samples, got %q", string(got))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"copper", 10, "copper"},
		{"aluminium-oxide", 5, "alumi"},
		{"größeres-gestein", 4, "größ"},
		{"石灰石灰石灰", 3, "石灰石"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}

func TestSparklineChart_Empty(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("got %q", got)
	}
}
