package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/isecsim/internal/isec"
)

// Snapshot is the state of every layer after a step, bottom first.
type Snapshot struct {
	Step         int       `json:"step"`
	Time         float64   `json:"time"`
	Temperatures []float64 `json:"temperatures"`
	Fluxes       []float64 `json:"fluxes"`
}

func (s Snapshot) IsValid() bool {
	for _, v := range s.Temperatures {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(stack *isec.Stack, snap Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(snap Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnStep(snap Snapshot) { f(snap) }

type Config struct {
	TimeStep      float64 // s
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		TimeStep:      1.0,
		Steps:         100,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded snapshot.
func (r *Result) Final() Snapshot {
	if len(r.Snapshots) == 0 {
		return Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}

// Series returns the temperature history of one layer.
func (r *Result) Series(layer int) []float64 {
	out := make([]float64, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		if layer < len(s.Temperatures) {
			out = append(out, s.Temperatures[layer])
		}
	}
	return out
}

type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
