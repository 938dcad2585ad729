package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/sim"
)

// Spread is the difference between the hottest and coldest layer at the last
// observation. It approaches zero as a passive column equilibrates.
type Spread struct {
	name  string
	value float64
}

func NewSpread() *Spread {
	return &Spread{name: "spread"}
}

func (s *Spread) Name() string { return s.name }

func (s *Spread) Observe(_ *isec.Stack, snap sim.Snapshot) {
	if len(snap.Temperatures) == 0 {
		return
	}
	s.value = floats.Max(snap.Temperatures) - floats.Min(snap.Temperatures)
}

func (s *Spread) Value() float64 { return s.value }
func (s *Spread) Reset()         { s.value = 0 }

// Peak is the highest layer temperature seen during a run.
type Peak struct {
	name    string
	peak    float64
	samples int
}

func NewPeak() *Peak {
	return &Peak{name: "peak_temperature"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(_ *isec.Stack, snap sim.Snapshot) {
	if len(snap.Temperatures) == 0 {
		return
	}
	m := floats.Max(snap.Temperatures)
	if p.samples == 0 {
		p.peak = m
	} else {
		p.peak = math.Max(p.peak, m)
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	return p.peak
}

func (p *Peak) Reset() {
	p.peak = 0
	p.samples = 0
}

// Defaults returns the metrics recorded for every run.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewStoredEnergy(),
		NewSpread(),
		NewPeak(),
	}
}
