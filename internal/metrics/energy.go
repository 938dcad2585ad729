package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/sim"
)

// ThermalEnergy is the stored heat sum(m_i * c_i * T_i) of a snapshot, in J
// relative to 0 C.
func ThermalEnergy(capacities, temperatures []float64) float64 {
	return floats.Dot(capacities, temperatures)
}

// EnergyDrift tracks the largest departure of the stored heat from the heat
// the column should hold: its initial value plus everything the sources have
// generated since. Conduction only moves heat between layers, so any drift is
// numerical error.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(stack *isec.Stack, snap sim.Snapshot) {
	energy := ThermalEnergy(stack.HeatCapacities(), snap.Temperatures)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	expected := e.initial + stack.TotalPower()*snap.Time
	drift := math.Abs(energy - expected)
	if e.initial != 0 {
		drift /= math.Abs(e.initial)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// StoredEnergy reports the heat held by the column at the last observation.
type StoredEnergy struct {
	name  string
	value float64
}

func NewStoredEnergy() *StoredEnergy {
	return &StoredEnergy{name: "stored_energy"}
}

func (s *StoredEnergy) Name() string { return s.name }

func (s *StoredEnergy) Observe(stack *isec.Stack, snap sim.Snapshot) {
	s.value = ThermalEnergy(stack.HeatCapacities(), snap.Temperatures)
}

func (s *StoredEnergy) Value() float64 { return s.value }
func (s *StoredEnergy) Reset()         { s.value = 0 }
