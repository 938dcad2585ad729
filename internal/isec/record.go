package isec

import (
	"fmt"
	"math"

	"github.com/san-kum/isecsim/internal/material"
	"github.com/san-kum/isecsim/internal/shape"
)

// Record is the resolved geometry and material data a layer is built from.
// Lengths are cm, density g/cm^3, specific heat J/(g K) and conductivity
// W/(m K).
type Record struct {
	CrossSectionArea float64      `json:"cross_section_area"`
	Height           float64      `json:"height"`
	Volume           float64      `json:"volume"`
	ShapeFamily      shape.Family `json:"shape_family"`
	MaterialName     string       `json:"material"`
	Conductivity     float64      `json:"conductivity"`
	Density          float64      `json:"density"`
	SpecificHeat     float64      `json:"specific_heat"`
}

// Resolve builds a record from a validated shape and material.
func Resolve(s shape.Shape, m material.Material) (Record, error) {
	if err := s.Validate(); err != nil {
		return Record{}, err
	}
	if err := m.Validate(); err != nil {
		return Record{}, err
	}
	return Record{
		CrossSectionArea: s.CrossSectionArea(),
		Height:           s.Height(),
		Volume:           s.Volume(),
		ShapeFamily:      s.Family(),
		MaterialName:     m.Name,
		Conductivity:     m.Conductivity,
		Density:          m.Density,
		SpecificHeat:     m.SpecificHeat,
	}, nil
}

// ThermalMass is volume x density in grams.
func (r Record) ThermalMass() float64 {
	return r.Volume * r.Density
}

// Validate checks every property the conduction model divides by or scales
// with. The shape family is checked at stacking time instead.
func (r Record) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"cross_section_area", r.CrossSectionArea},
		{"height", r.Height},
		{"conductivity", r.Conductivity},
		{"specific_heat", r.SpecificHeat},
	}
	for _, c := range checks {
		if !positive(c.value) {
			return fmt.Errorf("%w: %s %s=%g", ErrInvalidRecord, r.MaterialName, c.name, c.value)
		}
	}
	if mass := r.ThermalMass(); !positive(mass) {
		return fmt.Errorf("%w: %s volume=%g density=%g", ErrUndefinedThermalMass, r.MaterialName, r.Volume, r.Density)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
