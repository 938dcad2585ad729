// Package material holds the thermophysical properties of the solids a column
// is built from, and catalogues of named materials.
package material

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProperty = errors.New("material: property must be positive")
	ErrUnknownMaterial = errors.New("material: unknown material")
	ErrDuplicateID     = errors.New("material: duplicate material id")
)

// Material is a homogeneous solid.
type Material struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Density      float64 `json:"density"`        // g/cm^3
	MolarMass    float64 `json:"molar_mass"`     // g/mol
	MeltingPoint float64 `json:"melting_point"`  // C
	HeatOfFusion float64 `json:"heat_of_fusion"` // J/mol
	SpecificHeat float64 `json:"specific_heat"`  // J/(g K)
	Conductivity float64 `json:"conductivity"`   // W/(m K)
}

// Validate checks the properties the conduction model depends on.
// Phase-change properties are informational and may be zero.
func (m Material) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProperty)
	}
	if m.Density <= 0 {
		return fmt.Errorf("%w: %s density=%g", ErrInvalidProperty, m.Name, m.Density)
	}
	if m.SpecificHeat <= 0 {
		return fmt.Errorf("%w: %s specific_heat=%g", ErrInvalidProperty, m.Name, m.SpecificHeat)
	}
	if m.Conductivity <= 0 {
		return fmt.Errorf("%w: %s conductivity=%g", ErrInvalidProperty, m.Name, m.Conductivity)
	}
	return nil
}

// Describe renders a material as a human-readable block.
func Describe(m Material) string {
	var b strings.Builder
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "Name:                 %s\n", m.Name)
	fmt.Fprintf(&b, "Id:                   %d\n", m.ID)
	fmt.Fprintf(&b, "Density:              %g (g/cm^3)\n", m.Density)
	fmt.Fprintf(&b, "Molar Mass:           %g (g/mol)\n", m.MolarMass)
	fmt.Fprintf(&b, "Melting Point:        %g (C)\n", m.MeltingPoint)
	fmt.Fprintf(&b, "Heat Of Fusion:       %g (J/mol)\n", m.HeatOfFusion)
	fmt.Fprintf(&b, "Specific Heat:        %g (J/g C)\n", m.SpecificHeat)
	fmt.Fprintf(&b, "Thermal Conductivity: %g (W/m K)\n", m.Conductivity)
	b.WriteString("------------------\n")
	return b.String()
}
