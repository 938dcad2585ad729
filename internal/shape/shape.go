// Package shape describes the slab geometries a column can be built from.
//
// Every shape has a constant cross-section along the stacking axis, so it is
// fully characterised by its cross-sectional area and height.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Family string

const (
	FamilyUndefined Family = ""
	Cylinder        Family = "cylinder"
	Square          Family = "square"
	Rectangle       Family = "rectangle"
)

var (
	ErrUnknownFamily          = errors.New("shape: unknown shape family")
	ErrNonPositiveDimension   = errors.New("shape: dimensions must be positive")
	ErrMissingFamilyDimension = errors.New("shape: missing dimension for family")
)

// Shape is a slab of uniform cross-section. Lengths are cm.
type Shape interface {
	Family() Family
	CrossSectionArea() float64
	Height() float64
	Volume() float64
	Validate() error
}

// Disc is a right circular cylinder.
type Disc struct {
	Diameter float64
	H        float64
}

func NewDisc(diameter, height float64) (*Disc, error) {
	d := &Disc{Diameter: diameter, H: height}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Disc) Family() Family  { return Cylinder }
func (d *Disc) Height() float64 { return d.H }

func (d *Disc) CrossSectionArea() float64 {
	r := d.Diameter / 2
	return math.Pi * r * r
}

func (d *Disc) Volume() float64 { return d.CrossSectionArea() * d.H }

func (d *Disc) Validate() error {
	if d.Diameter <= 0 || d.H <= 0 {
		return fmt.Errorf("%w: diameter=%g height=%g", ErrNonPositiveDimension, d.Diameter, d.H)
	}
	return nil
}

// SquarePrism is a slab with a square face of the given side.
type SquarePrism struct {
	Side float64
	H    float64
}

func NewSquarePrism(side, height float64) (*SquarePrism, error) {
	s := &SquarePrism{Side: side, H: height}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SquarePrism) Family() Family            { return Square }
func (s *SquarePrism) Height() float64           { return s.H }
func (s *SquarePrism) CrossSectionArea() float64 { return s.Side * s.Side }
func (s *SquarePrism) Volume() float64           { return s.CrossSectionArea() * s.H }

func (s *SquarePrism) Validate() error {
	if s.Side <= 0 || s.H <= 0 {
		return fmt.Errorf("%w: side=%g height=%g", ErrNonPositiveDimension, s.Side, s.H)
	}
	return nil
}

type RectPrism struct {
	Width float64
	Depth float64
	H     float64
}

func NewRectPrism(width, depth, height float64) (*RectPrism, error) {
	r := &RectPrism{Width: width, Depth: depth, H: height}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RectPrism) Family() Family            { return Rectangle }
func (r *RectPrism) Height() float64           { return r.H }
func (r *RectPrism) CrossSectionArea() float64 { return r.Width * r.Depth }
func (r *RectPrism) Volume() float64           { return r.CrossSectionArea() * r.H }

func (r *RectPrism) Validate() error {
	if r.Width <= 0 || r.Depth <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: width=%g depth=%g height=%g", ErrNonPositiveDimension, r.Width, r.Depth, r.H)
	}
	return nil
}

// Spec is the declarative form of a shape as it appears in run files.
type Spec struct {
	Family   Family  `yaml:"family" json:"family"`
	Diameter float64 `yaml:"diameter,omitempty" json:"diameter,omitempty"`
	Side     float64 `yaml:"side,omitempty" json:"side,omitempty"`
	Width    float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Depth    float64 `yaml:"depth,omitempty" json:"depth,omitempty"`
	Height   float64 `yaml:"height" json:"height"`
}

// New builds a validated shape from its declarative form.
func New(spec Spec) (Shape, error) {
	switch Family(strings.ToLower(string(spec.Family))) {
	case Cylinder:
		if spec.Diameter == 0 {
			return nil, fmt.Errorf("%w: cylinder needs diameter", ErrMissingFamilyDimension)
		}
		return NewDisc(spec.Diameter, spec.Height)
	case Square:
		if spec.Side == 0 {
			return nil, fmt.Errorf("%w: square needs side", ErrMissingFamilyDimension)
		}
		return NewSquarePrism(spec.Side, spec.Height)
	case Rectangle:
		if spec.Width == 0 || spec.Depth == 0 {
			return nil, fmt.Errorf("%w: rectangle needs width and depth", ErrMissingFamilyDimension)
		}
		return NewRectPrism(spec.Width, spec.Depth, spec.Height)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, spec.Family)
	}
}

// Describe renders a shape as a human-readable block.
func Describe(s Shape) string {
	var b strings.Builder
	b.WriteString("-------------------------\n")
	switch v := s.(type) {
	case *Disc:
		fmt.Fprintf(&b, "Diameter:   %g (cm)\n", v.Diameter)
	case *SquarePrism:
		fmt.Fprintf(&b, "Side:       %g (cm)\n", v.Side)
	case *RectPrism:
		fmt.Fprintf(&b, "Width:      %g (cm)\n", v.Width)
		fmt.Fprintf(&b, "Depth:      %g (cm)\n", v.Depth)
	}
	fmt.Fprintf(&b, "Height:     %g (cm)\n", s.Height())
	fmt.Fprintf(&b, "Family:     %s\n", s.Family())
	fmt.Fprintf(&b, "Area:       %.4f (cm^2)\n", s.CrossSectionArea())
	fmt.Fprintf(&b, "Volume:     %.4f (cm^3)\n", s.Volume())
	b.WriteString("-------------------------\n")
	return b.String()
}
