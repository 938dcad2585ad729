package isec

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/isecsim/internal/thermal"
)

// DefaultTemperature is the initial temperature of a layer, in C.
const DefaultTemperature = 20.0

type Kind string

const (
	KindStorage Kind = "storage"
	KindSource  Kind = "source"
	KindSink    Kind = "sink"
)

// ParseKind accepts the kind names used in run files.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindStorage, "thermal storage":
		return KindStorage, nil
	case KindSource:
		return KindSource, nil
	case KindSink:
		return KindSink, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// FluxComputer returns the net heat flow into self in watts, given its
// current neighbours. Either neighbour may be nil.
type FluxComputer interface {
	ComputeFlux(self, below, above *Layer) float64
}

// Passive layers only conduct. Storage and sink layers are passive.
type Passive struct{}

func (Passive) ComputeFlux(self, below, above *Layer) float64 {
	return conduction(self, below, above)
}

// Generating layers conduct and add a constant internal power.
type Generating struct {
	Power float64 // W
}

func (g Generating) ComputeFlux(self, below, above *Layer) float64 {
	return conduction(self, below, above) + g.Power
}

// conduction sums the flow into self from each existing neighbour.
func conduction(self, below, above *Layer) float64 {
	var total float64
	for _, n := range [...]*Layer{below, above} {
		if n == nil {
			continue
		}
		k, area, sep := interfaceOf(self, n)
		total += thermal.Flux(k, area, sep, n.temperature, self.temperature)
	}
	return total
}

// interfaceOf returns the conductivity, contact area and separation shared by
// two adjacent layers. The result does not depend on argument order, so the
// heat leaving one layer is exactly the heat entering the other.
func interfaceOf(a, b *Layer) (k, area, sep float64) {
	ra, rb := a.record, b.record
	k = thermal.SeriesConductivity(ra.Conductivity, ra.Height, rb.Conductivity, rb.Height)
	area = math.Min(ra.CrossSectionArea, rb.CrossSectionArea)
	sep = thermal.Separation(ra.Height, rb.Height)
	return k, area, sep
}

// Layer is one slab of the column.
type Layer struct {
	record      Record
	kind        Kind
	flux        FluxComputer
	thermalMass float64

	temperature float64
	heatFlux    float64

	stacked bool
}

type Option func(*Layer)

func WithTemperature(t float64) Option {
	return func(l *Layer) { l.temperature = t }
}

// NewLayer validates rec and builds a layer of the given kind. Power only
// applies to source layers.
func NewLayer(kind Kind, rec Record, power float64, opts ...Option) (*Layer, error) {
	var fc FluxComputer
	switch kind {
	case KindStorage, KindSink:
		fc = Passive{}
	case KindSource:
		fc = Generating{Power: power}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	l := &Layer{
		record:      rec,
		kind:        kind,
		flux:        fc,
		thermalMass: rec.ThermalMass(),
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func NewStorage(rec Record, opts ...Option) (*Layer, error) {
	return NewLayer(KindStorage, rec, 0, opts...)
}

func NewSink(rec Record, opts ...Option) (*Layer, error) {
	return NewLayer(KindSink, rec, 0, opts...)
}

func NewSource(rec Record, power float64, opts ...Option) (*Layer, error) {
	return NewLayer(KindSource, rec, power, opts...)
}

func (l *Layer) Kind() Kind           { return l.kind }
func (l *Layer) Record() Record       { return l.record }
func (l *Layer) ThermalMass() float64 { return l.thermalMass }
func (l *Layer) Temperature() float64 { return l.temperature }
func (l *Layer) HeatFlux() float64    { return l.heatFlux }

// HeatCapacity is thermal mass x specific heat, in J/K.
func (l *Layer) HeatCapacity() float64 {
	return l.thermalMass * l.record.SpecificHeat
}

// Power is the internal generation of a source layer and zero otherwise.
func (l *Layer) Power() float64 {
	if g, ok := l.flux.(Generating); ok {
		return g.Power
	}
	return 0
}

// SetTemperature overrides the current temperature, e.g. to restore initial
// conditions.
func (l *Layer) SetTemperature(t float64) { l.temperature = t }

// UpdateFlux recomputes the net heat flow into the layer from the current
// temperatures of its neighbours. It reads temperatures only.
func (l *Layer) UpdateFlux(below, above *Layer) {
	l.heatFlux = l.flux.ComputeFlux(l, below, above)
}

// UpdateTemperature advances the temperature by one explicit Euler step of dt
// seconds using the flux from the last UpdateFlux.
func (l *Layer) UpdateTemperature(dt float64) {
	l.temperature += l.heatFlux * dt / l.HeatCapacity()
}

func (l *Layer) String() string {
	return fmt.Sprintf("%s %s (%s)", l.record.MaterialName, l.record.ShapeFamily, l.kind)
}
