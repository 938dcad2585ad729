package isec

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/isecsim/internal/shape"
	"github.com/san-kum/isecsim/internal/thermal"
)

// Stack is an ordered column of layers, bottom first.
type Stack struct {
	layers []*Layer
	sealed bool
	logger log.FieldLogger
}

type StackOption func(*Stack)

func WithLogger(l log.FieldLogger) StackOption {
	return func(s *Stack) { s.logger = l }
}

func NewStack(opts ...StackOption) *Stack {
	s := &Stack{
		layers: make([]*Layer, 0),
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stack appends layer on top of the column. On error the stack is left
// unchanged.
func (s *Stack) Stack(layer *Layer) error {
	if layer == nil {
		return errors.New("isec: cannot stack nil layer")
	}
	index := len(s.layers)
	fail := func(err error, existing shape.Family) error {
		return &StackError{
			Index:    index,
			Material: layer.record.MaterialName,
			Family:   string(layer.record.ShapeFamily),
			Existing: string(existing),
			Wrapped:  err,
		}
	}

	if s.sealed {
		return fail(ErrStackSealed, "")
	}
	if layer.stacked {
		return fail(ErrLayerAlreadyStacked, "")
	}
	family := layer.record.ShapeFamily
	if family == shape.FamilyUndefined {
		return fail(ErrShapeTypeUndefined, "")
	}
	for _, existing := range s.layers {
		if existing.record.ShapeFamily != family {
			return fail(ErrIncompatibleShapeStack, existing.record.ShapeFamily)
		}
	}
	if top := s.Top(); top != nil {
		if sep := thermal.Separation(top.record.Height, layer.record.Height); !positive(sep) {
			return fail(fmt.Errorf("%w: %g cm", ErrDegenerateLayerSeparation, sep), "")
		}
	}

	layer.stacked = true
	s.layers = append(s.layers, layer)

	s.logger.WithFields(log.Fields{
		"index":    index,
		"material": layer.record.MaterialName,
		"shape":    family,
		"kind":     layer.kind,
	}).Infof("stacked %s", layer)
	return nil
}

// Seal forbids further stacking. The driver seals a stack when a run starts.
func (s *Stack) Seal()        { s.sealed = true }
func (s *Stack) Sealed() bool { return s.sealed }

func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the layer at index, or nil when out of range.
func (s *Stack) Layer(index int) *Layer {
	if index < 0 || index >= len(s.layers) {
		return nil
	}
	return s.layers[index]
}

// Below returns the neighbour under index, or nil for the bottom layer.
func (s *Stack) Below(index int) *Layer { return s.Layer(index - 1) }

// Above returns the neighbour over index, or nil for the top layer.
func (s *Stack) Above(index int) *Layer { return s.Layer(index + 1) }

func (s *Stack) Top() *Layer { return s.Layer(len(s.layers) - 1) }

// Layers returns the layers bottom first. The slice is a copy; the layers
// are not.
func (s *Stack) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Family is the shape family shared by every layer, or FamilyUndefined for an
// empty stack.
func (s *Stack) Family() shape.Family {
	if len(s.layers) == 0 {
		return shape.FamilyUndefined
	}
	return s.layers[0].record.ShapeFamily
}

func (s *Stack) Temperatures() []float64 {
	out := make([]float64, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.temperature
	}
	return out
}

func (s *Stack) Fluxes() []float64 {
	out := make([]float64, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.heatFlux
	}
	return out
}

// Restore resets every layer to the given temperatures and clears the fluxes.
func (s *Stack) Restore(temperatures []float64) error {
	if len(temperatures) != len(s.layers) {
		return fmt.Errorf("isec: restore needs %d temperatures, got %d", len(s.layers), len(temperatures))
	}
	for i, l := range s.layers {
		l.temperature = temperatures[i]
		l.heatFlux = 0
	}
	return nil
}

func (s *Stack) HeatCapacities() []float64 {
	out := make([]float64, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.HeatCapacity()
	}
	return out
}

// TotalPower is the summed internal generation of every source layer.
func (s *Stack) TotalPower() float64 {
	var p float64
	for _, l := range s.layers {
		p += l.Power()
	}
	return p
}

// Conductance is the heat flow per degree between layer index and the layer
// above it, in W/K. It is zero for the top layer.
func (s *Stack) Conductance(index int) float64 {
	a, b := s.Layer(index), s.Above(index)
	if a == nil || b == nil {
		return 0
	}
	return thermal.Conductance(interfaceOf(a, b))
}

// CriticalTimeStep is the largest time step for which no layer overshoots its
// neighbours in one explicit step: min over layers of C_i / sum_j G_ij.
// It is +Inf for stacks with fewer than two layers.
func (s *Stack) CriticalTimeStep() float64 {
	critical := math.Inf(1)
	for i, l := range s.layers {
		g := s.Conductance(i) + s.Conductance(i-1)
		if g > 0 {
			critical = math.Min(critical, l.HeatCapacity()/g)
		}
	}
	return critical
}

func (s *Stack) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tMATERIAL\tSHAPE\tHEIGHT\tMASS\tTEMP\tFLUX")
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2fcm\t%.2fg\t%.3fC\t%.3fW\n",
			i, l.kind, l.record.MaterialName, l.record.ShapeFamily,
			l.record.Height, l.thermalMass, l.temperature, l.heatFlux)
	}
	w.Flush()
	return b.String()
}
