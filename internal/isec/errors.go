package isec

import (
	"errors"
	"fmt"
)

// Domain errors for building a column.
var (
	// ErrShapeTypeUndefined indicates a layer whose shape family is unset.
	ErrShapeTypeUndefined = errors.New("isec: layer shape type cannot be undefined")

	// ErrIncompatibleShapeStack indicates a layer whose shape family differs
	// from the family already established by the stack.
	ErrIncompatibleShapeStack = errors.New("isec: stacked shapes must have the same type")

	// ErrUndefinedThermalMass indicates a layer whose volume x density is not
	// a positive finite number.
	ErrUndefinedThermalMass = errors.New("isec: thermal mass must be positive")

	// ErrDegenerateLayerSeparation indicates two adjacent layers whose
	// centre-to-centre distance is not positive.
	ErrDegenerateLayerSeparation = errors.New("isec: adjacent layers must have positive separation")

	// ErrInvalidRecord indicates a layer record with a non-positive geometric
	// or material property.
	ErrInvalidRecord = errors.New("isec: invalid layer record")

	// ErrUnknownKind indicates a layer kind outside storage, source and sink.
	ErrUnknownKind = errors.New("isec: unknown layer kind")

	// ErrLayerAlreadyStacked indicates a layer that already belongs to a stack.
	ErrLayerAlreadyStacked = errors.New("isec: layer already belongs to a stack")

	// ErrStackSealed indicates a stacking attempt after a run has started.
	ErrStackSealed = errors.New("isec: stack is sealed for simulation")
)

// StackError wraps a failed stacking attempt with the position and families
// involved.
type StackError struct {
	Index    int
	Material string
	Family   string
	Existing string
	Wrapped  error
}

func (e *StackError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("stack layer %d (%s): %v: %s can't be stacked on %s",
			e.Index, e.Material, e.Wrapped, e.Family, e.Existing)
	}
	return fmt.Sprintf("stack layer %d (%s): %v", e.Index, e.Material, e.Wrapped)
}

func (e *StackError) Unwrap() error {
	return e.Wrapped
}
