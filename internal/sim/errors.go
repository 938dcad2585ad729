package sim

import "errors"

var (
	// ErrInvalidTimeStep indicates a non-positive or non-finite time step.
	ErrInvalidTimeStep = errors.New("sim: time step must be positive")

	// ErrInvalidSteps indicates a negative step count.
	ErrInvalidSteps = errors.New("sim: steps must not be negative")

	// ErrUnstable indicates a layer temperature became NaN or Inf.
	ErrUnstable = errors.New("sim: simulation unstable (temperature diverged)")
)
