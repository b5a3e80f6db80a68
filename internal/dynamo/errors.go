package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrIndexOutOfRange indicates access to a body index >= the ensemble size.
	// It is raised as a panic value since it is a caller contract violation.
	ErrIndexOutOfRange = errors.New("dynamo: body index out of range")

	// ErrInvalidState indicates a position, velocity or mass became NaN or Inf,
	// typically after two bodies coincided.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrEmptyEnsemble indicates an ensemble with no bodies.
	ErrEmptyEnsemble = errors.New("dynamo: ensemble has no bodies")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
