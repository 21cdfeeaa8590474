package slime

import (
	"errors"
	"fmt"
)

// Domain errors for kernel operations.
var (
	// ErrConfig indicates invalid construction arguments. Nothing is allocated.
	ErrConfig = errors.New("slime: invalid configuration")

	// ErrUnknownParameter indicates an update or adjustment naming a key the
	// parameter set does not have.
	ErrUnknownParameter = errors.New("slime: unknown parameter")

	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("slime: parameter out of valid bounds")

	// ErrDiverged indicates a NaN or Inf appeared in a field.
	ErrDiverged = errors.New("slime: simulation diverged (NaN or Inf detected)")
)

// ConfigError reports which construction argument was rejected.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("slime: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// UnknownParameterError names the key that was not found.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("slime: unknown parameter %q", e.Name)
}

func (e *UnknownParameterError) Unwrap() error { return ErrUnknownParameter }

// BoundsError reports a parameter value outside [Min, Max].
type BoundsError struct {
	Name     string
	Value    float64
	Min, Max float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("slime: parameter %s=%g outside [%g, %g]", e.Name, e.Value, e.Min, e.Max)
}

func (e *BoundsError) Unwrap() error { return ErrParameterBounds }

// SimulationDivergedError wraps ErrDiverged with the offending cell.
type SimulationDivergedError struct {
	Step  int
	Grid  string
	X, Y  int
	Value float32
}

func (e *SimulationDivergedError) Error() string {
	return fmt.Sprintf("step %d: %s[%d,%d]=%v: %v", e.Step, e.Grid, e.X, e.Y, e.Value, ErrDiverged)
}

func (e *SimulationDivergedError) Unwrap() error { return ErrDiverged }
