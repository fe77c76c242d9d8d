package numeric

import (
	"errors"
	"fmt"
)

// Domain errors for the inverse-problem pipeline.
var (
	// ErrInvalidConfig indicates a parameter rejected before any solve was attempted.
	ErrInvalidConfig = errors.New("invlap: invalid configuration")

	// ErrSingular indicates a singular or numerically singular system.
	ErrSingular = errors.New("invlap: singular or near-singular system")

	// ErrNoConvergence indicates an iterative eigen/singular solver did not converge.
	ErrNoConvergence = errors.New("invlap: solver did not converge")

	// ErrDimensionMismatch indicates vectors or matrices of incompatible size.
	ErrDimensionMismatch = errors.New("invlap: dimension mismatch")

	// ErrZeroNorm indicates a reference field with zero norm.
	ErrZeroNorm = errors.New("invlap: reference field has zero norm")

	// ErrNotSymmetric indicates an operator that a symmetric method cannot accept.
	ErrNotSymmetric = errors.New("invlap: operator is not symmetric")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SolveError wraps a factorization or solve failure.
type SolveError struct {
	Op      string
	Cond    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSingular, e.Op, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", ErrSingular, e.Op)
}

func (e *SolveError) Is(target error) bool {
	return target == ErrSingular
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}

// ConvergenceError reports how far an iterative solver got. Partially
// converged pairs are discarded by the caller that returns it.
type ConvergenceError struct {
	Requested  int
	Converged  int
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: %d of %d pairs after %d iterations (max residual %.3e)",
		ErrNoConvergence, e.Converged, e.Requested, e.Iterations, e.Residual)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNoConvergence
}
