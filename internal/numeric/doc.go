// Package numeric provides the shared primitives of the inverse-problem lab.
//
// The package defines the values that flow between pipeline stages and the
// error taxonomy every stage reports through:
//
//   - [Field]: a dense vector sampled on a grid (true, source, noisy or reconstructed)
//   - [ConfigError]: rejected configuration, caught before any solve
//   - [SolveError]: singular or near-singular system in a direct solve
//   - [ConvergenceError]: partial eigen/singular solver ran out of iterations
//
// # Example
//
//	err := inverse.Solve(f)
//	if errors.Is(err, numeric.ErrSingular) {
//	    // operator could not be factorized
//	}
//
// # Thread Safety
//
// Fields are plain slices. Stages never mutate the fields they receive, so a
// Field may be shared read-only between goroutines.
package numeric
