// Package analysis provides conditioning and spectral diagnostics for the
// discrete Laplacian.
//
// The package includes tools for characterizing how an operator amplifies
// perturbations:
//
//   - [Eigen]: partial symmetric eigendecomposition, smallest or largest magnitude
//   - [SingularValues]: bottom-k and top-k singular values
//   - [ConditionEstimate]: ratio of the extreme singular values found
//   - [NoiseAmplification]: empirical ‖u‖/‖noise‖ through a solver, swept over noise levels
//   - [SpectralEnergy]: modal energy of a field in the eigenvector basis
//
// # Instability Detection
//
// Unstable reconstructions put excess energy into the high-index modes:
//
//	modes, _ := analysis.Eigen(op, 300, analysis.Smallest, analysis.DefaultOptions())
//	eTrue, _ := analysis.SpectralEnergy(modes, truth)
//	eDirect, _ := analysis.SpectralEnergy(modes, direct)
//
// # Partial Solvers
//
// [MethodDense] factorizes the whole matrix with LAPACK-style routines and
// truncates. [MethodSubspace] runs block subspace iteration with a
// Rayleigh–Ritz step, inverting through a banded Cholesky factor when the
// smallest eigenvalues are wanted. A run that exhausts its iterations
// returns a [numeric.ConvergenceError] and no pairs.
package analysis
