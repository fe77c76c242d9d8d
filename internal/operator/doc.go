// Package operator builds the discrete Laplacian with Dirichlet boundary
// conditions as an immutable sparse matrix.
//
// The 2D operator is the Kronecker sum of a 1D second-difference matrix T:
//
//	L = (I⊗T + T⊗I) / h²
//
// The result implements [mat.Matrix], so it can be handed directly to gonum
// routines, and converts to the banded storage used by the direct solvers.
//
// [Interp1D] is the degenerate 1D boundary problem: the solution of u'' = 0
// is the straight line through the two boundary values, so no matrix is
// formed at all.
package operator
