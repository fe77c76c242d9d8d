// Package inverse recovers a field from a noisy source term, either by a
// direct solve of L·u = f or through the Tikhonov normal equations
// (LᵀL + λI)·u = Lᵀf.
//
// Both solvers factorize once, banded Cholesky in each case, and can be
// reused for any number of right-hand sides. They are safe for concurrent
// Solve calls because the factorization is only read.
package inverse
