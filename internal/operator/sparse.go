package operator

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/numeric"
)

// Operator is a sparse matrix in compressed row storage. It is never mutated
// after construction.
type Operator struct {
	csr *sparse.CSR
}

var _ mat.Matrix = (*Operator)(nil)

type entry struct {
	j int
	v float64
}

// assemble accumulates entries into a dictionary of keys, summing repeated
// (i, j) pairs, and compresses the result.
func assemble(r, c int, fill func(add func(i, j int, v float64))) *Operator {
	dok := sparse.NewDOK(r, c)
	fill(func(i, j int, v float64) {
		if v != 0 {
			dok.Set(i, j, dok.At(i, j)+v)
		}
	})
	return &Operator{csr: dok.ToCSR()}
}

// rows groups the stored entries by row.
func (o *Operator) rows() [][]entry {
	r, _ := o.csr.Dims()
	out := make([][]entry, r)
	o.csr.DoNonZero(func(i, j int, v float64) {
		out[i] = append(out[i], entry{j, v})
	})
	return out
}

// Identity returns the n×n identity.
func Identity(n int) *Operator {
	return assemble(n, n, func(add func(i, j int, v float64)) {
		for i := 0; i < n; i++ {
			add(i, i, 1)
		}
	})
}

// Tridiag returns the n×n matrix with constant diagonal d and off-diagonals e.
func Tridiag(n int, e, d float64) *Operator {
	return assemble(n, n, func(add func(i, j int, v float64)) {
		for i := 0; i < n; i++ {
			add(i, i, d)
			if i > 0 {
				add(i, i-1, e)
			}
			if i < n-1 {
				add(i, i+1, e)
			}
		}
	})
}

// Kron returns the Kronecker product a⊗b.
func Kron(a, b *Operator) *Operator {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return assemble(ar*br, ac*bc, func(add func(i, j int, v float64)) {
		a.csr.DoNonZero(func(ai, aj int, av float64) {
			b.csr.DoNonZero(func(bi, bj int, bv float64) {
				add(ai*br+bi, aj*bc+bj, av*bv)
			})
		})
	})
}

// Add returns a+b.
func Add(a, b *Operator) (*Operator, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return nil, numeric.ErrDimensionMismatch
	}
	return assemble(ar, ac, func(add func(i, j int, v float64)) {
		a.csr.DoNonZero(add)
		b.csr.DoNonZero(add)
	}), nil
}

// Scale returns s·o.
func (o *Operator) Scale(s float64) *Operator {
	r, c := o.Dims()
	return assemble(r, c, func(add func(i, j int, v float64)) {
		o.csr.DoNonZero(func(i, j int, v float64) {
			add(i, j, s*v)
		})
	})
}

// Shift returns o - σI.
func (o *Operator) Shift(sigma float64) (*Operator, error) {
	r, c := o.Dims()
	if r != c {
		return nil, numeric.ErrDimensionMismatch
	}
	return Add(o, Identity(r).Scale(-sigma))
}

func (o *Operator) Dims() (r, c int) {
	return o.csr.Dims()
}

func (o *Operator) At(i, j int) float64 {
	return o.csr.At(i, j)
}

func (o *Operator) T() mat.Matrix {
	return mat.Transpose{Matrix: o}
}

// NNZ returns the number of stored entries.
func (o *Operator) NNZ() int {
	return o.csr.NNZ()
}

// MulVecTo computes dst = o·x, or oᵀ·x when trans is set.
func (o *Operator) MulVecTo(dst []float64, trans bool, x []float64) {
	r, c := o.Dims()
	if trans {
		r, c = c, r
	}
	if len(x) != c || len(dst) != r {
		panic(mat.ErrShape)
	}
	for i := range dst {
		dst[i] = 0
	}
	o.csr.DoNonZero(func(i, j int, v float64) {
		if trans {
			dst[j] += v * x[i]
		} else {
			dst[i] += v * x[j]
		}
	})
}

// Apply returns o·f as a new field.
func (o *Operator) Apply(f numeric.Field) (numeric.Field, error) {
	r, c := o.Dims()
	if len(f) != c {
		return nil, numeric.ErrDimensionMismatch
	}
	dst := numeric.NewField(r)
	o.MulVecTo(dst, false, f)
	return dst, nil
}

// Bandwidth returns max |i-j| over stored entries.
func (o *Operator) Bandwidth() int {
	bw := 0
	o.csr.DoNonZero(func(i, j int, _ float64) {
		bw = max(bw, abs(i-j))
	})
	return bw
}

func (o *Operator) IsSymmetric(tol float64) bool {
	r, c := o.Dims()
	if r != c {
		return false
	}
	sym := true
	o.csr.DoNonZero(func(i, j int, v float64) {
		if sym && math.Abs(v-o.At(j, i)) > tol {
			sym = false
		}
	})
	return sym
}

func (o *Operator) Diag() []float64 {
	r, c := o.Dims()
	d := make([]float64, min(r, c))
	o.csr.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] = v
		}
	})
	return d
}

// Gershgorin returns the interval [lo, hi] holding every eigenvalue of a
// square operator: the union of the discs d_i ± Σ_{j≠i} |a_ij|.
func (o *Operator) Gershgorin() (lo, hi float64) {
	r, _ := o.Dims()
	center := make([]float64, r)
	radius := make([]float64, r)
	o.csr.DoNonZero(func(i, j int, v float64) {
		if i == j {
			center[i] = v
		} else {
			radius[i] += math.Abs(v)
		}
	})
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := range center {
		lo = math.Min(lo, center[i]-radius[i])
		hi = math.Max(hi, center[i]+radius[i])
	}
	return lo, hi
}

// SymBand copies a symmetric operator into banded storage.
func (o *Operator) SymBand() (*mat.SymBandDense, error) {
	if !o.IsSymmetric(0) {
		return nil, numeric.ErrNotSymmetric
	}
	n, _ := o.Dims()
	b := mat.NewSymBandDense(n, o.Bandwidth(), nil)
	o.csr.DoNonZero(func(i, j int, v float64) {
		if j >= i {
			b.SetSymBand(i, j, v)
		}
	})
	return b, nil
}

// Gram returns oᵀo + λI in banded storage.
func (o *Operator) Gram(lambda float64) *mat.SymBandDense {
	_, n := o.Dims()
	k := min(2*o.Bandwidth(), n-1)
	g := mat.NewSymBandDense(n, k, nil)
	for _, row := range o.rows() {
		for p, a := range row {
			for _, b := range row[p:] {
				i, j := a.j, b.j
				if i > j {
					i, j = j, i
				}
				g.SetSymBand(i, j, g.At(i, j)+a.v*b.v)
			}
		}
	}
	if lambda != 0 {
		for i := 0; i < n; i++ {
			g.SetSymBand(i, i, g.At(i, i)+lambda)
		}
	}
	return g
}

func (o *Operator) Dense() *mat.Dense {
	r, c := o.Dims()
	d := mat.NewDense(r, c, nil)
	o.csr.DoNonZero(d.Set)
	return d
}

func (o *Operator) SymDense() (*mat.SymDense, error) {
	if !o.IsSymmetric(0) {
		return nil, numeric.ErrNotSymmetric
	}
	n, _ := o.Dims()
	s := mat.NewSymDense(n, nil)
	o.csr.DoNonZero(func(i, j int, v float64) {
		if j >= i {
			s.SetSym(i, j, v)
		}
	})
	return s, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
