package analysis

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

// Which picks the end of the spectrum.
type Which int

const (
	Smallest Which = iota
	Largest
)

func (w Which) String() string {
	if w == Largest {
		return "largest"
	}
	return "smallest"
}

type Method string

const (
	MethodAuto     Method = "auto"
	MethodDense    Method = "dense"
	MethodSubspace Method = "subspace"
)

func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "", MethodAuto:
		return MethodAuto, nil
	case MethodDense, MethodSubspace:
		return Method(name), nil
	}
	return "", &numeric.ConfigError{Field: "spectral.method", Value: name, Reason: "want auto, dense or subspace"}
}

type Options struct {
	Method     Method
	Tol        float64
	MaxIter    int
	Oversample int
	// DenseLimit is the largest M for which auto picks the dense method.
	DenseLimit int
	// Src seeds the starting block of the subspace method.
	Src rand.Source
}

func DefaultOptions() Options {
	return Options{
		Method:     MethodAuto,
		Tol:        1e-9,
		MaxIter:    500,
		Oversample: 10,
		DenseLimit: 2500,
	}
}

func (o Options) resolve(m, k int) Method {
	if o.Method != MethodAuto && o.Method != "" {
		return o.Method
	}
	if m <= o.DenseLimit || 2*(k+o.Oversample) >= m {
		return MethodDense
	}
	return MethodSubspace
}

// Spectrum holds eigenpairs ordered by ascending |λ|; column i of Vectors
// belongs to Values[i].
type Spectrum struct {
	Values     []float64
	Vectors    *mat.Dense
	Method     Method
	Iterations int
}

func (s *Spectrum) Len() int {
	return len(s.Values)
}

// Eigen computes k eigenpairs of the symmetric operator at the requested
// end of the spectrum.
func Eigen(op *operator.Operator, k int, which Which, opts Options) (*Spectrum, error) {
	m, _ := op.Dims()
	if k < 1 || k > m {
		return nil, &numeric.ConfigError{Field: "num_modes", Value: k, Reason: "must be in [1, M]"}
	}
	if !op.IsSymmetric(0) {
		return nil, numeric.ErrNotSymmetric
	}

	switch opts.resolve(m, k) {
	case MethodDense:
		return denseEigen(op, k, which)
	case MethodSubspace:
		return subspaceEigen(op, k, which, opts)
	default:
		return nil, &numeric.ConfigError{Field: "spectral.method", Value: opts.Method, Reason: "unknown method"}
	}
}

func denseEigen(op *operator.Operator, k int, which Which) (*Spectrum, error) {
	sym, err := op.SymDense()
	if err != nil {
		return nil, err
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, &numeric.ConvergenceError{Requested: k}
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	idx := byMagnitude(values)
	if which == Largest {
		idx = idx[len(idx)-k:]
	} else {
		idx = idx[:k]
	}
	return collect(values, &vecs, idx, MethodDense, 1), nil
}

// byMagnitude returns the indices of values sorted by ascending |v|.
func byMagnitude(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(values[idx[a]]) < math.Abs(values[idx[b]])
	})
	return idx
}

func collect(values []float64, vecs mat.Matrix, idx []int, method Method, iters int) *Spectrum {
	m, _ := vecs.Dims()
	s := &Spectrum{
		Values:     make([]float64, len(idx)),
		Vectors:    mat.NewDense(m, len(idx), nil),
		Method:     method,
		Iterations: iters,
	}
	for c, i := range idx {
		s.Values[c] = values[i]
		for r := 0; r < m; r++ {
			s.Vectors.Set(r, c, vecs.At(r, i))
		}
	}
	return s
}

const (
	// shiftGap places the shift this far outside the Gershgorin interval,
	// relative to the interval's scale.
	shiftGap = 1e-6
	// maxRedraws bounds the random restarts of a collapsed basis column.
	maxRedraws = 4
)

// subspace runs block subspace iteration on (op - σI)⁻¹, with Rayleigh–Ritz
// on op after every sweep.
type subspace struct {
	op    *operator.Operator
	m     int
	rng   *rand.Rand
	apply func(dst, src []float64) error
}

// shift picks σ just outside the Gershgorin end of op nearest the wanted
// eigenvalues, so that op - σI is definite and its inverse amplifies them.
// ok is false when the interval straddles zero.
func shift(op *operator.Operator, which Which) (sigma float64, ok bool) {
	lo, hi := op.Gershgorin()
	if lo < 0 && hi > 0 {
		return 0, false
	}
	scale := math.Max(hi-lo, math.Max(math.Abs(lo), math.Abs(hi)))
	if scale == 0 {
		scale = 1
	}
	gap := shiftGap * scale

	// near is the end of smaller magnitude.
	nearHigh := hi <= 0
	if (which == Smallest) == nearHigh {
		return hi + gap, true
	}
	return lo - gap, true
}

// shiftInvert factorizes op - σI and returns x ↦ ±(op - σI)⁻¹x. The sign
// does not change the iterated subspace.
func shiftInvert(op *operator.Operator, sigma float64) (func(dst, x []float64) error, error) {
	shifted, err := op.Shift(sigma)
	if err != nil {
		return nil, err
	}
	lo, _ := op.Gershgorin()
	if sigma < lo {
		// op - σI is positive definite; Direct wants the negative.
		shifted = shifted.Scale(-1)
	}
	direct, err := inverse.NewDirect(shifted)
	if err != nil {
		return nil, err
	}
	return func(dst, x []float64) error {
		u, err := direct.Solve(x)
		if err != nil {
			return err
		}
		copy(dst, u)
		return nil
	}, nil
}

func subspaceEigen(op *operator.Operator, k int, which Which, opts Options) (*Spectrum, error) {
	m, _ := op.Dims()
	p := min(m, k+max(opts.Oversample, 1))
	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultOptions().MaxIter
	}
	tol := opts.Tol
	if tol <= 0 {
		tol = DefaultOptions().Tol
	}
	src := opts.Src
	if src == nil {
		src = rand.NewPCG(1, 2)
	}

	s := &subspace{op: op, m: m, rng: rand.New(src)}
	sigma, definite := shift(op, which)
	switch {
	case definite:
		apply, err := shiftInvert(op, sigma)
		if err != nil {
			return nil, err
		}
		s.apply = apply
	case which == Smallest:
		apply, err := shiftInvert(op, 0)
		if err != nil {
			return nil, err
		}
		s.apply = apply
	default:
		s.apply = func(dst, x []float64) error {
			op.MulVecTo(dst, false, x)
			return nil
		}
	}

	q := make([][]float64, p)
	for j := range q {
		q[j] = s.random()
	}
	if err := s.orthonormalize(q); err != nil {
		return nil, err
	}

	w := make([][]float64, p)
	lq := make([][]float64, p)
	for j := range w {
		w[j] = make([]float64, m)
		lq[j] = make([]float64, m)
	}

	worst := math.Inf(1)
	converged := 0
	for it := 1; it <= maxIter; it++ {
		for j := range q {
			if err := s.apply(w[j], q[j]); err != nil {
				return nil, err
			}
		}
		q, w = w, q
		if err := s.orthonormalize(q); err != nil {
			return nil, err
		}

		theta, x, lx, err := s.rayleighRitz(q, lq)
		if err != nil {
			return nil, err
		}

		order := byMagnitude(theta)
		if which == Largest {
			for a, b := 0, len(order)-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
		}

		worst, converged = 0, 0
		r := make([]float64, m)
		for _, i := range order[:k] {
			floats.AddScaledTo(r, lx[i], -theta[i], x[i])
			res := floats.Norm(r, 2) / math.Max(math.Abs(theta[i]), math.SmallestNonzeroFloat64)
			if res <= tol {
				converged++
			}
			worst = math.Max(worst, res)
		}

		if converged == k {
			wanted := order[:k]
			if which == Largest {
				sort.SliceStable(wanted, func(a, b int) bool {
					return math.Abs(theta[wanted[a]]) < math.Abs(theta[wanted[b]])
				})
			}
			vecs := mat.NewDense(m, p, nil)
			for j := 0; j < p; j++ {
				vecs.SetCol(j, x[j])
			}
			return collect(theta, vecs, wanted, MethodSubspace, it), nil
		}

		for j := range q {
			copy(q[j], x[order[j]])
		}
	}

	return nil, &numeric.ConvergenceError{
		Requested:  k,
		Converged:  converged,
		Iterations: maxIter,
		Residual:   worst,
	}
}

func (s *subspace) random() []float64 {
	v := make([]float64, s.m)
	for i := range v {
		v[i] = s.rng.NormFloat64()
	}
	return v
}

// orthonormalize applies modified Gram–Schmidt twice per column. Columns
// that collapse are replaced by fresh random directions; a column that
// still cannot be extended after a few draws ends the iteration.
func (s *subspace) orthonormalize(q [][]float64) error {
	for i := range q {
		for attempt := 0; ; attempt++ {
			before := floats.Norm(q[i], 2)
			for pass := 0; pass < 2; pass++ {
				for j := 0; j < i; j++ {
					floats.AddScaled(q[i], -floats.Dot(q[j], q[i]), q[j])
				}
			}
			after := floats.Norm(q[i], 2)
			if after > 1e-10*before && after > 0 {
				floats.Scale(1/after, q[i])
				break
			}
			if attempt >= maxRedraws {
				return &numeric.ConvergenceError{Requested: len(q), Converged: i}
			}
			q[i] = s.random()
		}
	}
	return nil
}

// rayleighRitz projects op onto span(q) and returns the Ritz values, Ritz
// vectors x and their images op·x.
func (s *subspace) rayleighRitz(q, lq [][]float64) (theta []float64, x, lx [][]float64, err error) {
	p := len(q)
	for j := range q {
		s.op.MulVecTo(lq[j], false, q[j])
	}
	h := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := 0.5 * (floats.Dot(q[i], lq[j]) + floats.Dot(q[j], lq[i]))
			h.SetSym(i, j, v)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(h, true); !ok {
		return nil, nil, nil, &numeric.ConvergenceError{Requested: p}
	}
	theta = eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	x = make([][]float64, p)
	lx = make([][]float64, p)
	for i := 0; i < p; i++ {
		x[i] = make([]float64, s.m)
		lx[i] = make([]float64, s.m)
		for j := 0; j < p; j++ {
			c := vecs.At(j, i)
			floats.AddScaled(x[i], c, q[j])
			floats.AddScaled(lx[i], c, lq[j])
		}
	}
	return theta, x, lx, nil
}
