package inverse

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

var errNotPositiveDefinite = errors.New("matrix is not positive definite")

// Solver maps a right-hand side to a reconstruction.
type Solver interface {
	Solve(f numeric.Field) (numeric.Field, error)
}

// Direct solves L·u = f. L must be symmetric negative-definite, as every
// Dirichlet Laplacian is; -L is factorized.
type Direct struct {
	n    int
	chol mat.BandCholesky
}

func NewDirect(op *operator.Operator) (*Direct, error) {
	neg, err := op.Scale(-1).SymBand()
	if err != nil {
		return nil, &numeric.SolveError{Op: "direct", Wrapped: err}
	}
	d := &Direct{}
	d.n, _ = op.Dims()
	if err := factorize(&d.chol, neg, "direct"); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Direct) Solve(f numeric.Field) (numeric.Field, error) {
	if len(f) != d.n {
		return nil, numeric.ErrDimensionMismatch
	}
	u, err := solve(&d.chol, f.Scale(-1), "direct")
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Cond returns the condition number estimate of the factorized operator.
func (d *Direct) Cond() float64 {
	return d.chol.Cond()
}

// Regularized solves (LᵀL + λI)·u = Lᵀf.
type Regularized struct {
	op     *operator.Operator
	lambda float64
	chol   mat.BandCholesky
}

func NewRegularized(op *operator.Operator, lambda float64) (*Regularized, error) {
	if lambda < 0 {
		return nil, &numeric.ConfigError{Field: "lambda_reg", Value: lambda, Reason: "must be >= 0"}
	}
	r := &Regularized{op: op, lambda: lambda}
	if err := factorize(&r.chol, op.Gram(lambda), "regularized"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Regularized) Lambda() float64 {
	return r.lambda
}

func (r *Regularized) Solve(f numeric.Field) (numeric.Field, error) {
	m, n := r.op.Dims()
	if len(f) != m {
		return nil, numeric.ErrDimensionMismatch
	}
	b := numeric.NewField(n)
	r.op.MulVecTo(b, true, f)
	return solve(&r.chol, b, "regularized")
}

func factorize(chol *mat.BandCholesky, a mat.SymBanded, op string) error {
	if ok := chol.Factorize(a); !ok {
		return &numeric.SolveError{Op: op, Wrapped: errNotPositiveDefinite}
	}
	if c := chol.Cond(); c > mat.ConditionTolerance {
		return &numeric.SolveError{Op: op, Cond: c, Wrapped: mat.Condition(c)}
	}
	return nil
}

func solve(chol *mat.BandCholesky, b numeric.Field, op string) (numeric.Field, error) {
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, &numeric.SolveError{Op: op, Cond: float64(cond), Wrapped: err}
		}
		return nil, fmt.Errorf("%s solve: %w", op, err)
	}
	u := numeric.Field(x.RawVector().Data)
	if !u.IsValid() {
		return nil, &numeric.SolveError{Op: op, Wrapped: errors.New("solution contains NaN or Inf")}
	}
	return u, nil
}
