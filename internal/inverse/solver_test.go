package inverse_test

import (
	"errors"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/metrics"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

func problem(n int, st operator.Stencil, noise float64, seed uint64) *forward.Problem {
	g, err := grid.New(n, 2)
	Expect(err).NotTo(HaveOccurred())
	op, err := operator.Build(g, st)
	Expect(err).NotTo(HaveOccurred())
	p, err := forward.NewProblem(g, op, forward.SinSin{}, noise, rand.NewPCG(seed, seed))
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Direct", func() {
	It("inverts the operator on a manufactured right-hand side", func() {
		g, _ := grid.New(6, 2)
		op, _ := operator.Build(g, operator.StencilStandard)
		u := g.Sample(func(x, y float64) float64 { return x*x - y })
		f, err := op.Apply(u)
		Expect(err).NotTo(HaveOccurred())

		d, err := inverse.NewDirect(op)
		Expect(err).NotTo(HaveOccurred())
		got, err := d.Solve(f)
		Expect(err).NotTo(HaveOccurred())

		e, _ := metrics.RelativeError(got, u)
		Expect(e).To(BeNumerically("<", 1e-10))
		Expect(d.Cond()).To(BeNumerically(">", 1))
	})

	It("reports a matrix that is not negative-definite as singular", func() {
		_, err := inverse.NewDirect(operator.Tridiag(3, 1, 2))
		Expect(errors.Is(err, numeric.ErrSingular)).To(BeTrue())

		var se *numeric.SolveError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Op).To(Equal("direct"))
	})

	It("rejects a right-hand side of the wrong length", func() {
		d, err := inverse.NewDirect(operator.Tridiag(4, 1, -2))
		Expect(err).NotTo(HaveOccurred())
		_, err = d.Solve(numeric.Field{1, 2})
		Expect(errors.Is(err, numeric.ErrDimensionMismatch)).To(BeTrue())
	})
})

var _ = Describe("Regularized", func() {
	It("rejects a negative lambda", func() {
		_, err := inverse.NewRegularized(operator.Tridiag(4, 1, -2), -1e-3)
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})

	It("reports a singular normal matrix at lambda zero", func() {
		_, err := inverse.NewRegularized(operator.Tridiag(2, 1, 1), 0)
		Expect(errors.Is(err, numeric.ErrSingular)).To(BeTrue())
	})

	It("is well-posed for the same singular operator once lambda > 0", func() {
		r, err := inverse.NewRegularized(operator.Tridiag(2, 1, 1), 1e-2)
		Expect(err).NotTo(HaveOccurred())
		u, err := r.Solve(numeric.Field{1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(u.IsValid()).To(BeTrue())
	})

	It("converges to the direct solution as lambda goes to zero", func() {
		p := problem(20, operator.StencilStandard, 1e-3, 11)
		rep, err := inverse.Reconstruct(p, 1e-12)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Abs(rep.RegularizedError - rep.DirectError)).To(BeNumerically("<", 1e-8))
	})

	It("loses fidelity monotonically past the noise-optimal lambda", func() {
		p := problem(20, operator.StencilStandard, 1e-3, 5)
		prev := -1.0
		for _, lambda := range []float64{1, 10, 100, 1e3, 1e4} {
			r, err := inverse.NewRegularized(p.Operator, lambda)
			Expect(err).NotTo(HaveOccurred())
			u, err := r.Solve(p.Noisy)
			Expect(err).NotTo(HaveOccurred())
			e, err := metrics.RelativeError(u, p.True)
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(BeNumerically(">=", prev), "lambda=%g", lambda)
			prev = e
		}
	})
})

var _ = Describe("Reconstruct", func() {
	It("solves to a tiny residual while the error stays large", func() {
		p := problem(50, operator.StencilKron, 1e-3, 42)
		rep, err := inverse.Reconstruct(p, 1e-2)
		Expect(err).NotTo(HaveOccurred())

		Expect(rep.DirectResidual).To(BeNumerically("<", 1e-8))
		Expect(rep.DirectError).To(BeNumerically(">", 0.5))
		Expect(rep.RegularizedError).To(BeNumerically(">=", 0))
		Expect(rep.Direct.IsValid()).To(BeTrue())
		Expect(rep.Regularized.IsValid()).To(BeTrue())
	})

	It("recovers the field accurately with the five-point stencil", func() {
		p := problem(50, operator.StencilStandard, 1e-3, 42)
		rep, err := inverse.Reconstruct(p, 1e-2)
		Expect(err).NotTo(HaveOccurred())

		Expect(rep.DirectError).To(BeNumerically("<", 1e-2))
		Expect(rep.RegularizedError).To(BeNumerically("<", 1e-2))
		Expect(rep.Lambda).To(Equal(1e-2))
	})
})
