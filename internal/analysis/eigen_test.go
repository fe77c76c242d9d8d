package analysis_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

func laplacian(n, dim int, st operator.Stencil) *operator.Operator {
	g, err := grid.New(n, dim)
	Expect(err).NotTo(HaveOccurred())
	op, err := operator.Build(g, st)
	Expect(err).NotTo(HaveOccurred())
	return op
}

// exact1D returns the eigenvalues of the standard 1D Dirichlet Laplacian
// sorted by ascending magnitude.
func exact1D(n int) []float64 {
	h := 1.0 / float64(n+1)
	vals := make([]float64, n)
	for i := 1; i <= n; i++ {
		s := math.Sin(float64(i) * math.Pi * h / 2)
		vals[i-1] = -4 * s * s / (h * h)
	}
	return vals
}

// exactKron returns the eigenvalues of the 2D kron-stencil operator sorted
// by ascending magnitude.
func exactKron(n int) []float64 {
	h := 1.0 / float64(n+1)
	vals := make([]float64, 0, n*n)
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			v := -8 + 2*math.Cos(float64(i)*math.Pi*h) + 2*math.Cos(float64(j)*math.Pi*h)
			vals = append(vals, v/(h*h))
		}
	}
	sort.Slice(vals, func(a, b int) bool { return math.Abs(vals[a]) < math.Abs(vals[b]) })
	return vals
}

func subspaceOptions(oversample int) analysis.Options {
	opts := analysis.DefaultOptions()
	opts.Method = analysis.MethodSubspace
	opts.Oversample = oversample
	opts.Src = rand.NewPCG(3, 4)
	return opts
}

var _ = Describe("Eigen", func() {
	It("matches the analytic spectrum with the dense method", func() {
		op := laplacian(6, 2, operator.StencilKron)
		want := exactKron(6)

		opts := analysis.DefaultOptions()
		opts.Method = analysis.MethodDense
		s, err := analysis.Eigen(op, 5, analysis.Smallest, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Len()).To(Equal(5))
		for i, v := range s.Values {
			Expect(v).To(BeNumerically("~", want[i], 1e-8*math.Abs(want[i])))
		}

		s, err = analysis.Eigen(op, 3, analysis.Largest, opts)
		Expect(err).NotTo(HaveOccurred())
		for i, v := range s.Values {
			w := want[len(want)-3+i]
			Expect(v).To(BeNumerically("~", w, 1e-8*math.Abs(w)))
		}
	})

	It("finds the smallest modes by shift-invert subspace iteration", func() {
		op := laplacian(30, 1, operator.StencilStandard)
		want := exact1D(30)

		s, err := analysis.Eigen(op, 3, analysis.Smallest, subspaceOptions(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Method).To(Equal(analysis.MethodSubspace))
		for i, v := range s.Values {
			Expect(v).To(BeNumerically("~", want[i], 1e-6*math.Abs(want[i])))
		}
	})

	It("finds the largest modes by subspace iteration", func() {
		op := laplacian(20, 1, operator.StencilStandard)
		want := exact1D(20)

		s, err := analysis.Eigen(op, 2, analysis.Largest, subspaceOptions(8))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Values[0]).To(BeNumerically("~", want[18], 1e-6*math.Abs(want[18])))
		Expect(s.Values[1]).To(BeNumerically("~", want[19], 1e-6*math.Abs(want[19])))
	})

	DescribeTable("resolves both clustered ends of the kron spectrum above the dense limit",
		func(which analysis.Which) {
			n, k := 52, 6
			op := laplacian(n, 2, operator.StencilKron)
			want := exactKron(n)
			if m, _ := op.Dims(); m <= analysis.DefaultOptions().DenseLimit {
				Fail("grid does not exceed the dense limit")
			}

			opts := analysis.DefaultOptions()
			opts.Src = rand.NewPCG(5, 6)
			s, err := analysis.Eigen(op, k, which, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Method).To(Equal(analysis.MethodSubspace))
			Expect(s.Len()).To(Equal(k))

			offset := 0
			if which == analysis.Largest {
				offset = len(want) - k
			}
			for i, v := range s.Values {
				w := want[offset+i]
				Expect(v).To(BeNumerically("~", w, 1e-7*math.Abs(w)))
			}
		},
		Entry("smallest", analysis.Smallest),
		Entry("largest", analysis.Largest),
	)

	It("returns unit eigenvectors", func() {
		op := laplacian(30, 1, operator.StencilStandard)
		s, err := analysis.Eigen(op, 3, analysis.Smallest, subspaceOptions(10))
		Expect(err).NotTo(HaveOccurred())
		for j := 0; j < s.Len(); j++ {
			col := make([]float64, 30)
			for i := range col {
				col[i] = s.Vectors.At(i, j)
			}
			Expect(numeric.Field(col).Norm()).To(BeNumerically("~", 1, 1e-10))
		}
	})

	It("surfaces non-convergence and discards the partial pairs", func() {
		op := laplacian(20, 1, operator.StencilStandard)
		opts := subspaceOptions(1)
		opts.MaxIter = 1
		opts.Tol = 1e-14

		s, err := analysis.Eigen(op, 2, analysis.Largest, opts)
		Expect(s).To(BeNil())
		Expect(errors.Is(err, numeric.ErrNoConvergence)).To(BeTrue())

		var ce *numeric.ConvergenceError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Requested).To(Equal(2))
		Expect(ce.Iterations).To(Equal(1))
	})

	It("rejects a rank outside [1, M]", func() {
		op := laplacian(4, 2, operator.StencilKron)
		_, err := analysis.Eigen(op, 17, analysis.Smallest, analysis.DefaultOptions())
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
		_, err = analysis.Eigen(op, 0, analysis.Smallest, analysis.DefaultOptions())
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})

	It("parses method names", func() {
		m, err := analysis.ParseMethod("subspace")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(analysis.MethodSubspace))
		_, err = analysis.ParseMethod("arnoldi")
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})
})
