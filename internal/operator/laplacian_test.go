package operator_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

func build(n, dim int, st operator.Stencil) *operator.Operator {
	g, err := grid.New(n, dim)
	Expect(err).NotTo(HaveOccurred())
	op, err := operator.Build(g, st)
	Expect(err).NotTo(HaveOccurred())
	return op
}

var _ = Describe("Build", func() {
	DescribeTable("is symmetric and negative-definite",
		func(n, dim int, st operator.Stencil) {
			op := build(n, dim, st)
			Expect(op.IsSymmetric(0)).To(BeTrue())

			sym, err := op.SymDense()
			Expect(err).NotTo(HaveOccurred())

			var eig mat.EigenSym
			Expect(eig.Factorize(sym, false)).To(BeTrue())
			for _, v := range eig.Values(nil) {
				Expect(v).To(BeNumerically("<", 0))
			}
		},
		Entry("2D kron N=2", 2, 2, operator.StencilKron),
		Entry("2D kron N=3", 3, 2, operator.StencilKron),
		Entry("2D kron N=8", 8, 2, operator.StencilKron),
		Entry("2D standard N=2", 2, 2, operator.StencilStandard),
		Entry("2D standard N=7", 7, 2, operator.StencilStandard),
		Entry("1D standard N=10", 10, 1, operator.StencilStandard),
	)

	It("has the Kronecker-sum stencil in 2D", func() {
		n := 4
		op := build(n, 2, operator.StencilKron)
		h := 1.0 / float64(n+1)
		inv := 1 / (h * h)

		r, c := op.Dims()
		Expect(r).To(Equal(n * n))
		Expect(c).To(Equal(n * n))
		Expect(op.Bandwidth()).To(Equal(n))

		k := 1*n + 1
		Expect(op.At(k, k)).To(BeNumerically("~", -8*inv, 1e-9))
		Expect(op.At(k, k+1)).To(BeNumerically("~", inv, 1e-9))
		Expect(op.At(k, k-1)).To(BeNumerically("~", inv, 1e-9))
		Expect(op.At(k, k+n)).To(BeNumerically("~", inv, 1e-9))
		Expect(op.At(k, k-n)).To(BeNumerically("~", inv, 1e-9))
		Expect(op.At(k, k+2)).To(BeZero())

		// no coupling across the end of a grid row
		Expect(op.At(n-1, n)).To(BeZero())
		Expect(op.NNZ()).To(Equal(5*n*n - 4*n))
	})

	It("uses -4/h² on the diagonal for the standard stencil", func() {
		op := build(5, 2, operator.StencilStandard)
		h := 1.0 / 6
		for _, d := range op.Diag() {
			Expect(d).To(BeNumerically("~", -4/(h*h), 1e-9))
		}
	})

	It("agrees with its dense copy", func() {
		op := build(3, 2, operator.StencilStandard)
		d := op.Dense()
		Expect(mat.Equal(d, op)).To(BeTrue())
		Expect(mat.Equal(d.T(), op.T())).To(BeTrue())
	})

	It("multiplies like the dense matrix", func() {
		op := build(4, 2, operator.StencilKron)
		x := make([]float64, 16)
		for i := range x {
			x[i] = math.Sin(float64(i))
		}
		got := make([]float64, 16)
		op.MulVecTo(got, false, x)

		var want mat.VecDense
		want.MulVec(op.Dense(), mat.NewVecDense(16, x))
		for i := range got {
			Expect(got[i]).To(BeNumerically("~", want.AtVec(i), 1e-8))
		}
	})

	It("builds the Gram matrix with the Tikhonov shift", func() {
		op := build(3, 2, operator.StencilStandard)
		lambda := 0.25
		g := op.Gram(lambda)

		var want mat.Dense
		want.Mul(op.Dense().T(), op.Dense())
		n, _ := want.Dims()
		for i := 0; i < n; i++ {
			want.Set(i, i, want.At(i, i)+lambda)
		}
		Expect(mat.EqualApprox(g, &want, 1e-6)).To(BeTrue())
	})

	It("round-trips through banded storage", func() {
		op := build(4, 2, operator.StencilKron)
		b, err := op.SymBand()
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.Equal(b, op)).To(BeTrue())
	})

	It("rejects an unknown stencil", func() {
		g, _ := grid.New(4, 2)
		_, err := operator.Build(g, operator.Stencil("nine-point"))
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects a degenerate grid", func() {
		_, err := operator.Build(grid.Grid{N: 1, Dim: 2}, operator.StencilKron)
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Kron", func() {
	It("of identities is the identity", func() {
		k := operator.Kron(operator.Identity(2), operator.Identity(3))
		Expect(mat.Equal(k, mat.NewDiagDense(6, []float64{1, 1, 1, 1, 1, 1}))).To(BeTrue())
	})

	It("matches the dense Kronecker product", func() {
		a := operator.Tridiag(3, 1, -2)
		b := operator.Tridiag(2, 0.5, 3)
		k := operator.Kron(a, b)

		var want mat.Dense
		want.Kronecker(a.Dense(), b.Dense())
		Expect(mat.Equal(k, &want)).To(BeTrue())
	})
})

var _ = Describe("Add", func() {
	It("sums overlapping entries", func() {
		sum, err := operator.Add(operator.Tridiag(4, 1, -2), operator.Identity(4))
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Diag()).To(Equal([]float64{-1, -1, -1, -1}))
		Expect(sum.At(0, 1)).To(Equal(1.0))
		Expect(sum.NNZ()).To(Equal(10))
	})

	It("rejects mismatched shapes", func() {
		_, err := operator.Add(operator.Identity(3), operator.Identity(4))
		Expect(errors.Is(err, numeric.ErrDimensionMismatch)).To(BeTrue())
	})

	It("shifts the diagonal", func() {
		op := build(3, 2, operator.StencilKron)
		shifted, err := op.Shift(-2.5)
		Expect(err).NotTo(HaveOccurred())
		n, _ := op.Dims()
		for i := 0; i < n; i++ {
			Expect(shifted.At(i, i)).To(BeNumerically("~", op.At(i, i)+2.5, 1e-9))
			if i+1 < n {
				Expect(shifted.At(i, i+1)).To(Equal(op.At(i, i+1)))
			}
		}
	})
})

var _ = Describe("Gershgorin", func() {
	DescribeTable("encloses the spectrum",
		func(n, dim int, st operator.Stencil, lo, hi float64) {
			op := build(n, dim, st)
			h := 1.0 / float64(n+1)
			gl, gh := op.Gershgorin()
			Expect(gl).To(BeNumerically("~", lo/(h*h), 1e-6))
			Expect(gh).To(BeNumerically("~", hi/(h*h), 1e-6))

			sym, _ := op.SymDense()
			var eig mat.EigenSym
			Expect(eig.Factorize(sym, false)).To(BeTrue())
			for _, v := range eig.Values(nil) {
				Expect(v).To(BeNumerically(">", gl))
				Expect(v).To(BeNumerically("<", gh))
			}
		},
		Entry("2D kron", 6, 2, operator.StencilKron, -12.0, -4.0),
		Entry("2D standard", 6, 2, operator.StencilStandard, -8.0, 0.0),
		Entry("1D standard", 9, 1, operator.StencilStandard, -4.0, 0.0),
	)
})
