package analysis_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/operator"
)

var _ = Describe("ConditionEstimate", func() {
	It("is exact with a full-rank spectrum", func() {
		n := 5
		op := laplacian(n, 2, operator.StencilKron)
		want := exactKron(n)
		exact := math.Abs(want[len(want)-1]) / math.Abs(want[0])

		cond, s, err := analysis.ConditionEstimate(op, n*n, analysis.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Full).To(BeTrue())
		Expect(s.Values).To(HaveLen(n * n))
		Expect(cond).To(BeNumerically("~", exact, 1e-9*exact))
	})

	It("keeps both ends of the spectrum when truncated", func() {
		op := laplacian(10, 2, operator.StencilStandard)
		opts := analysis.DefaultOptions()
		opts.Method = analysis.MethodDense

		s, err := analysis.SingularValues(op, 4, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Values).To(HaveLen(8))
		for i := 1; i < len(s.Values); i++ {
			Expect(s.Values[i]).To(BeNumerically(">=", s.Values[i-1]))
		}
	})

	It("agrees with the analytic ratio through subspace iteration", func() {
		n := 30
		op := laplacian(n, 1, operator.StencilStandard)
		want := exact1D(n)
		exact := math.Abs(want[n-1]) / math.Abs(want[0])

		cond, s, err := analysis.ConditionEstimate(op, 3, subspaceOptions(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Full).To(BeFalse())
		Expect(s.Method).To(Equal(analysis.MethodSubspace))
		Expect(s.Values).To(HaveLen(6))
		Expect(cond).To(BeNumerically("~", exact, 1e-6*exact))
	})

	It("estimates the standard stencil above the dense limit", func() {
		n, k := 60, 10
		op := laplacian(n, 2, operator.StencilStandard)
		h := 1.0 / float64(n+1)
		lo := math.Sin(math.Pi * h / 2)
		hi := math.Sin(float64(n) * math.Pi * h / 2)
		exact := (hi * hi) / (lo * lo)

		cond, s, err := analysis.ConditionEstimate(op, k, analysis.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Method).To(Equal(analysis.MethodSubspace))
		Expect(s.Values).To(HaveLen(2 * k))
		Expect(cond).To(BeNumerically("~", exact, 1e-6*exact))
	})
})
