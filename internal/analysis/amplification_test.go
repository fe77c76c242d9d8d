package analysis_test

import (
	"errors"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/inverse"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

var _ = Describe("NoiseAmplification", func() {
	const n = 20

	var (
		op     *operator.Operator
		direct *inverse.Direct
	)

	BeforeEach(func() {
		op = laplacian(n, 2, operator.StencilKron)
		var err error
		direct, err = inverse.NewDirect(op)
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a property of the operator, not of the noise level", func() {
		levels := analysis.LogSpace(1e-6, 1e-2, 8)
		Expect(levels).To(HaveLen(8))
		Expect(levels[0]).To(BeNumerically("~", 1e-6, 1e-18))
		Expect(levels[7]).To(BeNumerically("~", 1e-2, 1e-14))

		points, err := analysis.NoiseAmplification(direct, n*n, levels, 3, rand.NewPCG(9, 9))
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(8))

		lo, hi := math.Inf(1), 0.0
		for _, p := range points {
			Expect(p.Draws).To(Equal(3))
			lo = math.Min(lo, p.Factor)
			hi = math.Max(hi, p.Factor)
		}
		Expect(hi / lo).To(BeNumerically("<", 1.25))
	})

	It("is bounded by the extreme singular values", func() {
		want := exactKron(n)
		sMin, sMax := math.Abs(want[0]), math.Abs(want[len(want)-1])

		points, err := analysis.NoiseAmplification(direct, n*n, []float64{1e-4}, 5, rand.NewPCG(1, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].Factor).To(BeNumerically("<=", (1/sMin)*(1+1e-9)))
		Expect(points[0].Factor).To(BeNumerically(">=", (1/sMax)*(1-1e-9)))
		Expect(points[0].StdDev).To(BeNumerically(">=", 0))
	})

	It("rejects non-positive levels and zero draws", func() {
		_, err := analysis.NoiseAmplification(direct, n*n, []float64{0}, 1, rand.NewPCG(1, 1))
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
		_, err = analysis.NoiseAmplification(direct, n*n, []float64{1e-3}, 0, rand.NewPCG(1, 1))
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})
})
