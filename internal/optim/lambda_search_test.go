package optim_test

import (
	"context"
	"errors"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/invlap/internal/analysis"
	"github.com/san-kum/invlap/internal/forward"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
	"github.com/san-kum/invlap/internal/optim"
)

var _ = Describe("LambdaSearch", func() {
	var p *forward.Problem

	BeforeEach(func() {
		g, err := grid.New(16, 2)
		Expect(err).NotTo(HaveOccurred())
		op, err := operator.Build(g, operator.StencilStandard)
		Expect(err).NotTo(HaveOccurred())
		p, err = forward.NewProblem(g, op, forward.SinSin{}, 1e-3, rand.NewPCG(2, 3))
		Expect(err).NotTo(HaveOccurred())
	})

	It("scores every lambda and picks the minimum", func() {
		lambdas := analysis.LogSpace(1e-6, 1e4, 11)
		res, err := optim.NewLambdaSearch(lambdas, 4).Search(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Errors).To(HaveLen(11))
		Expect(res.Residuals).To(HaveLen(11))

		for _, e := range res.Errors {
			Expect(e).To(BeNumerically(">=", res.BestError))
		}
		Expect(res.Best).To(BeNumerically("<", 1e4))
		// the heaviest weight shrinks the solution towards zero
		Expect(res.Errors[10]).To(BeNumerically(">", res.Errors[0]))
	})

	It("gives the same answer with one worker", func() {
		lambdas := []float64{1e-4, 1e-2, 1, 100}
		a, err := optim.NewLambdaSearch(lambdas, 1).Search(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		b, err := optim.NewLambdaSearch(lambdas, 0).Search(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Errors).To(Equal(b.Errors))
		Expect(a.Best).To(Equal(b.Best))
	})

	It("rejects negative and empty grids", func() {
		_, err := optim.NewLambdaSearch([]float64{1, -1}, 2).Search(context.Background(), p)
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
		_, err = optim.NewLambdaSearch(nil, 2).Search(context.Background(), p)
		Expect(errors.Is(err, numeric.ErrInvalidConfig)).To(BeTrue())
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := optim.NewLambdaSearch([]float64{1, 2, 3}, 1).Search(ctx, p)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
