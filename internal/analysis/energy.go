package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/numeric"
)

// Energy is the modal energy of a field, one entry per eigenpair of the
// spectrum it was computed against, low to high frequency.
type Energy struct {
	Raw        []float64
	Normalized []float64
	// Captured is the share of ‖u‖² that lies in the span of the modes.
	Captured float64
}

// SpectralEnergy projects u onto the eigenvectors of s and returns the
// squared coefficients, normalized to sum to one.
func SpectralEnergy(s *Spectrum, u numeric.Field) (*Energy, error) {
	m, k := s.Vectors.Dims()
	if len(u) != m {
		return nil, numeric.ErrDimensionMismatch
	}

	var coeffs mat.VecDense
	coeffs.MulVec(s.Vectors.T(), mat.NewVecDense(m, u.Clone()))

	raw := make([]float64, k)
	for i := range raw {
		c := coeffs.AtVec(i)
		raw[i] = c * c
	}
	total := floats.Sum(raw)
	if total == 0 {
		return nil, numeric.ErrZeroNorm
	}

	norm := make([]float64, k)
	floats.ScaleTo(norm, 1/total, raw)

	e := &Energy{Raw: raw, Normalized: norm}
	if n2 := floats.Dot(u, u); n2 > 0 {
		e.Captured = total / n2
	}
	return e, nil
}

// HighFrequencyShare returns the normalized energy above mode index from.
func (e *Energy) HighFrequencyShare(from int) float64 {
	if from >= len(e.Normalized) {
		return 0
	}
	return floats.Sum(e.Normalized[max(from, 0):])
}
