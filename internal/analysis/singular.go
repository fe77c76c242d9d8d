package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

// SingularSpectrum is a set of singular values in ascending order. Full is
// set when every singular value of the operator was computed.
type SingularSpectrum struct {
	Values []float64
	Full   bool
	Method Method
}

func (s *SingularSpectrum) Min() float64 {
	return floats.Min(s.Values)
}

func (s *SingularSpectrum) Max() float64 {
	return floats.Max(s.Values)
}

// Condition returns max/min over the computed values.
func (s *SingularSpectrum) Condition() float64 {
	return s.Max() / s.Min()
}

// SingularValues returns the k smallest and k largest singular values of
// op. When the two ends overlap, or the dense method is selected, the
// full spectrum is computed.
func SingularValues(op *operator.Operator, k int, opts Options) (*SingularSpectrum, error) {
	m, _ := op.Dims()
	if k < 1 || k > m {
		return nil, &numeric.ConfigError{Field: "num_sv", Value: k, Reason: "must be in [1, M]"}
	}

	method := opts.resolve(m, 2*k)
	if 2*k >= m || method == MethodDense || !op.IsSymmetric(0) {
		var svd mat.SVD
		if ok := svd.Factorize(op, mat.SVDNone); !ok {
			return nil, &numeric.ConvergenceError{Requested: m}
		}
		values := svd.Values(nil)
		sort.Float64s(values)
		if 2*k < m {
			values = append(values[:k:k], values[m-k:]...)
		}
		return &SingularSpectrum{Values: values, Full: true, Method: MethodDense}, nil
	}

	// For a symmetric operator the singular values are |λ|.
	sub := opts
	sub.Method = MethodSubspace
	low, err := Eigen(op, k, Smallest, sub)
	if err != nil {
		return nil, err
	}
	high, err := Eigen(op, k, Largest, sub)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, 2*k)
	for _, v := range low.Values {
		values = append(values, math.Abs(v))
	}
	for _, v := range high.Values {
		values = append(values, math.Abs(v))
	}
	sort.Float64s(values)
	return &SingularSpectrum{Values: values, Method: MethodSubspace}, nil
}

// ConditionEstimate returns the condition number estimate from k singular
// values at each end of the spectrum.
func ConditionEstimate(op *operator.Operator, k int, opts Options) (float64, *SingularSpectrum, error) {
	s, err := SingularValues(op, k, opts)
	if err != nil {
		return 0, nil, err
	}
	return s.Condition(), s, nil
}
