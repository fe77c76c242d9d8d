package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is a scalar function sampled on the interior points of a grid.
type Field []float64

func NewField(n int) Field {
	return make(Field, n)
}

func (f Field) Len() int {
	return len(f)
}

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (f Field) Norm() float64 {
	if len(f) == 0 {
		return 0
	}
	return floats.Norm(f, 2)
}

// Sub returns f - other. Lengths must match.
func (f Field) Sub(other Field) (Field, error) {
	if len(f) != len(other) {
		return nil, ErrDimensionMismatch
	}
	result := make(Field, len(f))
	floats.SubTo(result, f, other)
	return result, nil
}

func (f Field) Scale(factor float64) Field {
	result := f.Clone()
	floats.Scale(factor, result)
	return result
}

// Equal reports exact element-wise equality.
func (f Field) Equal(other Field) bool {
	return floats.Equal(f, other)
}
