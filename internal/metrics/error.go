package metrics

import (
	"github.com/san-kum/invlap/internal/numeric"
	"github.com/san-kum/invlap/internal/operator"
)

// RelativeError returns ‖uhat - utrue‖₂ / ‖utrue‖₂.
func RelativeError(uhat, utrue numeric.Field) (float64, error) {
	diff, err := uhat.Sub(utrue)
	if err != nil {
		return 0, err
	}
	ref := utrue.Norm()
	if ref == 0 {
		return 0, numeric.ErrZeroNorm
	}
	return diff.Norm() / ref, nil
}

// AmplificationFactor measures how far a reconstruction moved from the
// truth, relative to the truth.
func AmplificationFactor(utrue, urecon numeric.Field) (float64, error) {
	return RelativeError(urecon, utrue)
}

// Residual returns ‖L·u - f‖ / ‖f‖, or the absolute ‖L·u - f‖ when f is
// identically zero.
func Residual(op *operator.Operator, u, f numeric.Field) (float64, error) {
	lu, err := op.Apply(u)
	if err != nil {
		return 0, err
	}
	diff, err := lu.Sub(f)
	if err != nil {
		return 0, err
	}
	if ref := f.Norm(); ref > 0 {
		return diff.Norm() / ref, nil
	}
	return diff.Norm(), nil
}
