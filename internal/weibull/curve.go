package weibull

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultPoints is the sample length used for on-screen plots.
const DefaultPoints = 100

// Curve is an evaluated plot sample: X strictly increasing from 0 to the
// truncation point, Y the matching function values. Plotting and export both
// consume this type, so the two can never disagree.
type Curve struct {
	Type CurveType `json:"type"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Generate evaluates numPoints evenly spaced samples of the requested curve
// on [0, x_max]. The output is a pure function of its arguments: the same
// (shape, scale, curveType, numPoints) always yields identical points.
func Generate(shape, scale float64, curveType CurveType, numPoints int) (Curve, error) {
	if ok, msg := ValidateParameters(shape, scale); !ok {
		return Curve{}, fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	if numPoints < 2 {
		return Curve{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrValidation, numPoints)
	}
	if _, err := ParseCurveType(string(curveType)); err != nil {
		return Curve{}, err
	}

	xMax := TruncationPoint(shape, scale, curveType)
	xs := floats.Span(make([]float64, numPoints), 0, xMax)
	ys := make([]float64, numPoints)

	var fn func(x, shape, scale float64) float64
	switch curveType {
	case CurveCDF:
		fn = CDF
	case CurveHazard:
		fn = Hazard
	default:
		fn = PDF
	}
	for i, x := range xs {
		ys[i] = fn(x, shape, scale)
	}
	return Curve{Type: curveType, X: xs, Y: ys}, nil
}
