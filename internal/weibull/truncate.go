package weibull

import "math"

const (
	cdfCoverage  = 0.9999
	pdfThreshold = 1e-4
	pdfTolerance = 0.01
	pdfSpan      = 10.0
	maxBisection = 1500
)

// TruncationPoint returns the finite upper x-bound past which the curve is
// visually negligible, so a complete plot can be drawn for any valid
// parameters.
//
// CDF curves cut at 99.99% cumulative probability, solved in closed form.
// Hazard curves have no natural tail; 3λ is the display convention. PDF
// curves cut where the density drops below 1e-4, located by bisection over
// [0, 10λ] to within 0.01.
func TruncationPoint(shape, scale float64, curveType CurveType) float64 {
	switch curveType {
	case CurveCDF:
		return scale * math.Pow(-math.Log(1-cdfCoverage), 1/shape)
	case CurveHazard:
		return scale * 3
	default:
		return pdfCutoff(shape, scale)
	}
}

// pdfCutoff bisects for the largest x in [0, 10λ] with density above the
// threshold. When the density at 10λ is still above the threshold the search
// collapses to the right bound; when the whole range is below it, to the
// left. The iteration cap keeps the loop bounded for any scale.
func pdfCutoff(shape, scale float64) float64 {
	left, right := 0.0, scale*pdfSpan
	for i := 0; i < maxBisection && right-left > pdfTolerance; i++ {
		mid := (left + right) / 2
		if PDF(mid, shape, scale) > pdfThreshold {
			left = mid
		} else {
			right = mid
		}
	}
	return right
}
