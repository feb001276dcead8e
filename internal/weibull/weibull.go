// Package weibull implements the two-parameter Weibull distribution kernel
// used across lifecurve: closed-form PDF/CDF/hazard evaluation, curve-type
// aware domain truncation, plot sample generation, and the two parameter
// estimators (three-point CDF calibration and maximum likelihood from raw
// lifetimes). Every function is pure; concurrent callers need no
// coordination.
package weibull

import (
	"fmt"
	"math"
)

// CurveType selects which function of the fitted distribution is evaluated.
type CurveType string

const (
	CurvePDF    CurveType = "pdf"
	CurveCDF    CurveType = "cdf"
	CurveHazard CurveType = "hazard"
)

// ParseCurveType normalizes user input into a CurveType.
func ParseCurveType(s string) (CurveType, error) {
	switch CurveType(s) {
	case CurvePDF, CurveCDF, CurveHazard:
		return CurveType(s), nil
	}
	return "", fmt.Errorf("%w: unknown curve type %q (want pdf, cdf or hazard)", ErrValidation, s)
}

// Parameters holds a shape/scale pair. Both must be strictly positive.
type Parameters struct {
	Shape float64 `json:"shape"`
	Scale float64 `json:"scale"`
}

// Validate checks the positivity invariant.
func (p Parameters) Validate() error {
	ok, msg := ValidateParameters(p.Shape, p.Scale)
	if !ok {
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	return nil
}

// ValidateParameters reports whether (shape, scale) form a valid Weibull
// parameter pair, with a user-facing message when they do not.
func ValidateParameters(shape, scale float64) (bool, string) {
	if math.IsNaN(shape) || math.IsNaN(scale) || math.IsInf(shape, 0) || math.IsInf(scale, 0) {
		return false, "invalid parameter values"
	}
	if shape <= 0 || scale <= 0 {
		return false, "shape and scale parameters must be positive"
	}
	return true, ""
}

// PDF evaluates the Weibull probability density at x.
//
//	f(x) = (k/λ)·(x/λ)^(k-1)·exp(-(x/λ)^k)
//
// At x=0 the density is 0 for k>1, 1/λ for k=1 and +Inf for k<1, which is
// what the power term yields directly. Far in the tail (x/λ)^k can overflow;
// the density is 0 there, not NaN.
func PDF(x, shape, scale float64) float64 {
	t := math.Pow(x/scale, shape)
	if math.IsInf(t, 1) {
		return 0
	}
	return (shape / scale) * math.Pow(x/scale, shape-1) * math.Exp(-t)
}

// CDF evaluates the cumulative failure probability at x.
//
//	F(x) = 1 - exp(-(x/λ)^k)
func CDF(x, shape, scale float64) float64 {
	return 1 - math.Exp(-math.Pow(x/scale, shape))
}

// Hazard evaluates the instantaneous failure rate at x.
//
//	h(x) = (k/λ)·(x/λ)^(k-1)
func Hazard(x, shape, scale float64) float64 {
	return (shape / scale) * math.Pow(x/scale, shape-1)
}
