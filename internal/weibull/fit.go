package weibull

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Calibration targets are fixed: the caller supplies the ages at which 25%,
// 50% and 75% of assets are expected to have failed.
var calibrationTargets = [3]float64{0.25, 0.50, 0.75}

const (
	fitShapeMin = 0.1
	fitShapeMax = 50
	fitScaleMin = 0.1
	fitScaleMax = 100

	maxFitIterations = 2000
)

// FitPoints recovers (shape, scale) from three calibration ages by
// minimizing the squared residuals between the model CDF and the fixed
// 0.25/0.50/0.75 targets.
//
// Ages must be ascending; equal neighbours are tolerated but three identical
// ages pin the CDF at a single point and are rejected as degenerate input.
// On optimizer failure no partial result is returned: the error wraps
// ErrNoConvergence and the caller surfaces it to the user.
func FitPoints(ages [3]float64) (Parameters, error) {
	for i, a := range ages {
		if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return Parameters{}, fmt.Errorf("%w: calibration age %d must be a positive number", ErrValidation, i+1)
		}
	}
	if ages[0] > ages[1] || ages[1] > ages[2] {
		return Parameters{}, fmt.Errorf("%w: calibration ages must be in ascending order (25%% ≤ 50%% ≤ 75%%)", ErrValidation)
	}
	if ages[0] == ages[2] {
		return Parameters{}, fmt.Errorf("%w: calibration ages must not all be equal", ErrValidation)
	}

	mean := (ages[0] + ages[1] + ages[2]) / 3
	x0 := []float64{
		2,
		clamp(mean, fitScaleMin, fitScaleMax),
	}

	objective := func(v []float64) float64 {
		shape, scale := v[0], v[1]
		if shape < fitShapeMin || shape > fitShapeMax || scale < fitScaleMin || scale > fitScaleMax {
			return math.Inf(1)
		}
		var ssr float64
		for i, a := range ages {
			r := CDF(a, shape, scale) - calibrationTargets[i]
			ssr += r * r
		}
		if math.IsNaN(ssr) {
			return math.Inf(1)
		}
		return ssr
	}

	p, err := minimizeNelderMead(objective, x0, maxFitIterations)
	if err != nil {
		return Parameters{}, fmt.Errorf("fit points: %w", err)
	}
	return p, nil
}

// minimizeNelderMead runs a bounded derivative-free minimization over
// (shape, scale). Bounds are enforced by the objective returning +Inf
// outside them, which the simplex routes around. Any optimizer error,
// iteration-budget exhaustion or non-finite result is reported as
// ErrNoConvergence; NaN never leaks to the caller.
func minimizeNelderMead(objective func([]float64) float64, x0 []float64, maxIter int) (Parameters, error) {
	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 100,
		},
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	if result.Status == optimize.IterationLimit || result.Status == optimize.FunctionEvaluationLimit {
		return Parameters{}, fmt.Errorf("%w: iteration budget exhausted", ErrNoConvergence)
	}
	shape, scale := result.X[0], result.X[1]
	if !isFinitePositive(shape) || !isFinitePositive(scale) || math.IsInf(result.F, 1) {
		return Parameters{}, fmt.Errorf("%w: optimizer produced invalid parameters", ErrNoConvergence)
	}
	return Parameters{Shape: shape, Scale: scale}, nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
