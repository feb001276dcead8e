package weibull

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	mleShapeGuessMin = 0.5
	mleShapeGuessMax = 5.0
	mleEpsilon       = 1e-10
	maxMLEIterations = 1000
)

// FitMLE estimates (shape, scale) from a sample of positive lifetimes by
// maximum likelihood.
//
// The initial shape guess follows the interquartile heuristic
// k₀ = ln(ln 4)/ln(p75/p25), clamped to [0.5, 5]; a degenerate sample with
// p75 == p25 sits at the upper clamp instead of dividing by zero. The scale
// starts from the median, λ₀ = p50/(ln 2)^(1/k₀). The negative
// log-likelihood is then minimized with a bounded Nelder-Mead, shape in
// [0.1, 50] and scale in [0.1, 2·max(lifetimes)].
//
// All failure conditions are distinct errors: fewer than 2 observations
// (ErrInsufficientData), a non-positive lifetime (ErrValidation), and
// non-convergence or non-finite results (ErrNoConvergence).
func FitMLE(lifetimes []float64) (Parameters, error) {
	if len(lifetimes) < 2 {
		return Parameters{}, fmt.Errorf("%w: need at least 2 lifetimes, got %d", ErrInsufficientData, len(lifetimes))
	}
	maxLife := 0.0
	for _, v := range lifetimes {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Parameters{}, fmt.Errorf("%w: all lifetimes must be positive", ErrValidation)
		}
		if v > maxLife {
			maxLife = v
		}
	}

	sorted := append([]float64(nil), lifetimes...)
	sort.Float64s(sorted)
	p25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	p50 := stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	shapeGuess := mleShapeGuessMax
	if p75 > p25 {
		shapeGuess = clamp(math.Log(math.Log(4))/math.Log(p75/p25), mleShapeGuessMin, mleShapeGuessMax)
	}
	scaleGuess := p50 / math.Pow(math.Ln2, 1/shapeGuess)

	scaleMax := 2 * maxLife
	x0 := []float64{shapeGuess, clamp(scaleGuess, fitScaleMin, scaleMax)}

	p, err := minimizeNelderMead(negLogLikelihood(lifetimes, scaleMax), x0, maxMLEIterations)
	if err != nil {
		return Parameters{}, fmt.Errorf("fit mle: %w", err)
	}
	return p, nil
}

// negLogLikelihood builds the objective
//
//	-[n·ln k - n·k·ln λ + (k-1)·Σln xᵢ - Σ(xᵢ/λ)^k]
//
// Lifetimes are clamped away from zero before the logarithm, and any
// non-finite value explored mid-optimization evaluates to +Inf so the
// simplex steps around it instead of crashing or leaking NaN.
func negLogLikelihood(lifetimes []float64, scaleMax float64) func([]float64) float64 {
	n := float64(len(lifetimes))
	var sumLog float64
	for _, v := range lifetimes {
		sumLog += math.Log(math.Max(v, mleEpsilon))
	}
	return func(v []float64) float64 {
		shape, scale := v[0], v[1]
		if shape < fitShapeMin || shape > fitShapeMax || scale < fitScaleMin || scale > scaleMax {
			return math.Inf(1)
		}
		var sumPow float64
		for _, x := range lifetimes {
			sumPow += math.Pow(math.Max(x, mleEpsilon)/scale, shape)
		}
		ll := n*math.Log(shape) - n*shape*math.Log(scale) + (shape-1)*sumLog - sumPow
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return math.Inf(1)
		}
		return -ll
	}
}
