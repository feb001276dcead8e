package weibull

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	cases := []struct {
		name  string
		shape float64
		scale float64
		ok    bool
	}{
		{"valid", 2, 1, true},
		{"zero shape", 0, 1, false},
		{"negative scale", 2, -3, false},
		{"nan shape", math.NaN(), 1, false},
		{"inf scale", 1, math.Inf(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, msg := ValidateParameters(tc.shape, tc.scale)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestKernelAtZero(t *testing.T) {
	// k>1: density and hazard start at zero.
	assert.Equal(t, 0.0, PDF(0, 2, 1))
	assert.Equal(t, 0.0, Hazard(0, 2, 1))

	// k=1: exponential, both start at 1/λ.
	assert.InDelta(t, 0.5, PDF(0, 1, 2), 1e-12)
	assert.InDelta(t, 0.5, Hazard(0, 1, 2), 1e-12)

	// k<1: infant mortality, both diverge at zero but never NaN.
	assert.True(t, math.IsInf(PDF(0, 0.5, 1), 1))
	assert.True(t, math.IsInf(Hazard(0, 0.5, 1), 1))
}

func TestPDFTailUnderflow(t *testing.T) {
	// (x/λ)^k overflows for extreme x; the density must be 0, not NaN.
	v := PDF(1e300, 5, 1)
	assert.Equal(t, 0.0, v)
}

func TestCDFMonotoneAndBounded(t *testing.T) {
	for _, p := range []Parameters{{0.5, 1}, {1, 1}, {2, 1}, {4, 5}} {
		assert.Equal(t, 0.0, CDF(0, p.Shape, p.Scale), "cdf(0) for %+v", p)
		prev := 0.0
		for x := 0.1; x < 50; x += 0.1 {
			c := CDF(x, p.Shape, p.Scale)
			assert.GreaterOrEqual(t, c, prev, "cdf not monotone at x=%v for %+v", x, p)
			assert.LessOrEqual(t, c, 1.0)
			prev = c
		}
		assert.InDelta(t, 1.0, CDF(1e6, p.Shape, p.Scale), 1e-9)
	}
}

func TestTruncationPoint(t *testing.T) {
	// CDF cutoff is closed form: λ·(ln 10000)^(1/k).
	want := math.Pow(-math.Log(1-0.9999), 0.5)
	assert.InDelta(t, want, TruncationPoint(2, 1, CurveCDF), 1e-12)
	assert.InDelta(t, 3.0349, TruncationPoint(2, 1, CurveCDF), 1e-3)

	// Hazard cutoff is the 3λ display convention.
	assert.Equal(t, 7.5, TruncationPoint(4, 2.5, CurveHazard))

	// PDF cutoff brackets the 1e-4 density crossing to within the tolerance.
	xMax := TruncationPoint(2, 1, CurvePDF)
	assert.Greater(t, xMax, 0.0)
	assert.LessOrEqual(t, PDF(xMax, 2, 1), 2e-4)
	assert.Greater(t, PDF(xMax-0.02, 2, 1), 1e-4)
}

func TestGenerateShapeOfOutput(t *testing.T) {
	// shape 0.5 covers the infant-mortality regime where the pdf and
	// hazard are unbounded at x=0.
	for _, shape := range []float64{0.5, 2} {
		for _, ct := range []CurveType{CurvePDF, CurveCDF, CurveHazard} {
			c, err := Generate(shape, 1, ct, 100)
			require.NoError(t, err, "k=%v type %s", shape, ct)
			require.Len(t, c.X, 100)
			require.Len(t, c.Y, 100)
			assert.Equal(t, 0.0, c.X[0])
			assert.Greater(t, c.X[99], 0.0)
			for i := 1; i < len(c.X); i++ {
				assert.Greater(t, c.X[i], c.X[i-1], "x not strictly increasing at %d (k=%v %s)", i, shape, ct)
			}
			for i, y := range c.Y {
				switch ct {
				case CurveCDF:
					assert.GreaterOrEqual(t, y, 0.0)
					assert.LessOrEqual(t, y, 1.0)
				default:
					if i == 0 && shape < 1 {
						assert.True(t, math.IsInf(y, 1), "y[0] = %v, want +Inf (k=%v %s)", y, shape, ct)
						continue
					}
					assert.False(t, math.IsNaN(y), "NaN y at %d (k=%v %s)", i, shape, ct)
					assert.GreaterOrEqual(t, y, 0.0, "negative y at %d (k=%v %s)", i, shape, ct)
					assert.False(t, math.IsInf(y, 0), "non-finite y at %d>0 (k=%v %s)", i, shape, ct)
				}
			}
		}
	}
}

func TestGenerateCDFScenario(t *testing.T) {
	// generate_curve(shape=2, scale=1, cdf, 100): first point (0, 0),
	// last x solves 1-exp(-x²)=0.9999, cdf increasing throughout.
	c, err := Generate(2, 1, CurveCDF, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.X[0])
	assert.Equal(t, 0.0, c.Y[0])
	assert.InDelta(t, 3.03, c.X[99], 0.01)
	for i := 1; i < 100; i++ {
		assert.Greater(t, c.Y[i], c.Y[i-1], "cdf not increasing at %d", i)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(1.7, 3.2, CurvePDF, 250)
	require.NoError(t, err)
	b, err := Generate(1.7, 3.2, CurvePDF, 250)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(-1, 1, CurveCDF, 100)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = Generate(2, 1, CurveCDF, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = Generate(2, 1, "survival", 100)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGuidedParameters(t *testing.T) {
	cases := []struct {
		name    string
		answers GuidedAnswers
		shape   float64
	}{
		{"predictable wearout", GuidedAnswers{Pattern: PatternWearOut, Predictable: true, AverageLife: 10}, 4.0},
		{"mixed wearout", GuidedAnswers{Pattern: PatternWearOut, AverageLife: 10}, 2.5},
		{"manufacturing defects", GuidedAnswers{Pattern: PatternEarlyLife, Defects: true, AverageLife: 10}, 0.5},
		{"random failure", GuidedAnswers{Pattern: PatternEarlyLife, AverageLife: 10}, 1.0},
		{"late steep wearout", GuidedAnswers{Pattern: PatternNeither, LateLife: true, AverageLife: 10}, 6.0},
		{"mild aging", GuidedAnswers{Pattern: PatternNeither, AverageLife: 10}, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := GuidedParameters(tc.answers)
			require.NoError(t, err)
			assert.Equal(t, tc.shape, p.Shape)
			assert.Equal(t, 10.0, p.Scale)
		})
	}

	_, err := GuidedParameters(GuidedAnswers{Pattern: "mystery", AverageLife: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = GuidedParameters(GuidedAnswers{Pattern: PatternWearOut})
	assert.ErrorIs(t, err, ErrValidation)
}
