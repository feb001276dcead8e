package weibull

import "fmt"

// FailurePattern is the coarse answer to "what kills these assets".
type FailurePattern string

const (
	PatternWearOut   FailurePattern = "wearout"
	PatternEarlyLife FailurePattern = "earlylife"
	PatternNeither   FailurePattern = "neither"
)

// GuidedAnswers captures the guided-selection questionnaire. Exactly one of
// the boolean follow-ups is consulted, depending on Pattern.
type GuidedAnswers struct {
	Pattern FailurePattern `json:"pattern"`
	// Predictable: do failures occur predictably near end of life?
	// (wearout follow-up)
	Predictable bool `json:"predictable"`
	// Defects: are failures mostly manufacturing defects or bugs?
	// (earlylife follow-up)
	Defects bool `json:"defects"`
	// LateLife: does failure probability stay low until late life?
	// (neither follow-up)
	LateLife bool `json:"late_life"`
	// AverageLife is the expected typical lifetime, used as the scale.
	AverageLife float64 `json:"average_life"`
}

// GuidedParameters maps questionnaire answers to a starting parameter pair.
// The shape table mirrors reliability-engineering rules of thumb: strong
// wear-out near 4, mixed wear-out 2.5, infant mortality 0.5, random failure
// 1 (exponential), late steep wear-out 6, mild aging 1.5.
func GuidedParameters(a GuidedAnswers) (Parameters, error) {
	if a.AverageLife <= 0 {
		return Parameters{}, fmt.Errorf("%w: average expected life must be positive", ErrValidation)
	}
	var shape float64
	switch a.Pattern {
	case PatternWearOut:
		shape = 2.5
		if a.Predictable {
			shape = 4.0
		}
	case PatternEarlyLife:
		shape = 1.0
		if a.Defects {
			shape = 0.5
		}
	case PatternNeither:
		shape = 1.5
		if a.LateLife {
			shape = 6.0
		}
	default:
		return Parameters{}, fmt.Errorf("%w: unknown failure pattern %q (want wearout, earlylife or neither)", ErrValidation, a.Pattern)
	}
	return Parameters{Shape: shape, Scale: a.AverageLife}, nil
}
