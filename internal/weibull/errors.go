package weibull

import "errors"

var (
	// ErrValidation marks malformed input rejected before any fitting
	// attempt: non-positive parameters, non-ascending calibration ages,
	// unknown curve types.
	ErrValidation = errors.New("invalid input")

	// ErrInsufficientData indicates too few observations to fit.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoConvergence indicates the optimizer exhausted its budget or
	// produced non-finite parameters. Inputs were well-formed; the search
	// failed.
	ErrNoConvergence = errors.New("optimizer did not converge")
)
