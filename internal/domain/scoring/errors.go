package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrInvalidInput is returned when a required profile field is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidWeights is returned by Weights.Validate.
	ErrInvalidWeights = errors.New("invalid scoring weights")
)
