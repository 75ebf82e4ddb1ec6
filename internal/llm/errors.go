package llm

import "errors"

// Common errors returned by providers and the shared generation algorithm.
var (
	// ErrInvalidConfig is returned when an adapter's credentials or settings
	// are missing or unusable.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrEmptyResponse is returned when the model produced no text at all.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrUnparsableResponse is returned when every JSON recovery strategy
	// failed on the model's output.
	ErrUnparsableResponse = errors.New("could not parse JSON from model response")

	// ErrTruncatedResponse is returned when the vendor signals that output
	// stopped at the length limit, so the retry loop can treat the call as a
	// transient failure instead of returning a cut-off payload.
	ErrTruncatedResponse = errors.New("model response truncated")
)
