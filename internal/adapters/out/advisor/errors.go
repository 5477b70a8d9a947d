package advisor

import "errors"

var (
	// ErrInternal is returned when a request could not be built or sent.
	ErrInternal = errors.New("advisor client: internal error")

	// ErrInvalidResponse is returned for unexpected status codes and bodies.
	ErrInvalidResponse = errors.New("advisor client: invalid response")

	// ErrNoMatch is returned when none of the predictions fits a candidate.
	ErrNoMatch = errors.New("advisor client: no prediction matches the candidates")
)

// Fallback reasons reported to metrics.
const (
	reasonDisabled    = "disabled"
	reasonUnavailable = "unavailable"
	reasonBadResponse = "bad_response"
	reasonNoMatch     = "no_match"
)
