package topic

import "errors"

var (
	// ErrInvalidArgument is returned for invalid configuration or missing inputs
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvariantViolation is returned when the topic graph is inconsistent
	ErrInvariantViolation = errors.New("graph invariant violation")
)
