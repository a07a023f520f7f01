package steps

import "errors"

var (
	// ErrInvalidArgument is returned when step text cannot be parsed.
	ErrInvalidArgument = errors.New("invalid step argument")

	// ErrExpectation is returned when a "then" step observes something else
	// than the scenario states.
	ErrExpectation = errors.New("expectation not met")
)
