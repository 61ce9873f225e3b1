// Package services defines the business logic of the contact backend.
// This file centralizes service-level error values so that callers can
// check them consistently. Translation into HTTP responses happens at the
// handler layer.
package services

import "errors"

var (
	// ErrMissingField is returned when a required submission field is empty
	// or below its minimum length after trimming.
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidEmail is returned when the submitted email address does not
	// look like a deliverable address.
	ErrInvalidEmail = errors.New("email address invalid")
)
