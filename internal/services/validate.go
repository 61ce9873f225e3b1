// Submission field validation.
//
// This runs before classification and covers only what the server must
// guarantee: required fields are present with a minimal length and the email
// looks deliverable. Anything stricter lives in the client-side form and is
// deliberately not authoritative.
package services

import (
	"regexp"
	"strings"

	"github.com/bettercallhenk/contact-backend/internal/domain"
)

// minMessageLen keeps single-word noise out of the inbox without blocking a
// short genuine inquiry.
const minMessageLen = 10

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError reports which submission field failed validation. Handlers use
// Field to pick an actionable, field-specific message for the caller.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *FieldError) Unwrap() error { return e.Err }

// ValidateSubmission checks the required fields of sub and returns the first
// failure, or nil when the submission is acceptable for classification.
//
// Phone plausibility is not checked here: the classifier owns that signal so
// its position in the evaluation order stays intact (a honeypot hit must win
// over an invalid phone).
func ValidateSubmission(sub *domain.Submission) *FieldError {
	if strings.TrimSpace(sub.Name) == "" {
		return &FieldError{Field: "name", Err: ErrMissingField}
	}
	email := strings.TrimSpace(sub.Email)
	if email == "" {
		return &FieldError{Field: "email", Err: ErrMissingField}
	}
	if !emailRE.MatchString(email) {
		return &FieldError{Field: "email", Err: ErrInvalidEmail}
	}
	if strings.TrimSpace(sub.Phone) == "" {
		return &FieldError{Field: "phone", Err: ErrMissingField}
	}
	if len(strings.TrimSpace(sub.Message)) < minMessageLen {
		return &FieldError{Field: "message", Err: ErrMissingField}
	}
	return nil
}
