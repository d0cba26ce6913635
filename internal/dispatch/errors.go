package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResult marks a call that did not take effect. The caller should
	// skip anything that depends on it.
	ErrNoResult = errors.New("call produced no result")

	// ErrUnknownOperation is returned when no handler recognises an operation
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMissingPathParam is returned when a path template placeholder has no value
	ErrMissingPathParam = errors.New("missing path parameter")
)

// StatusError is a non-2xx API response
type StatusError struct {
	Operation  string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d: %s", e.Operation, e.Method, e.URL, e.StatusCode, e.Body)
}

// Unwrap makes every StatusError match ErrNoResult
func (e *StatusError) Unwrap() error {
	return ErrNoResult
}

// IsContractViolation reports whether err stems from a malformed call rather
// than from the remote side
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrUnknownOperation) || errors.Is(err, ErrMissingPathParam)
}
