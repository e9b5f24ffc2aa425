package models

import (
	"errors"
	"fmt"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrEmailTaken         = errors.New("student with this email already exists")
	ErrHandleTaken        = errors.New("student with this codeforces handle already exists")
	ErrInvalidRequestBody = errors.New("invalid request body")
)

// ValidationError reports a missing or malformed field in a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LookupError means the judge could not return data for a handle. A missing
// handle and an unreachable judge look the same to callers.
type LookupError struct {
	Handle string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("codeforces lookup failed for %q: %v", e.Handle, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed store write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
