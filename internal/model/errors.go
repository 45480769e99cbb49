package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrAllSourcesFailed is returned when every configured source errored.
var ErrAllSourcesFailed = errors.New("all job sources failed")

// ErrInvalidRequest matches every *ValidationError via errors.Is.
var ErrInvalidRequest = errors.New("invalid search request")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ParseError reports model output that did not match the expected shape.
type ParseError struct {
	What   string // e.g. "keywords", "scores"
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.What, e.Reason)
}

// ValidationError reports an unusable search request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}
