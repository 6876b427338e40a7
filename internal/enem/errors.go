package enem

import "errors"

var (
	// ErrSourceUnavailable signals an HTTP/network failure or a malformed
	// payload from the question source. Not retryable within the same attempt.
	ErrSourceUnavailable = errors.New("question source unavailable")

	ErrInvalidYear   = errors.New("unsupported exam year")
	ErrInvalidOffset = errors.New("offset must be >= 0")
	ErrInvalidLimit  = errors.New("limit must be > 0")
	ErrNotFound      = errors.New("question not found")
)
