package render

import "errors"

var (
	// ErrInvalidInput covers empty question lists and unknown formats.
	// Callers should reject these before invoking the renderer.
	ErrInvalidInput = errors.New("invalid render input")

	// ErrEncodeFailed is fatal: the document backend could not produce
	// output. Image fetch failures never raise it; they are skipped.
	ErrEncodeFailed = errors.New("document encoding failed")
)
