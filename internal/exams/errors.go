package exams

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound covers missing and soft-deleted exams alike; callers
	// cannot distinguish the two.
	ErrNotFound = errors.New("exam not found")

	ErrInvalidInput = errors.New("invalid exam input")
)

// CooldownError reports how long the caller must wait before the next
// assembly. It unwraps to the assembler's sentinel.
type CooldownError struct {
	Wait time.Duration
	Err  error
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("assembly cooldown active, retry in %s", e.Wait.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return e.Err }
