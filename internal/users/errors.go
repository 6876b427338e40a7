package users

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is surfaced on registration only; every other flow
	// answers neutrally so addresses cannot be probed.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidInput = errors.New("invalid user input")

	// ErrTokenInvalid covers unknown, already-used and expired
	// verification or reset tokens.
	ErrTokenInvalid = errors.New("token invalid or expired")
)
