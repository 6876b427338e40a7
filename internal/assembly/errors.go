package assembly

import "errors"

var (
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 90")
	ErrInvalidYear       = errors.New("unsupported exam year")
	ErrInvalidDiscipline = errors.New("unknown discipline")

	// ErrCooldown signals that the user must wait before assembling again.
	ErrCooldown = errors.New("assembly cooldown active")
)
