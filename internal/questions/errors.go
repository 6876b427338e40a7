package questions

import "errors"

// ErrRejected marks a question dropped by sanitization. Rejection reasons
// wrap it so callers can match the family with errors.Is.
var ErrRejected = errors.New("question rejected")

var (
	ErrEmptyEnunciation       = wrapRejection("empty enunciation")
	ErrAlternativeMissingText = wrapRejection("alternative missing text")
	ErrNoAlternatives         = wrapRejection("no alternatives")
	ErrBrokenImage            = wrapRejection("broken image marker")
	ErrTranslationFailed      = wrapRejection("translation failed")
)

type rejection struct {
	reason string
}

func (r rejection) Error() string { return "question rejected: " + r.reason }

func (r rejection) Unwrap() error { return ErrRejected }

func wrapRejection(reason string) error {
	return rejection{reason: reason}
}
