package synth

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the renderers wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrInvalid marks parameter values the renderers refuse to process.
	ErrInvalid = errors.New("invalid parameters")
	// ErrFetch marks failures to retrieve or decode remote audio.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound marks unknown synth identifiers.
	ErrNotFound = errors.New("synth not found")
)

// Invalidf returns an ErrInvalid-wrapping error with a formatted message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// MismatchError reports a params value of the wrong shape for a synth.
type MismatchError struct {
	Synth string
	Got   Params
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: unexpected params type %T", e.Synth, e.Got)
}

// Is reports MismatchError as an ErrInvalid.
func (e *MismatchError) Is(target error) bool {
	return target == ErrInvalid
}
