package fetch

import (
	"fmt"

	"github.com/cwbudde/algo-wiggle/synth"
)

// Error describes a failed fetch. It matches synth.ErrFetch.
type Error struct {
	URL    string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports Error as a synth.ErrFetch.
func (e *Error) Is(target error) bool { return target == synth.ErrFetch }
