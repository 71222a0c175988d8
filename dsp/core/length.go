// Package core provides the buffer helpers shared by the render pipeline:
// tail-only length adjustment, peak normalization, gain and mixing.
package core

import (
	"errors"
	"fmt"
)

// ErrShrink is returned when a length adjustment would drop samples.
var ErrShrink = errors.New("core: refusing to shrink buffer")

// EnsureLength returns buf extended with trailing zeros to n samples.
//
// The result never aliases buf when padding is needed. Asking for fewer
// samples than buf holds is an error; buffers are only ever padded.
func EnsureLength(buf []float64, n int) ([]float64, error) {
	if n < len(buf) {
		return nil, fmt.Errorf("%w: have %d samples, want %d", ErrShrink, len(buf), n)
	}

	if n == len(buf) {
		return buf, nil
	}

	out := make([]float64, n)
	copy(out, buf)

	return out, nil
}

// EqualizeLengths pads the shorter of a and b so both have the length of the
// longer one.
func EqualizeLengths(a, b []float64) ([]float64, []float64) {
	n := max(len(a), len(b))
	// Neither call can shrink because n is the maximum.
	a, _ = EnsureLength(a, n)
	b, _ = EnsureLength(b, n)

	return a, b
}

// Slice returns buf[start:start+n] clamped to the buffer bounds. n <= 0
// selects everything from start onwards. Ranges past the end yield a short
// or empty result; nothing is padded.
func Slice(buf []float64, start, n int) []float64 {
	if start < 0 {
		start = 0
	}

	if start >= len(buf) {
		return []float64{}
	}

	end := len(buf)
	if n > 0 && n < end-start {
		end = start + n
	}

	out := make([]float64, end-start)
	copy(out, buf[start:end])

	return out
}
