package conv

import (
	"errors"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// directThreshold is the longest kernel convolved in the time domain.
const directThreshold = 64

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	dst := make([]float64, len(a)+len(b)-1)
	temp := make([]float64, len(b))
	for i, x := range a {
		// dst[i:i+m] += b * a[i]
		vecmath.ScaleBlock(temp, b, x)
		vecmath.AddBlockInPlace(dst[i:i+len(b)], temp)
	}

	return dst, nil
}

// Convolve performs linear convolution with automatic algorithm selection.
// Kernels up to 64 samples use Direct, longer ones OverlapAdd.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}

	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	// Ensure a is the longer signal for efficient processing
	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}

	oa, err := NewOverlapAdd(b, 0)
	if err != nil {
		return nil, err
	}

	return oa.Process(a)
}

// Clamped convolves dry with ir and returns the first max(len(dry), len(ir))
// samples scaled by 1/sqrt of that length.
//
// The scale matches the level of a product of orthonormal spectra, so a unit
// impulse response of length L attenuates by sqrt(L). Empty inputs produce
// an all-zero result of the longer length.
func Clamped(dry, ir []float64) ([]float64, error) {
	n := max(len(dry), len(ir))
	if len(dry) == 0 || len(ir) == 0 {
		return make([]float64, n), nil
	}

	full, err := Convolve(dry, ir)
	if err != nil {
		return nil, err
	}

	out := full[:n]
	vecmath.ScaleBlockInPlace(out, 1/math.Sqrt(float64(n)))

	return out, nil
}
