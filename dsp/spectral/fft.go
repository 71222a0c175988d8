// Package spectral implements the frequency-domain stages of the render
// pipeline: the Gaussian bandpass mask and band-limited resampling.
//
// All transforms run on power-of-two sizes; inputs are zero-padded at the
// tail and results are cut back to the requested length.
package spectral

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-wiggle/dsp/core"
)

// Errors returned by spectral functions.
var (
	ErrInvalidRate      = errors.New("spectral: sample rates must be positive")
	ErrInvalidBandwidth = errors.New("spectral: bandwidth must be positive and finite")
	ErrInvalidCenter    = errors.New("spectral: center frequency must be in [0, 1]")
)

// transform holds a plan and the forward spectrum of a zero-padded input.
type transform struct {
	plan *algofft.Plan[complex128]
	bins []complex128
}

func newPlan(size int) (*algofft.Plan[complex128], error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectral: failed to create FFT plan: %w", err)
	}

	return plan, nil
}

func forward(x []float64, size int) (*transform, error) {
	plan, err := newPlan(size)
	if err != nil {
		return nil, err
	}

	padded := make([]complex128, size)
	for i, v := range x {
		padded[i] = complex(v, 0)
	}

	bins := make([]complex128, size)
	if err := plan.Forward(bins, padded); err != nil {
		return nil, fmt.Errorf("spectral: forward FFT failed: %w", err)
	}

	return &transform{plan: plan, bins: bins}, nil
}

// inverseReal runs the inverse transform of bins and returns the first n
// real samples multiplied by gain.
func inverseReal(plan *algofft.Plan[complex128], bins []complex128, n int, gain float64) ([]float64, error) {
	td := make([]complex128, len(bins))
	if err := plan.Inverse(td, bins); err != nil {
		return nil, fmt.Errorf("spectral: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(td[i]) * gain
	}

	return out, nil
}

func fftSize(n int) int {
	return max(2, core.NextPowerOf2(n))
}
