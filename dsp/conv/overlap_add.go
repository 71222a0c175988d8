package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-wiggle/dsp/core"
)

// OverlapAdd implements FFT-based convolution using the overlap-add method.
// The kernel spectrum is computed once, so one OverlapAdd can convolve many
// signals with the same impulse response.
type OverlapAdd struct {
	kernelFFT []complex128
	kernelLen int
	blockSize int
	fftSize   int

	plan *algofft.Plan[complex128]
}

// NewOverlapAdd creates a new overlap-add convolver for the given kernel.
// If blockSize is 0, a block size is chosen from the kernel length.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		blockSize = max(256, core.NextPowerOf2(len(kernel)))
	}

	// Each block result spans blockSize + kernelLen - 1 samples.
	fftSize := core.NextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	kernelPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelPadded[i] = complex(v, 0)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: len(kernel),
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
	}

	if err := plan.Forward(oa.kernelFFT, kernelPadded); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return oa, nil
}

// FFTSize returns the FFT size used internally.
func (oa *OverlapAdd) FFTSize() int { return oa.fftSize }

// Process returns the full linear convolution of input with the kernel.
func (oa *OverlapAdd) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	outputLen := len(input) + oa.kernelLen - 1
	output := make([]float64, outputLen)
	block := make([]complex128, oa.fftSize)
	spec := make([]complex128, oa.fftSize)

	for start := 0; start < len(input); start += oa.blockSize {
		end := min(start+oa.blockSize, len(input))

		clear(block)
		for i, v := range input[start:end] {
			block[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(spec, block); err != nil {
			return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		for i := range spec {
			spec[i] *= oa.kernelFFT[i]
		}

		if err := oa.plan.Inverse(block, spec); err != nil {
			return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		resultLen := end - start + oa.kernelLen - 1
		for i := 0; i < resultLen && start+i < outputLen; i++ {
			output[start+i] += real(block[i])
		}
	}

	return output, nil
}
