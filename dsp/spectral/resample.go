package spectral

import (
	"math"

	"github.com/cwbudde/algo-wiggle/dsp/core"
	"github.com/cwbudde/algo-wiggle/dsp/interp"
)

// oversample is the spectral zero-padding factor applied before the
// fractional read-out.
const oversample = 4

// OutputLength returns the resampled length of an n-sample buffer.
func OutputLength(n, from, to int) int {
	return int(math.Round(float64(n) * float64(to) / float64(from)))
}

// Resample converts x from rate from to rate to.
//
// The signal is band-limited in the frequency domain (bins above the target
// Nyquist are cleared when downsampling), upsampled by spectral zero-padding,
// and then read out at the target positions with 4-point Hermite
// interpolation. Equal rates return a copy.
func Resample(x []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, ErrInvalidRate
	}

	if from == to {
		out := make([]float64, len(x))
		copy(out, x)

		return out, nil
	}

	outLen := OutputLength(len(x), from, to)
	if len(x) == 0 || outLen == 0 {
		return []float64{}, nil
	}

	size := fftSize(len(x))
	tr, err := forward(x, size)
	if err != nil {
		return nil, err
	}

	half := size / 2
	if to < from {
		cutoff := int(math.Floor(float64(half) * float64(to) / float64(from)))
		for k := cutoff + 1; k <= half; k++ {
			tr.bins[k] = 0
			if k != half {
				tr.bins[size-k] = 0
			}
		}
	}

	upSize := size * oversample
	up := make([]complex128, upSize)
	copy(up[:half], tr.bins[:half])
	for k := 1; k < half; k++ {
		up[upSize-k] = tr.bins[size-k]
	}

	up[half] = tr.bins[half] / 2
	up[upSize-half] = tr.bins[half] / 2

	upPlan, err := newPlan(upSize)
	if err != nil {
		return nil, err
	}

	dense, err := inverseReal(upPlan, up, len(x)*oversample, oversample)
	if err != nil {
		return nil, err
	}

	step := float64(from) * oversample / float64(to)
	out := make([]float64, outLen)
	for i := range out {
		out[i] = sampleHermite(dense, float64(i)*step)
	}

	return out, nil
}

func sampleHermite(x []float64, pos float64) float64 {
	idx := int(math.Floor(pos))
	frac := pos - float64(idx)

	return interp.Hermite4(frac,
		sampleClamp(x, idx-1),
		sampleClamp(x, idx),
		sampleClamp(x, idx+1),
		sampleClamp(x, idx+2),
	)
}

func sampleClamp(x []float64, idx int) float64 {
	return x[int(core.Clamp(float64(idx), 0, float64(len(x)-1)))]
}
