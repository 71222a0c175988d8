package spectral

import (
	"math"

	"github.com/cwbudde/algo-wiggle/dsp/core"
)

// GaussianMask returns the normal probability density with mean center and
// standard deviation bandwidth, evaluated at bins+1 evenly spaced points of
// the unit interval. Index 0 is DC and the last index is Nyquist.
func GaussianMask(bins int, center, bandwidth float64) []float64 {
	mask := make([]float64, bins+1)
	norm := 1 / (bandwidth * math.Sqrt(2*math.Pi))
	for k := range mask {
		x := 0.0
		if bins > 0 {
			x = float64(k) / float64(bins)
		}

		z := (x - center) / bandwidth
		mask[k] = norm * math.Exp(-0.5*z*z)
	}

	return mask
}

// GaussianBandpass filters x with a zero-phase Gaussian magnitude response.
//
// center is the pass-band centre as a fraction of Nyquist and bandwidth is
// the standard deviation of the Gaussian in the same unit. The mask is the
// density itself, so narrow bands boost the peak above unity. The result has
// the same length as x.
func GaussianBandpass(x []float64, center, bandwidth float64) ([]float64, error) {
	if !core.IsFinitePositive(bandwidth) {
		return nil, ErrInvalidBandwidth
	}

	if center < 0 || center > 1 || math.IsNaN(center) {
		return nil, ErrInvalidCenter
	}

	if len(x) == 0 {
		return []float64{}, nil
	}

	size := fftSize(len(x))
	tr, err := forward(x, size)
	if err != nil {
		return nil, err
	}

	half := size / 2
	mask := GaussianMask(half, center, bandwidth)
	tr.bins[0] *= complex(mask[0], 0)
	for k := 1; k <= half; k++ {
		g := complex(mask[k], 0)
		tr.bins[k] *= g
		if k != half {
			tr.bins[size-k] *= g
		}
	}

	return inverseReal(tr.plan, tr.bins, len(x), 1)
}
