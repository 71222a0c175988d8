package stretch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-wiggle/dsp/core"
	"github.com/cwbudde/algo-wiggle/dsp/interp"
)

// stretchChained lengthens input by factor in as many passes as keep each
// one within maxPassFactor. The last pass lands exactly on
// round(len(input)*factor) samples.
func (s *Stretcher) stretchChained(input []float64, factor float64) ([]float64, error) {
	target := math.Round(float64(len(input)) * factor)
	if target > core.MaxSamples {
		return nil, fmt.Errorf("%w: %g samples", ErrTooLong, target)
	}

	passes := max(1, int(math.Ceil(math.Abs(math.Log(factor))/math.Log(maxPassFactor)-identityEps)))
	step := math.Pow(factor, 1/float64(passes))

	out := input
	for range passes - 1 {
		out = s.stretch(out, step)
	}

	return s.stretch(out, max(1, target)/float64(len(out))), nil
}

// stretch returns input lengthened by factor (output/input length ratio).
func (s *Stretcher) stretch(input []float64, factor float64) []float64 {
	targetLen := max(1, int(math.Round(float64(len(input))*factor)))

	nominalHop := max(1, float64(s.stepOut)/factor)

	frames := targetLen/s.stepOut + 4
	out := make([]float64, frames*s.stepOut+s.sequenceLen+1)

	for i := 0; i < s.sequenceLen; i++ {
		out[i] = sampleZero(input, i)
	}

	outLen := s.sequenceLen
	prevStart := 0
	nextNominal := nominalHop
	ref := make([]float64, s.overlapLen)

	for outLen < targetLen+s.sequenceLen {
		// The natural continuation of the previous sequence is the
		// reference the next one should resemble.
		refStart := prevStart + s.stepOut
		for i := range ref {
			ref[i] = sampleZero(input, refStart+i)
		}

		candStart := s.bestOverlap(ref, input, int(math.Round(nextNominal)))

		outStart := outLen - s.overlapLen
		for i := 0; i < s.overlapLen; i++ {
			out[outStart+i] = out[outStart+i]*s.fadeOut[i] + sampleZero(input, candStart+i)*s.fadeIn[i]
		}

		for i := s.overlapLen; i < s.sequenceLen; i++ {
			out[outStart+i] = sampleZero(input, candStart+i)
		}

		outLen = outStart + s.sequenceLen
		prevStart = candStart
		nextNominal += nominalHop

		if prevStart > len(input)+s.sequenceLen && outLen >= targetLen {
			break
		}
	}

	if targetLen <= len(out) {
		return out[:targetLen]
	}

	padded := make([]float64, targetLen)
	copy(padded, out)

	return padded
}

// bestOverlap returns the candidate start within the search radius around
// predicted whose window has the highest normalized correlation with ref.
func (s *Stretcher) bestOverlap(ref, input []float64, predicted int) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := tiny
	for _, v := range ref {
		refEnergy += v * v
	}

	for cand := predicted - s.searchLen; cand <= predicted+s.searchLen; cand++ {
		dot := 0.0
		candEnergy := tiny
		for i, rv := range ref {
			cv := sampleZero(input, cand+i)
			dot += rv * cv
			candEnergy += cv * cv
		}

		if score := dot / math.Sqrt(refEnergy*candEnergy); score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

// resampleHermite reads input at outLen evenly spaced positions spanning
// its full length.
func resampleHermite(input []float64, outLen int) []float64 {
	if outLen <= 0 || len(input) == 0 {
		return []float64{}
	}

	out := make([]float64, outLen)
	if len(input) == 1 || outLen == 1 {
		for i := range out {
			out[i] = input[0]
		}

		return out
	}

	step := float64(len(input)-1) / float64(outLen-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(math.Floor(pos))
		out[i] = interp.Hermite4(pos-float64(idx),
			sampleClamp(input, idx-1),
			sampleClamp(input, idx),
			sampleClamp(input, idx+1),
			sampleClamp(input, idx+2),
		)
	}

	return out
}

func sampleZero(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}

	return x[idx]
}

func sampleClamp(x []float64, idx int) float64 {
	if idx < 0 {
		return x[0]
	}

	if idx >= len(x) {
		return x[len(x)-1]
	}

	return x[idx]
}
