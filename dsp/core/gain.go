package core

import vecmath "github.com/cwbudde/algo-vecmath"

// NormalizeEpsilon keeps peak normalization finite on silent buffers.
const NormalizeEpsilon = 1e-8

// Peak returns max |x|.
func Peak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return vecmath.MaxAbs(x)
}

// NormalizeInPlace divides buf by its peak magnitude plus NormalizeEpsilon.
// Silent buffers stay silent.
func NormalizeInPlace(buf []float64) {
	if len(buf) == 0 {
		return
	}

	vecmath.ScaleBlockInPlace(buf, 1/(Peak(buf)+NormalizeEpsilon))
}

// Scaled returns a copy of src multiplied by gain.
func Scaled(src []float64, gain float64) []float64 {
	out := make([]float64, len(src))
	if len(src) == 0 {
		return out
	}

	vecmath.ScaleBlock(out, src, gain)

	return out
}

// ApplyEnvelopeInPlace multiplies buf by env sample by sample. Both slices
// must have the same length.
func ApplyEnvelopeInPlace(buf, env []float64) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, env)
}

// Crossfade returns dry*(1-mix) + wet*mix. dry and wet must have equal length.
func Crossfade(dry, wet []float64, mix float64) []float64 {
	out := Scaled(dry, 1-mix)
	if len(out) == 0 {
		return out
	}

	vecmath.AddBlockInPlace(out, Scaled(wet, mix))

	return out
}

// MixAt adds src into dst starting at offset. Samples that fall outside dst
// are dropped and the number actually written is returned.
func MixAt(dst, src []float64, offset int) int {
	if offset >= len(dst) || offset+len(src) <= 0 {
		return 0
	}

	if offset < 0 {
		src = src[-offset:]
		offset = 0
	}

	n := min(len(src), len(dst)-offset)
	vecmath.AddBlockInPlace(dst[offset:offset+n], src[:n])

	return n
}
