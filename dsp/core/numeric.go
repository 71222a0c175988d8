package core

import "math"

// MaxSamples is the longest buffer the render pipeline will allocate.
const MaxSamples = math.MaxInt32

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinitePositive reports whether v is finite and strictly positive.
func IsFinitePositive(v float64) bool {
	return v > 0 && IsFinite(v)
}

// SecondsToSamples converts a duration to a sample count, truncating toward
// zero. Results beyond the int range saturate and NaN maps to 0.
func SecondsToSamples(seconds float64, sampleRate int) int {
	n := seconds * float64(sampleRate)

	switch {
	case math.IsNaN(n):
		return 0
	case n >= float64(math.MaxInt):
		return math.MaxInt
	case n <= float64(math.MinInt):
		return math.MinInt
	}

	return int(n)
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
