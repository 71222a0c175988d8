package testutil

import (
	"math"
	"math/rand/v2"
)

// Source buffers for render tests. Every generator is deterministic so that
// expected outputs can be worked out by hand.

func generate(n int, f func(i int) float64) []float64 {
	out := make([]float64, max(n, 0))
	for i := range out {
		out[i] = f(i)
	}

	return out
}

// DeterministicSine returns length samples of a zero-phase sine at freqHz.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	return generate(length, func(i int) float64 { return amplitude * math.Sin(w*float64(i)) })
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude) drawn
// from a PCG source seeded with seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	return generate(length, func(int) float64 { return amplitude * (2*rng.Float64() - 1) })
}

// Impulse returns length zeros with a single 1 at pos. An out-of-range pos
// yields silence.
func Impulse(length, pos int) []float64 {
	return generate(length, func(i int) float64 {
		if i == pos {
			return 1
		}

		return 0
	})
}

// Ramp returns 0, 1, 2, ... so that slices of it reveal their offsets.
func Ramp(length int) []float64 {
	return generate(length, func(i int) float64 { return float64(i) })
}

// DC returns length copies of value.
func DC(value float64, length int) []float64 {
	return generate(length, func(int) float64 { return value })
}

// Ones is DC(1, n).
func Ones(n int) []float64 { return DC(1, n) }
