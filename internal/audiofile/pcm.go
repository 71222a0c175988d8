package audiofile

import (
	"encoding/binary"
	"math"
)

// quantize16 maps a sample in [-1, 1] to a signed 16-bit value, clipping
// anything outside.
func quantize16(v float64) int16 {
	return int16(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
}

// PCM16 returns samples as interleaved signed 16-bit little-endian bytes,
// the layout expected by audio output devices.
func PCM16(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(quantize16(v)))
	}

	return out
}
