package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// mp3 output is always interleaved stereo signed 16-bit little endian.
const mp3Channels = 2

// DecodeMP3 reads an MP3 stream.
func DecodeMP3(r io.Reader) (*Audio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMP3, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMP3, err)
	}

	frames := len(raw) / (2 * mp3Channels)
	data := make([]float64, frames*mp3Channels)
	for i := range data {
		sample := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		data[i] = float64(sample) / 32768
	}

	return &Audio{Data: data, Channels: mp3Channels, SampleRate: dec.SampleRate()}, nil
}
