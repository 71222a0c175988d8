// Package audiofile decodes WAV and MP3 data into float samples and writes
// mono 16-bit WAV files.
package audiofile

import (
	"bytes"
	"errors"
	"fmt"
)

// Errors returned by the decoders and encoder.
var (
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	ErrInvalidWAV        = errors.New("audiofile: invalid WAV data")
	ErrInvalidMP3        = errors.New("audiofile: invalid MP3 data")
	ErrEmpty             = errors.New("audiofile: no samples")
)

// Format names a container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Audio is decoded PCM with interleaved channels scaled to [-1, 1).
type Audio struct {
	Data       []float64
	Channels   int
	SampleRate int
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if a.Channels <= 0 {
		return 0
	}

	return len(a.Data) / a.Channels
}

// Mono averages the channels of every frame.
func (a *Audio) Mono() []float64 {
	if a.Channels <= 1 {
		out := make([]float64, len(a.Data))
		copy(out, a.Data)

		return out
	}

	frames := a.Frames()
	out := make([]float64, frames)
	scale := 1 / float64(a.Channels)
	for f := range out {
		sum := 0.0
		for _, v := range a.Data[f*a.Channels : (f+1)*a.Channels] {
			sum += v
		}

		out[f] = sum * scale
	}

	return out
}

// Sniff guesses the container from leading magic bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV, nil
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Decode sniffs the container and decodes data.
func Decode(data []byte) (*Audio, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	var a *Audio
	switch format {
	case FormatWAV:
		a, err = DecodeWAV(bytes.NewReader(data))
	case FormatMP3:
		a, err = DecodeMP3(bytes.NewReader(data))
	}

	if err != nil {
		return nil, err
	}

	if len(a.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, format)
	}

	return a, nil
}
