package audiofile

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DecodeWAV reads a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 || format == nil || format.NumChannels == 0 {
		return nil, fmt.Errorf("%w: missing format information", ErrInvalidWAV)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(dec.PCMLen()) / bytesPerSample

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}

	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	buf.Data = buf.Data[:n]

	floatBuf := buf.AsFloatBuffer()
	factor := 1 / math.Pow(2, float64(bitDepth-1))
	data := make([]float64, len(floatBuf.Data))
	for i, v := range floatBuf.Data {
		data[i] = v * factor
	}

	return &Audio{Data: data, Channels: format.NumChannels, SampleRate: format.SampleRate}, nil
}

// EncodeWAV writes samples as a mono 16-bit PCM WAV stream. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}

	for i, v := range samples {
		buf.Data[i] = int(quantize16(v))
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audiofile: write wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: finalize wav: %w", err)
	}

	return nil
}

// WriteWAVFile creates path and encodes samples into it.
func WriteWAVFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: %w", err)
	}

	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
