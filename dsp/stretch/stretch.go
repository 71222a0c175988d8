// Package stretch changes the duration or the pitch of a mono buffer in the
// time domain.
//
// Both operations share a WSOLA (waveform-similarity overlap-add) core:
// fixed-length sequences are copied from the input at a nominal hop and
// joined with raised-cosine crossfades, each sequence start nudged within a
// search window to the position whose overlap best correlates with the
// output so far. Pitch shifting stretches by the pitch ratio and then reads
// the result back to the original length with Hermite interpolation.
package stretch

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-wiggle/dsp/core"
)

const (
	// Sequence/overlap/search defaults tuned for music material.
	defaultSequenceMs = 82.0
	defaultOverlapMs  = 10.0
	defaultSearchMs   = 28.0

	// maxPassFactor is the widest length change a single WSOLA pass makes.
	// Larger changes are split into equal passes.
	maxPassFactor = 4.0

	identityEps = 1e-9
	tiny        = 1e-12
)

// Errors returned by the stretcher.
var (
	ErrSampleRate = errors.New("stretch: sample rate must be positive and finite")
	ErrRatio      = errors.New("stretch: invalid ratio")
	ErrTooLong    = errors.New("stretch: output too long")
	ErrWindows    = errors.New("stretch: invalid window configuration")
)

// Option configures a Stretcher.
type Option func(*config)

type config struct {
	sequenceMs float64
	overlapMs  float64
	searchMs   float64
}

// WithSequence sets the sequence length in milliseconds.
func WithSequence(ms float64) Option {
	return func(c *config) { c.sequenceMs = ms }
}

// WithOverlap sets the crossfade length in milliseconds.
func WithOverlap(ms float64) Option {
	return func(c *config) { c.overlapMs = ms }
}

// WithSearch sets the search radius in milliseconds.
func WithSearch(ms float64) Option {
	return func(c *config) { c.searchMs = ms }
}

// Stretcher holds the window geometry for one sample rate. It carries no
// per-call state and is safe for concurrent use.
type Stretcher struct {
	sampleRate float64

	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

// New builds a Stretcher for sampleRate.
func New(sampleRate float64, opts ...Option) (*Stretcher, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: %f", ErrSampleRate, sampleRate)
	}

	cfg := config{
		sequenceMs: defaultSequenceMs,
		overlapMs:  defaultOverlapMs,
		searchMs:   defaultSearchMs,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !core.IsFinitePositive(cfg.sequenceMs) || !core.IsFinitePositive(cfg.overlapMs) ||
		!core.IsFinite(cfg.searchMs) || cfg.searchMs < 0 {
		return nil, fmt.Errorf("%w: sequence=%f overlap=%f search=%f",
			ErrWindows, cfg.sequenceMs, cfg.overlapMs, cfg.searchMs)
	}

	if cfg.overlapMs >= cfg.sequenceMs {
		return nil, fmt.Errorf("%w: overlap %f ms must be shorter than sequence %f ms",
			ErrWindows, cfg.overlapMs, cfg.sequenceMs)
	}

	s := &Stretcher{sampleRate: sampleRate}
	s.sequenceLen = max(32, msToSamples(cfg.sequenceMs, sampleRate))
	s.overlapLen = max(8, msToSamples(cfg.overlapMs, sampleRate))
	if s.overlapLen >= s.sequenceLen {
		return nil, fmt.Errorf("%w: overlap %d samples too large for sequence %d",
			ErrWindows, s.overlapLen, s.sequenceLen)
	}

	s.stepOut = s.sequenceLen - s.overlapLen
	s.searchLen = max(1, msToSamples(cfg.searchMs, sampleRate))

	s.fadeIn = make([]float64, s.overlapLen)
	s.fadeOut = make([]float64, s.overlapLen)
	for i := range s.overlapLen {
		t := float64(i) / float64(s.overlapLen-1)
		in := 0.5 - 0.5*math.Cos(math.Pi*t)
		s.fadeIn[i] = in
		s.fadeOut[i] = 1 - in
	}

	return s, nil
}

// SampleRate returns the rate the window geometry was built for.
func (s *Stretcher) SampleRate() float64 { return s.sampleRate }

// TimeStretch speeds input up by rate without changing its pitch.
// rate > 1 shortens the buffer, rate < 1 lengthens it; the result has
// round(len(input)/rate) samples, at least one.
func (s *Stretcher) TimeStretch(input []float64, rate float64) ([]float64, error) {
	if !core.IsFinitePositive(rate) {
		return nil, fmt.Errorf("%w: rate must be positive and finite: %f", ErrRatio, rate)
	}

	if len(input) == 0 {
		return []float64{}, nil
	}

	if math.Abs(rate-1) <= identityEps {
		return clone(input), nil
	}

	return s.stretchChained(input, 1/rate)
}

// PitchShift transposes input by semitones and keeps its length.
func (s *Stretcher) PitchShift(input []float64, semitones float64) ([]float64, error) {
	if !core.IsFinite(semitones) {
		return nil, fmt.Errorf("%w: semitones must be finite: %f", ErrRatio, semitones)
	}

	ratio := math.Pow(2, semitones/12)
	if !core.IsFinitePositive(ratio) {
		return nil, fmt.Errorf("%w: %f semitones", ErrRatio, semitones)
	}

	if len(input) == 0 {
		return []float64{}, nil
	}

	if math.Abs(ratio-1) <= identityEps {
		return clone(input), nil
	}

	stretched, err := s.stretchChained(input, ratio)
	if err != nil {
		return nil, fmt.Errorf("%w (%f semitones)", err, semitones)
	}

	return resampleHermite(stretched, len(input)), nil
}

// TimeStretch is a one-shot helper around New and Stretcher.TimeStretch.
func TimeStretch(input []float64, rate float64, sampleRate int) ([]float64, error) {
	s, err := New(float64(sampleRate))
	if err != nil {
		return nil, err
	}

	return s.TimeStretch(input, rate)
}

// PitchShift is a one-shot helper around New and Stretcher.PitchShift.
func PitchShift(input []float64, semitones float64, sampleRate int) ([]float64, error) {
	s, err := New(float64(sampleRate))
	if err != nil {
		return nil, err
	}

	return s.PitchShift(input, semitones)
}

func msToSamples(ms, sampleRate float64) int {
	return int(math.Round(ms * 0.001 * sampleRate))
}

func clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	return out
}
