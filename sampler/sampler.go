// Package sampler renders leaf events from fetched audio.
//
// The pipeline runs in a fixed order and every stage after slicing is
// optional: fetch, slice, time-stretch, pitch-shift, Gaussian bandpass,
// convolution reverb, gain envelope, peak normalization. Whole renders are
// memoized per Sampler, keyed by the parameters and the sample rate.
package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/cwbudde/algo-wiggle/dsp/conv"
	"github.com/cwbudde/algo-wiggle/dsp/core"
	"github.com/cwbudde/algo-wiggle/dsp/spectral"
	"github.com/cwbudde/algo-wiggle/dsp/stretch"
	"github.com/cwbudde/algo-wiggle/fetch"
	"github.com/cwbudde/algo-wiggle/internal/cache"
	"github.com/cwbudde/algo-wiggle/synth"
)

const (
	// ID is the registry id of the sampler.
	ID = 1
	// Name is the registry name of the sampler.
	Name = "sampler"

	defaultMemoBudget = 64 << 20
)

// Option configures a Sampler.
type Option func(*Sampler)

// WithMemoBudget bounds the render memo in bytes of sample data. A budget
// of zero or less disables memoization.
func WithMemoBudget(bytes int64) Option {
	return func(s *Sampler) { s.memoBudget = bytes }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Sampler renders [Parameters] from audio provided by a fetcher. It is safe
// for concurrent use.
type Sampler struct {
	fetcher    fetch.Fetcher
	logger     *log.Logger
	memoBudget int64
	memo       *cache.Group[string, []float64]
}

var _ synth.Synth = (*Sampler)(nil)

// New returns a Sampler reading sources through f.
func New(f fetch.Fetcher, opts ...Option) (*Sampler, error) {
	if f == nil {
		return nil, errors.New("sampler: nil fetcher")
	}

	s := &Sampler{
		fetcher:    f,
		logger:     log.Default(),
		memoBudget: defaultMemoBudget,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.memoBudget > 0 {
		lru := cache.NewLRU[string, []float64](s.memoBudget, func(b []float64) int64 { return int64(len(b)) * 8 })
		s.memo = cache.NewGroup(lru, func(k string) string { return k })
	}

	return s, nil
}

// ID returns 1.
func (s *Sampler) ID() int { return ID }

// Name returns "sampler".
func (s *Sampler) Name() string { return Name }

// Tag returns the parameter shape accepted by Render.
func (s *Sampler) Tag() string { return Tag }

// Fetcher returns the source of audio.
func (s *Sampler) Fetcher() fetch.Fetcher { return s.fetcher }

// MemoStats reports render memo usage. It is zero when memoization is off.
func (s *Sampler) MemoStats() cache.Stats {
	if s.memo == nil {
		return cache.Stats{}
	}

	return s.memo.Stats()
}

// Render runs the pipeline for p at sampleRate. The returned slice is the
// caller's to modify.
func (s *Sampler) Render(ctx context.Context, p synth.Params, sampleRate int) ([]float64, error) {
	params, ok := p.(*Parameters)
	if !ok {
		return nil, &synth.MismatchError{Synth: Name, Got: p}
	}

	if sampleRate <= 0 {
		return nil, synth.Invalidf("sampler: sample rate must be positive, got %d", sampleRate)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if s.memo == nil {
		return s.render(ctx, params, sampleRate)
	}

	key, err := memoKey(params, sampleRate)
	if err != nil {
		return nil, err
	}

	buf, hit, err := s.memo.Get(ctx, key, func(ctx context.Context) ([]float64, error) {
		return s.render(ctx, params, sampleRate)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		s.logger.Debug("sampler memo hit", "url", params.URL, "samples", len(buf))
	}

	out := make([]float64, len(buf))
	copy(out, buf)

	return out, nil
}

func memoKey(p *Parameters, sampleRate int) (string, error) {
	// encoding/json sorts map keys, so equal parameters give equal keys.
	b, err := json.Marshal(p.ToMap())
	if err != nil {
		return "", fmt.Errorf("%w: sampler: %w", synth.ErrInvalid, err)
	}

	return strconv.Itoa(sampleRate) + "\x00" + string(b), nil
}

func (s *Sampler) render(ctx context.Context, p *Parameters, sampleRate int) ([]float64, error) {
	samples, err := s.source(ctx, p.URL, sampleRate)
	if err != nil {
		return nil, err
	}

	start := core.SecondsToSamples(p.StartSeconds, sampleRate)
	n := core.SecondsToSamples(p.DurationSeconds, sampleRate)
	if p.DurationSeconds > 0 && n == 0 {
		// A duration shorter than one sample selects nothing.
		samples = []float64{}
	} else {
		samples = core.Slice(samples, start, n)
	}

	if p.TimeStretch != nil && *p.TimeStretch != 0 {
		if samples, err = stretch.TimeStretch(samples, *p.TimeStretch, sampleRate); err != nil {
			return nil, fmt.Errorf("%w: sampler: time stretch: %w", synth.ErrInvalid, err)
		}
	}

	if p.PitchShift != nil && *p.PitchShift != 0 {
		if samples, err = stretch.PitchShift(samples, *p.PitchShift, sampleRate); err != nil {
			return nil, fmt.Errorf("%w: sampler: pitch shift: %w", synth.ErrInvalid, err)
		}
	}

	if f := p.Filter; f != nil {
		if samples, err = spectral.GaussianBandpass(samples, f.CenterFrequency, f.Bandwidth); err != nil {
			return nil, fmt.Errorf("%w: sampler: filter: %w", synth.ErrInvalid, err)
		}
	}

	if r := p.Reverb; r != nil {
		if samples, err = s.reverb(ctx, samples, r, sampleRate); err != nil {
			return nil, err
		}
	}

	if p.Gain != nil {
		c, err := p.Gain.curve()
		if err != nil {
			return nil, err
		}

		env, err := c.Sample(len(samples), 0, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: sampler: gain: %w", synth.ErrInvalid, err)
		}

		core.ApplyEnvelopeInPlace(samples, env)
	}

	if p.Normalize != nil && *p.Normalize {
		core.NormalizeInPlace(samples)
	}

	return samples, nil
}

func (s *Sampler) reverb(ctx context.Context, dry []float64, r *ReverbParameters, sampleRate int) ([]float64, error) {
	ir, err := s.source(ctx, r.URL, sampleRate)
	if err != nil {
		return nil, err
	}

	wet, err := conv.Clamped(dry, ir)
	if err != nil {
		return nil, fmt.Errorf("sampler: reverb: %w", err)
	}

	dry, wet = core.EqualizeLengths(dry, wet)

	return core.Crossfade(dry, wet, r.Mix), nil
}

// source fetches url and converts it to sampleRate when the fetcher runs at
// a different rate. Errors always match synth.ErrFetch.
func (s *Sampler) source(ctx context.Context, url string, sampleRate int) ([]float64, error) {
	buf, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, synth.ErrFetch) {
			return nil, err
		}

		return nil, &fetch.Error{URL: url, Err: err}
	}

	if from := s.fetcher.SampleRate(); from != sampleRate {
		if buf, err = spectral.Resample(buf, from, sampleRate); err != nil {
			return nil, &fetch.Error{URL: url, Err: err}
		}
	}

	return buf, nil
}
