// Package sequencer composes timed events into one buffer.
//
// A pattern ([Params]) lists events, each naming a synth and its
// parameters. [Sequencer] renders every event, scales it by the event gain
// and mixes it onto a zero-filled canvas at round(time/speed*sampleRate).
// Events may themselves hold patterns, so compositions nest to any depth.
//
// The algebra in this package ([Translate], [TimeScale], [Overlay],
// [Repeat], [Once]) builds patterns without mutating its inputs.
package sequencer

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-wiggle/dsp/core"
	"github.com/cwbudde/algo-wiggle/synth"
)

const (
	// ID is the registry id of the sequencer.
	ID = 2
	// Name is the registry name of the sequencer.
	Name = "sequencer"
)

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConcurrency renders up to n sibling events at once. Mixing stays
// sequential and in event order, so output does not depend on n. Values
// below 1 are treated as 1.
func WithConcurrency(n int) Option {
	return func(s *Sequencer) { s.concurrency = max(1, n) }
}

// Sequencer renders [Params].
type Sequencer struct {
	logger      *log.Logger
	concurrency int
}

var _ synth.Synth = (*Sequencer)(nil)

// New returns a Sequencer.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{logger: log.Default(), concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// ID returns 2.
func (s *Sequencer) ID() int { return ID }

// Name returns "sequencer".
func (s *Sequencer) Name() string { return Name }

// Tag returns the parameter shape accepted by Render.
func (s *Sequencer) Tag() string { return Tag }

// Render mixes every event of p into one buffer at sampleRate.
//
// p must be a *Params with positive speed and at least one event. Writes
// that would land past the canvas are clipped. Samples are not clamped
// unless p.Normalize is set.
func (s *Sequencer) Render(ctx context.Context, p synth.Params, sampleRate int) ([]float64, error) {
	params, ok := p.(*Params)
	if !ok {
		return nil, &synth.MismatchError{Synth: Name, Got: p}
	}

	if sampleRate <= 0 {
		return nil, synth.Invalidf("sequencer: sample rate must be positive, got %d", sampleRate)
	}

	if err := params.validateShallow(); err != nil {
		return nil, err
	}

	starts := make([]int, len(params.Events))
	for i, e := range params.Events {
		if e.Synth == nil || e.Params == nil {
			return nil, synth.Invalidf("sequencer: event %d: missing synth or params", i)
		}

		start := math.Round(e.Time / params.Speed * float64(sampleRate))
		if !(start >= 0 && start <= core.MaxSamples) {
			return nil, synth.Invalidf("sequencer: event %d: start sample %g not in [0, %d]", i, start, core.MaxSamples)
		}

		starts[i] = int(start)
	}

	renders, err := s.renderEvents(ctx, params.Events, sampleRate)
	if err != nil {
		return nil, err
	}

	length := 0
	for i, r := range renders {
		end := starts[i] + len(r)
		if len(r) > core.MaxSamples || end > core.MaxSamples {
			return nil, synth.Invalidf("sequencer: event %d ends past %d samples", i, core.MaxSamples)
		}

		length = max(length, end)
	}

	canvas := make([]float64, length)
	for i, r := range renders {
		core.MixAt(canvas, r, starts[i])
	}

	if params.Normalize {
		core.NormalizeInPlace(canvas)
	}

	s.logger.Debug("rendered pattern",
		"events", len(params.Events),
		"seconds", float64(len(canvas))/float64(sampleRate))

	return canvas, nil
}

// renderEvents renders each event and applies its gain. Results are
// indexed like events.
func (s *Sequencer) renderEvents(ctx context.Context, events []Event, sampleRate int) ([][]float64, error) {
	renders := make([][]float64, len(events))
	render := func(i int) error {
		e := events[i]
		buf, err := e.Synth.Render(ctx, e.Params, sampleRate)
		if err != nil {
			return err
		}

		renders[i] = core.Scaled(buf, e.Gain)

		return nil
	}

	if s.concurrency <= 1 || len(events) == 1 {
		for i := range events {
			if err := render(i); err != nil {
				return nil, err
			}
		}

		return renders, nil
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range events {
		g.Go(func() error { return render(i) })
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return renders, nil
}
