package sequencer

import (
	"math"

	"github.com/cwbudde/algo-wiggle/synth"
)

// Translate returns a copy of p with every direct event shifted by amount.
// Nested patterns are left alone; they move with the event that holds them.
func Translate(p *Params, amount float64) *Params {
	out := p.clone()
	for i := range out.Events {
		out.Events[i].Time += amount
	}

	return out
}

// TimeScale returns a copy of p with every direct event time multiplied by
// factor.
func TimeScale(p *Params, factor float64) *Params {
	out := p.clone()
	for i := range out.Events {
		out.Events[i].Time *= factor
	}

	return out
}

// Overlay returns the events of a followed by the events of b, with a's
// speed and normalize flag. Patterns with different speeds cannot be
// overlaid because b's times would be reinterpreted.
func Overlay(a, b *Params) (*Params, error) {
	if a.Speed != b.Speed {
		return nil, synth.Invalidf("sequencer: overlay of speeds %g and %g", a.Speed, b.Speed)
	}

	out := a.clone()
	for _, e := range b.Events {
		out.Events = append(out.Events, e.Clone())
	}

	return out, nil
}

// Repeat places copies of proto at offsets 0, every, 2*every, ... while the
// offset is below duration. The result has speed 1.
func Repeat(every, duration float64, proto Event) (*Params, error) {
	if !(every > 0) || math.IsInf(every, 0) {
		return nil, synth.Invalidf("sequencer: repeat step must be positive, got %g", every)
	}

	if math.IsNaN(duration) || math.IsInf(duration, 1) {
		return nil, synth.Invalidf("sequencer: repeat duration must be finite, got %g", duration)
	}

	out := &Params{Speed: 1}
	// Offsets are computed as i*every so that error does not accumulate.
	for i := 0; ; i++ {
		offset := float64(i) * every
		if offset >= duration {
			break
		}

		out.Events = append(out.Events, proto.Translate(offset))
	}

	return out, nil
}
