package sequencer

import (
	"math"

	"github.com/cwbudde/algo-wiggle/synth"
)

// Tag names the parameter shape rendered by Sequencer.
const Tag = "sequencer"

// Params is a pattern: an ordered list of events on a shared timeline.
//
// Event times are divided by Speed when placed, so Speed 2 plays the
// pattern twice as fast. Normalize scales the mixed result to unit peak.
type Params struct {
	Events    []Event
	Speed     float64
	Normalize bool
}

// NewParams returns a pattern of events at speed 1. The events are cloned.
func NewParams(events ...Event) *Params {
	p := &Params{Speed: 1, Events: make([]Event, len(events))}
	for i, e := range events {
		p.Events[i] = e.Clone()
	}

	return p
}

var _ synth.Params = (*Params)(nil)

// Kind reports a branch node.
func (p *Params) Kind() synth.Kind { return synth.KindBranch }

// Clone returns a deep copy of p.
func (p *Params) Clone() synth.Params { return p.clone() }

func (p *Params) clone() *Params {
	out := &Params{Speed: p.Speed, Normalize: p.Normalize}
	if p.Events != nil {
		out.Events = make([]Event, len(p.Events))
		for i, e := range p.Events {
			out.Events[i] = e.Clone()
		}
	}

	return out
}

// Sources returns nil; a pattern references audio only through its events.
func (p *Params) Sources() []synth.SourceMaterial { return nil }

// Children returns the params of every event in order.
func (p *Params) Children() []synth.Params {
	out := make([]synth.Params, 0, len(p.Events))
	for _, e := range p.Events {
		if e.Params != nil {
			out = append(out, e.Params)
		}
	}

	return out
}

// Validate checks the speed and every event, recursing into nested
// patterns.
func (p *Params) Validate() error {
	if err := p.validateShallow(); err != nil {
		return err
	}

	for i, e := range p.Events {
		if err := e.validate(i); err != nil {
			return err
		}
	}

	return nil
}

// validateShallow checks what render needs before allocating anything.
func (p *Params) validateShallow() error {
	if !(p.Speed > 0) || math.IsInf(p.Speed, 0) {
		return synth.Invalidf("sequencer: speed must be positive, got %g", p.Speed)
	}

	if len(p.Events) == 0 {
		return synth.Invalidf("sequencer: no events")
	}

	return nil
}

// ToMap converts p into the nested map form. Each event stores its synth
// by integer id.
func (p *Params) ToMap() map[string]any {
	events := make([]any, len(p.Events))
	for i, e := range p.Events {
		em := map[string]any{
			"time": e.Time,
			"gain": e.Gain,
		}

		if e.Synth != nil {
			em["synth"] = e.Synth.ID()
		}

		if e.Params != nil {
			em["params"] = e.Params.ToMap()
		}

		events[i] = em
	}

	return map[string]any{
		"speed":     p.Speed,
		"normalize": p.Normalize,
		"events":    events,
	}
}

// Once wraps the whole pattern as a single event rendered by s, so it can be
// placed inside another pattern.
func (p *Params) Once(s synth.Synth) Event { return Once(s, p) }

// Translate returns a copy of p with every direct event shifted by amount.
func (p *Params) Translate(amount float64) *Params { return Translate(p, amount) }
