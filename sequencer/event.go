package sequencer

import (
	"fmt"

	"github.com/cwbudde/algo-wiggle/synth"
)

// Event schedules one render of Synth with Params at Time, scaled by Gain.
//
// Time is in timeline units of the enclosing Params and is divided by the
// enclosing speed at render time. An Event owns its Params; use Clone when
// the same event is placed more than once.
type Event struct {
	Time   float64
	Gain   float64
	Synth  synth.Synth
	Params synth.Params
}

// Once wraps p as a single event at time zero with unit gain. p is deep
// copied, so later changes to p do not affect the event.
func Once(s synth.Synth, p synth.Params) Event {
	e := Event{Gain: 1, Synth: s}
	if p != nil {
		e.Params = p.Clone()
	}

	return e
}

// Clone returns a copy of e with its own Params.
func (e Event) Clone() Event {
	if e.Params != nil {
		e.Params = e.Params.Clone()
	}

	return e
}

// Translate returns a copy of e shifted by amount.
func (e Event) Translate(amount float64) Event {
	out := e.Clone()
	out.Time += amount

	return out
}

func (e Event) validate(i int) error {
	switch {
	case e.Synth == nil:
		return synth.Invalidf("sequencer: event %d: missing synth", i)
	case e.Params == nil:
		return synth.Invalidf("sequencer: event %d: missing params", i)
	case e.Time < 0:
		return synth.Invalidf("sequencer: event %d: negative time %g", i, e.Time)
	}

	if err := e.Params.Validate(); err != nil {
		return fmt.Errorf("sequencer: event %d: %w", i, err)
	}

	return nil
}
