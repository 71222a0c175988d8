package sequencer

import (
	"fmt"

	"github.com/cwbudde/algo-wiggle/synth"
)

// SynthResolver maps a serialized synth reference (an integer id, a numeric
// string or a name) to a renderer.
type SynthResolver func(ref any) (synth.Synth, error)

// ParamsDecoder rebuilds the params accepted by s from their map form.
type ParamsDecoder func(s synth.Synth, m map[string]any) (synth.Params, error)

type eventDoc struct {
	Synth  any            `mapstructure:"synth"`
	Time   float64        `mapstructure:"time"`
	Gain   *float64       `mapstructure:"gain"`
	Params map[string]any `mapstructure:"params"`
}

type paramsDoc struct {
	Speed     *float64   `mapstructure:"speed"`
	Normalize bool       `mapstructure:"normalize"`
	Events    []eventDoc `mapstructure:"events"`
}

// ParamsFromMap rebuilds a pattern from the form produced by ToMap.
//
// Each event's synth reference goes through resolve and its params through
// decode, which may call back into ParamsFromMap for nested patterns. A
// missing speed defaults to 1 and a missing gain to 1. The result is not
// validated.
func ParamsFromMap(m map[string]any, resolve SynthResolver, decode ParamsDecoder) (*Params, error) {
	var doc paramsDoc
	if err := synth.DecodeMap(m, &doc); err != nil {
		return nil, fmt.Errorf("sequencer: %w", err)
	}

	p := &Params{Speed: 1, Normalize: doc.Normalize, Events: make([]Event, 0, len(doc.Events))}
	if doc.Speed != nil {
		p.Speed = *doc.Speed
	}

	for i, ed := range doc.Events {
		if ed.Synth == nil {
			return nil, synth.Invalidf("sequencer: event %d: missing synth", i)
		}

		s, err := resolve(ed.Synth)
		if err != nil {
			return nil, fmt.Errorf("sequencer: event %d: %w", i, err)
		}

		params, err := decode(s, ed.Params)
		if err != nil {
			return nil, fmt.Errorf("sequencer: event %d: %w", i, err)
		}

		e := Event{Time: ed.Time, Gain: 1, Synth: s, Params: params}
		if ed.Gain != nil {
			e.Gain = *ed.Gain
		}

		p.Events = append(p.Events, e)
	}

	return p, nil
}
