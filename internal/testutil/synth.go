package testutil

import (
	"context"
	"sync/atomic"

	"github.com/cwbudde/algo-wiggle/synth"
)

// ToneTag is the parameter tag of ToneSynth.
const ToneTag = "tone"

// ToneParams describes a constant buffer of Samples samples at Value. URL,
// when set, is reported as source material.
type ToneParams struct {
	Samples int     `mapstructure:"samples"`
	Value   float64 `mapstructure:"value"`
	URL     string  `mapstructure:"url"`
}

// Kind reports a leaf.
func (p *ToneParams) Kind() synth.Kind { return synth.KindLeaf }

// Clone copies p.
func (p *ToneParams) Clone() synth.Params {
	c := *p
	return &c
}

// Sources returns URL if set.
func (p *ToneParams) Sources() []synth.SourceMaterial {
	if p.URL == "" {
		return nil
	}

	return []synth.SourceMaterial{{URL: p.URL}}
}

// Children returns nil.
func (p *ToneParams) Children() []synth.Params { return nil }

// Validate rejects negative lengths.
func (p *ToneParams) Validate() error {
	if p.Samples < 0 {
		return synth.Invalidf("tone: negative length %d", p.Samples)
	}

	return nil
}

// ToMap returns the map form decoded by ToneParamsFromMap.
func (p *ToneParams) ToMap() map[string]any {
	return map[string]any{"samples": p.Samples, "value": p.Value, "url": p.URL}
}

// ToneParamsFromMap decodes the map form of ToneParams.
func ToneParamsFromMap(m map[string]any) (*ToneParams, error) {
	p := &ToneParams{}
	if err := synth.DecodeMap(m, p); err != nil {
		return nil, err
	}

	return p, nil
}

// ToneSynth renders ToneParams and counts its renders.
type ToneSynth struct {
	SynthID   int
	SynthName string
	renders   atomic.Int64
}

// NewToneSynth returns a ToneSynth with the given registry identity.
func NewToneSynth(id int, name string) *ToneSynth {
	return &ToneSynth{SynthID: id, SynthName: name}
}

// ID returns SynthID.
func (s *ToneSynth) ID() int { return s.SynthID }

// Name returns SynthName.
func (s *ToneSynth) Name() string { return s.SynthName }

// Tag returns ToneTag.
func (s *ToneSynth) Tag() string { return ToneTag }

// Render returns p.Samples copies of p.Value.
func (s *ToneSynth) Render(_ context.Context, p synth.Params, _ int) ([]float64, error) {
	tp, ok := p.(*ToneParams)
	if !ok {
		return nil, &synth.MismatchError{Synth: s.SynthName, Got: p}
	}

	if err := tp.Validate(); err != nil {
		return nil, err
	}

	s.renders.Add(1)

	return DC(tp.Value, tp.Samples), nil
}

// Renders returns how often Render produced a buffer.
func (s *ToneSynth) Renders() int { return int(s.renders.Load()) }
