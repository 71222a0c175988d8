package sampler

import (
	"math"

	"github.com/cwbudde/algo-wiggle/dsp/core"
	"github.com/cwbudde/algo-wiggle/dsp/interp"
	"github.com/cwbudde/algo-wiggle/sequencer"
	"github.com/cwbudde/algo-wiggle/synth"
)

// Tag names the parameter shape rendered by Sampler.
const Tag = "sampler"

// FilterParameters configures the Gaussian bandpass. CenterFrequency is a
// fraction of Nyquist and Bandwidth the standard deviation in the same
// unit.
type FilterParameters struct {
	CenterFrequency float64 `mapstructure:"center_frequency"`
	Bandwidth       float64 `mapstructure:"bandwidth"`
}

// GainKeyPoint is one envelope keypoint. TimeSeconds is a position on the
// unit interval that is stretched over the rendered buffer.
type GainKeyPoint struct {
	TimeSeconds float64 `mapstructure:"time_seconds"`
	GainValue   float64 `mapstructure:"gain_value"`
}

// GainParameters describes an amplitude envelope.
type GainParameters struct {
	Interpolation string         `mapstructure:"interpolation"`
	Keypoints     []GainKeyPoint `mapstructure:"keypoints"`
}

// ReverbParameters convolves the sound with the impulse response at URL and
// mixes Mix of the result with 1-Mix of the dry signal.
type ReverbParameters struct {
	URL string  `mapstructure:"url"`
	Mix float64 `mapstructure:"mix"`
}

// Parameters describes one sampler render. Nil optional fields skip their
// processing stage.
type Parameters struct {
	URL             string  `mapstructure:"url"`
	StartSeconds    float64 `mapstructure:"start_seconds"`
	DurationSeconds float64 `mapstructure:"duration_seconds"`

	TimeStretch *float64          `mapstructure:"time_stretch"`
	PitchShift  *float64          `mapstructure:"pitch_shift"`
	Filter      *FilterParameters `mapstructure:"filter"`
	Normalize   *bool             `mapstructure:"normalize"`
	Gain        *GainParameters   `mapstructure:"gain"`
	Reverb      *ReverbParameters `mapstructure:"reverb"`
}

var _ synth.Params = (*Parameters)(nil)

// Kind reports a leaf node.
func (p *Parameters) Kind() synth.Kind { return synth.KindLeaf }

// Clone returns a deep copy of p.
func (p *Parameters) Clone() synth.Params { return p.clone() }

func (p *Parameters) clone() *Parameters {
	out := *p
	if p.TimeStretch != nil {
		v := *p.TimeStretch
		out.TimeStretch = &v
	}

	if p.PitchShift != nil {
		v := *p.PitchShift
		out.PitchShift = &v
	}

	if p.Filter != nil {
		f := *p.Filter
		out.Filter = &f
	}

	if p.Normalize != nil {
		v := *p.Normalize
		out.Normalize = &v
	}

	if p.Gain != nil {
		g := GainParameters{Interpolation: p.Gain.Interpolation}
		if p.Gain.Keypoints != nil {
			g.Keypoints = append([]GainKeyPoint(nil), p.Gain.Keypoints...)
		}

		out.Gain = &g
	}

	if p.Reverb != nil {
		r := *p.Reverb
		out.Reverb = &r
	}

	return &out
}

// Sources returns the source URL followed by the impulse response URL, if
// any.
func (p *Parameters) Sources() []synth.SourceMaterial {
	out := []synth.SourceMaterial{{URL: p.URL}}
	if p.Reverb != nil {
		out = append(out, synth.SourceMaterial{URL: p.Reverb.URL})
	}

	return out
}

// Children returns nil.
func (p *Parameters) Children() []synth.Params { return nil }

// Validate reports the first out-of-range field.
func (p *Parameters) Validate() error {
	switch {
	case p.URL == "":
		return synth.Invalidf("sampler: missing url")
	case !finiteNonNegative(p.StartSeconds):
		return synth.Invalidf("sampler: start_seconds must be >= 0, got %g", p.StartSeconds)
	case !finiteNonNegative(p.DurationSeconds):
		return synth.Invalidf("sampler: duration_seconds must be >= 0, got %g", p.DurationSeconds)
	}

	// Zero stretch and zero shift skip their stage.
	if p.TimeStretch != nil && !finiteNonNegative(*p.TimeStretch) {
		return synth.Invalidf("sampler: time_stretch must be >= 0, got %g", *p.TimeStretch)
	}

	if p.PitchShift != nil && !core.IsFinite(*p.PitchShift) {
		return synth.Invalidf("sampler: pitch_shift must be finite, got %g", *p.PitchShift)
	}

	if f := p.Filter; f != nil {
		if !(f.CenterFrequency >= 0 && f.CenterFrequency <= 1) {
			return synth.Invalidf("sampler: filter center_frequency %g not in [0, 1]", f.CenterFrequency)
		}

		if !(f.Bandwidth > 0) || math.IsInf(f.Bandwidth, 1) {
			return synth.Invalidf("sampler: filter bandwidth must be positive, got %g", f.Bandwidth)
		}
	}

	if p.Gain != nil {
		if _, err := p.Gain.curve(); err != nil {
			return err
		}
	}

	if r := p.Reverb; r != nil {
		if r.URL == "" {
			return synth.Invalidf("sampler: reverb missing url")
		}

		if !(r.Mix >= 0 && r.Mix <= 1) {
			return synth.Invalidf("sampler: reverb mix %g not in [0, 1]", r.Mix)
		}
	}

	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// curve builds the envelope, wrapping construction errors as ErrInvalid.
func (g *GainParameters) curve() (*interp.Curve, error) {
	kind, err := interp.ParseKind(g.Interpolation)
	if err != nil {
		return nil, synth.Invalidf("sampler: gain: %v", err)
	}

	points := make([]interp.Point, len(g.Keypoints))
	for i, k := range g.Keypoints {
		if math.IsNaN(k.TimeSeconds) || math.IsNaN(k.GainValue) {
			return nil, synth.Invalidf("sampler: gain: keypoint %d is NaN", i)
		}

		points[i] = interp.Point{X: k.TimeSeconds, Y: k.GainValue}
	}

	c, err := interp.NewCurve(kind, points)
	if err != nil {
		return nil, synth.Invalidf("sampler: gain: %v", err)
	}

	return c, nil
}

// ToMap returns the map form. Absent optional fields are omitted.
func (p *Parameters) ToMap() map[string]any {
	m := map[string]any{
		"url":              p.URL,
		"start_seconds":    p.StartSeconds,
		"duration_seconds": p.DurationSeconds,
	}

	if p.TimeStretch != nil {
		m["time_stretch"] = *p.TimeStretch
	}

	if p.PitchShift != nil {
		m["pitch_shift"] = *p.PitchShift
	}

	if f := p.Filter; f != nil {
		m["filter"] = map[string]any{
			"center_frequency": f.CenterFrequency,
			"bandwidth":        f.Bandwidth,
		}
	}

	if p.Normalize != nil {
		m["normalize"] = *p.Normalize
	}

	if g := p.Gain; g != nil {
		keypoints := make([]any, len(g.Keypoints))
		for i, k := range g.Keypoints {
			keypoints[i] = map[string]any{
				"time_seconds": k.TimeSeconds,
				"gain_value":   k.GainValue,
			}
		}

		m["gain"] = map[string]any{
			"interpolation": g.Interpolation,
			"keypoints":     keypoints,
		}
	}

	if r := p.Reverb; r != nil {
		m["reverb"] = map[string]any{
			"url": r.URL,
			"mix": r.Mix,
		}
	}

	return m
}

// ParametersFromMap decodes the form produced by ToMap. Missing optional
// fields stay nil. The result is not validated.
func ParametersFromMap(m map[string]any) (*Parameters, error) {
	p := &Parameters{}
	if err := synth.DecodeMap(m, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Once wraps p as a single event rendered by s.
func (p *Parameters) Once(s synth.Synth) sequencer.Event { return sequencer.Once(s, p) }
