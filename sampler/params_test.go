package sampler

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-wiggle/internal/testutil"
	"github.com/cwbudde/algo-wiggle/synth"
)

func ptr[T any](v T) *T { return &v }

// withOptional returns parameters carrying the optional fields selected by
// the bits of mask.
func withOptional(mask int) *Parameters {
	p := &Parameters{URL: "https://example.com/kick.wav", StartSeconds: 0.5, DurationSeconds: 1.25}
	if mask&1 != 0 {
		p.TimeStretch = ptr(1.5)
	}

	if mask&2 != 0 {
		p.PitchShift = ptr(-3.0)
	}

	if mask&4 != 0 {
		p.Filter = &FilterParameters{CenterFrequency: 0.25, Bandwidth: 0.05}
	}

	if mask&8 != 0 {
		p.Normalize = ptr(true)
	}

	if mask&16 != 0 {
		p.Gain = &GainParameters{Interpolation: "cubic", Keypoints: []GainKeyPoint{
			{TimeSeconds: 0, GainValue: 0},
			{TimeSeconds: 0.2, GainValue: 1},
			{TimeSeconds: 1, GainValue: 0.1},
		}}
	}

	if mask&32 != 0 {
		p.Reverb = &ReverbParameters{URL: "https://example.com/hall.wav", Mix: 0.3}
	}

	return p
}

func TestParametersRoundTrip(t *testing.T) {
	t.Parallel()

	for mask := range 64 {
		want := withOptional(mask)

		got, err := ParametersFromMap(want.ToMap())
		if err != nil {
			t.Fatalf("mask %06b: ParametersFromMap() error = %v", mask, err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("mask %06b: map round trip = %+v, want %+v", mask, got, want)
		}

		// The same through JSON, where every number arrives as float64.
		b, err := json.Marshal(want.ToMap())
		if err != nil {
			t.Fatalf("mask %06b: json.Marshal() error = %v", mask, err)
		}

		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("mask %06b: json.Unmarshal() error = %v", mask, err)
		}

		got, err = ParametersFromMap(m)
		if err != nil {
			t.Fatalf("mask %06b: ParametersFromMap(json) error = %v", mask, err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("mask %06b: json round trip = %+v, want %+v", mask, got, want)
		}
	}
}

func TestParametersToMapOmitsAbsent(t *testing.T) {
	t.Parallel()

	m := withOptional(0).ToMap()
	if len(m) != 3 {
		t.Fatalf("ToMap() = %v, want only url and timing", m)
	}

	for _, key := range []string{"url", "start_seconds", "duration_seconds"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("ToMap() missing %q", key)
		}
	}
}

func TestParametersFromMapRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := ParametersFromMap(map[string]any{"url": "a", "volume": 2})
	if !errors.Is(err, synth.ErrInvalid) {
		t.Fatalf("ParametersFromMap() error = %v, want ErrInvalid", err)
	}
}

func TestParametersValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *Parameters)
		wantErr bool
	}{
		{name: "all fields", mutate: func(*Parameters) {}},
		{name: "missing url", mutate: func(p *Parameters) { p.URL = "" }, wantErr: true},
		{name: "negative start", mutate: func(p *Parameters) { p.StartSeconds = -1 }, wantErr: true},
		{name: "NaN duration", mutate: func(p *Parameters) { p.DurationSeconds = math.NaN() }, wantErr: true},
		{name: "fast stretch", mutate: func(p *Parameters) { p.TimeStretch = ptr(8.0) }},
		{name: "zero stretch skips", mutate: func(p *Parameters) { p.TimeStretch = ptr(0.0) }},
		{name: "negative stretch", mutate: func(p *Parameters) { p.TimeStretch = ptr(-2.0) }, wantErr: true},
		{name: "infinite stretch", mutate: func(p *Parameters) { p.TimeStretch = ptr(math.Inf(1)) }, wantErr: true},
		{name: "three octave shift", mutate: func(p *Parameters) { p.PitchShift = ptr(36.0) }},
		{name: "NaN shift", mutate: func(p *Parameters) { p.PitchShift = ptr(math.NaN()) }, wantErr: true},
		{name: "center above one", mutate: func(p *Parameters) { p.Filter.CenterFrequency = 1.5 }, wantErr: true},
		{name: "zero bandwidth", mutate: func(p *Parameters) { p.Filter.Bandwidth = 0 }, wantErr: true},
		{name: "unknown interpolation", mutate: func(p *Parameters) { p.Gain.Interpolation = "sinc" }, wantErr: true},
		{name: "no keypoints", mutate: func(p *Parameters) { p.Gain.Keypoints = nil }, wantErr: true},
		{
			name: "keypoints out of order",
			mutate: func(p *Parameters) {
				p.Gain.Keypoints = []GainKeyPoint{{TimeSeconds: 0.5}, {TimeSeconds: 0.25}}
			},
			wantErr: true,
		},
		{
			name: "repeated keypoint time",
			mutate: func(p *Parameters) {
				p.Gain.Keypoints = []GainKeyPoint{{TimeSeconds: 0.5}, {TimeSeconds: 0.5, GainValue: 1}}
			},
		},
		{name: "reverb without url", mutate: func(p *Parameters) { p.Reverb.URL = "" }, wantErr: true},
		{name: "reverb mix above one", mutate: func(p *Parameters) { p.Reverb.Mix = 1.01 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := withOptional(63)
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, synth.ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParametersCloneIsDeep(t *testing.T) {
	t.Parallel()

	p := withOptional(63)
	c := p.Clone().(*Parameters)
	*c.TimeStretch = 3
	c.Gain.Keypoints[0].GainValue = 9
	c.Reverb.Mix = 1
	c.Filter.Bandwidth = 1

	if !reflect.DeepEqual(p, withOptional(63)) {
		t.Fatalf("Clone() shares state with the original: %+v", p)
	}
}

func TestParametersSources(t *testing.T) {
	t.Parallel()

	got := withOptional(32).Sources()
	want := []synth.SourceMaterial{
		{URL: "https://example.com/kick.wav"},
		{URL: "https://example.com/hall.wav"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}

	if n := len(withOptional(0).Sources()); n != 1 {
		t.Fatalf("len(Sources()) without reverb = %d, want 1", n)
	}
}

func TestParametersOnce(t *testing.T) {
	t.Parallel()

	s, err := New(testutil.NewFakeFetcher(100, nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p := withOptional(0)
	e := p.Once(s)
	if e.Time != 0 || e.Gain != 1 || e.Synth != s {
		t.Fatalf("Once() = %+v", e)
	}

	p.URL = "changed"
	if e.Params.(*Parameters).URL == "changed" {
		t.Fatal("Once() aliased params")
	}
}
