package sampler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/cwbudde/algo-wiggle/fetch"
	"github.com/cwbudde/algo-wiggle/internal/testutil"
	"github.com/cwbudde/algo-wiggle/synth"
)

const testRate = 1000

func newTestSampler(t *testing.T, sources map[string][]float64, opts ...Option) (*Sampler, *testutil.FakeFetcher) {
	t.Helper()
	f := testutil.NewFakeFetcher(testRate, sources)
	opts = append([]Option{WithLogger(log.NewWithOptions(io.Discard, log.Options{}))}, opts...)
	s, err := New(f, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return s, f
}

func TestRenderSlice(t *testing.T) {
	t.Parallel()

	src := testutil.Ramp(100)
	tests := []struct {
		name     string
		start    float64
		duration float64
		want     []float64
	}{
		{name: "window", start: 0.01, duration: 0.003, want: []float64{10, 11, 12}},
		{name: "zero duration takes remainder", start: 0.097, want: []float64{97, 98, 99}},
		{name: "window past end is short", start: 0.098, duration: 0.01, want: []float64{98, 99}},
		{name: "start past end is empty", start: 0.2, duration: 0.01, want: []float64{}},
		{name: "sub-sample duration is empty", start: 0.01, duration: 0.0004, want: []float64{}},
		{name: "huge start is empty", start: 1e19, want: []float64{}},
		{name: "huge duration takes remainder", start: 0.098, duration: 1e19, want: []float64{98, 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestSampler(t, map[string][]float64{"src": src})
			got, err := s.Render(context.Background(), &Parameters{
				URL:             "src",
				StartSeconds:    tt.start,
				DurationSeconds: tt.duration,
			}, testRate)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			testutil.RequireSliceNearlyEqual(t, got, tt.want, 0)
		})
	}
}

func TestRenderEnvelope(t *testing.T) {
	t.Parallel()

	s, _ := newTestSampler(t, map[string][]float64{"src": testutil.Ones(5)})
	got, err := s.Render(context.Background(), &Parameters{
		URL: "src",
		Gain: &GainParameters{Interpolation: "linear", Keypoints: []GainKeyPoint{
			{TimeSeconds: 0, GainValue: 0},
			{TimeSeconds: 1, GainValue: 1},
		}},
	}, testRate)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 0.25, 0.5, 0.75, 1}, 1e-12)
}

func TestRenderRejectsNonMonotonicEnvelope(t *testing.T) {
	t.Parallel()

	s, f := newTestSampler(t, map[string][]float64{"src": testutil.Ones(5)})
	_, err := s.Render(context.Background(), &Parameters{
		URL: "src",
		Gain: &GainParameters{Interpolation: "quadratic", Keypoints: []GainKeyPoint{
			{TimeSeconds: 0.5, GainValue: 1},
			{TimeSeconds: 0.1, GainValue: 0},
		}},
	}, testRate)
	if !errors.Is(err, synth.ErrInvalid) {
		t.Fatalf("Render() error = %v, want ErrInvalid", err)
	}

	if f.Calls("src") != 0 {
		t.Fatal("fetched before validating")
	}
}

func TestRenderNormalize(t *testing.T) {
	t.Parallel()

	s, _ := newTestSampler(t, map[string][]float64{
		"src": testutil.DeterministicNoise(7, 4, 256),
	})
	got, err := s.Render(context.Background(), &Parameters{URL: "src", Normalize: ptr(true)}, testRate)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if peak := testutil.MaxAbs(got); peak > 1+1e-8 || peak < 0.999 {
		t.Fatalf("peak = %v, want about 1", peak)
	}
}

func TestRenderReverb(t *testing.T) {
	t.Parallel()

	s, f := newTestSampler(t, map[string][]float64{
		"dry":  testutil.Ones(4),
		"unit": {1},
		"long": testutil.Impulse(10, 0),
	})

	tests := []struct {
		name    string
		ir      string
		mix     float64
		wantLen int
		want0   float64
	}{
		// A one-sample impulse scales the wet path by 1/sqrt(4).
		{name: "dry only", ir: "unit", mix: 0, wantLen: 4, want0: 1},
		{name: "half wet", ir: "unit", mix: 0.5, wantLen: 4, want0: 0.75},
		{name: "long impulse extends", ir: "long", mix: 1, wantLen: 10, want0: 1 / 3.1622776601683795},
	}

	for _, tt := range tests {
		got, err := s.Render(context.Background(), &Parameters{
			URL:    "dry",
			Reverb: &ReverbParameters{URL: tt.ir, Mix: tt.mix},
		}, testRate)
		if err != nil {
			t.Fatalf("%s: Render() error = %v", tt.name, err)
		}

		if len(got) != tt.wantLen {
			t.Fatalf("%s: len = %d, want %d", tt.name, len(got), tt.wantLen)
		}

		if d := got[0] - tt.want0; d > 1e-12 || d < -1e-12 {
			t.Fatalf("%s: got[0] = %v, want %v", tt.name, got[0], tt.want0)
		}
	}

	if f.Calls("unit") != 2 {
		t.Fatalf("impulse fetched %d times, want 2", f.Calls("unit"))
	}
}

func TestRenderStages(t *testing.T) {
	t.Parallel()

	src := testutil.DeterministicSine(50, testRate, 0.5, 1000)
	tests := []struct {
		name    string
		params  *Parameters
		wantLen int
	}{
		{name: "time stretch shortens", params: &Parameters{URL: "src", TimeStretch: ptr(2.0)}, wantLen: 500},
		{name: "time stretch lengthens", params: &Parameters{URL: "src", TimeStretch: ptr(0.5)}, wantLen: 2000},
		{name: "wide time stretch shortens", params: &Parameters{URL: "src", TimeStretch: ptr(8.0)}, wantLen: 125},
		{name: "wide time stretch lengthens", params: &Parameters{URL: "src", TimeStretch: ptr(0.125)}, wantLen: 8000},
		{name: "zero time stretch is skipped", params: &Parameters{URL: "src", TimeStretch: ptr(0.0)}, wantLen: 1000},
		{name: "pitch shift keeps length", params: &Parameters{URL: "src", PitchShift: ptr(7.0)}, wantLen: 1000},
		{name: "three octaves up keeps length", params: &Parameters{URL: "src", PitchShift: ptr(36.0)}, wantLen: 1000},
		{name: "three octaves down keeps length", params: &Parameters{URL: "src", PitchShift: ptr(-36.0)}, wantLen: 1000},
		{
			name:    "filter keeps length",
			params:  &Parameters{URL: "src", Filter: &FilterParameters{CenterFrequency: 0.1, Bandwidth: 0.05}},
			wantLen: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestSampler(t, map[string][]float64{"src": src})
			got, err := s.Render(context.Background(), tt.params, testRate)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}

			testutil.RequireFinite(t, got)
		})
	}
}

func TestRenderResamplesToRequestedRate(t *testing.T) {
	t.Parallel()

	s, _ := newTestSampler(t, map[string][]float64{"src": testutil.DeterministicSine(10, testRate, 1, 1000)})
	got, err := s.Render(context.Background(), &Parameters{URL: "src"}, 2*testRate)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(got) != 2000 {
		t.Fatalf("len = %d, want 2000", len(got))
	}
}

func TestRenderFetchError(t *testing.T) {
	t.Parallel()

	s, _ := newTestSampler(t, nil)
	_, err := s.Render(context.Background(), &Parameters{URL: "missing"}, testRate)
	if !errors.Is(err, synth.ErrFetch) {
		t.Fatalf("Render() error = %v, want ErrFetch", err)
	}

	if errors.Is(err, synth.ErrInvalid) {
		t.Fatal("fetch failure reported as invalid params")
	}

	var fe *fetch.Error
	if !errors.As(err, &fe) || fe.URL != "missing" {
		t.Fatalf("Render() error = %#v, want *fetch.Error for missing", err)
	}

	if !errors.Is(err, testutil.ErrMissingSource) {
		t.Fatal("cause lost")
	}
}

func TestRenderRejectsForeignParams(t *testing.T) {
	t.Parallel()

	s, _ := newTestSampler(t, nil)
	_, err := s.Render(context.Background(), &testutil.ToneParams{Samples: 1}, testRate)
	var mismatch *synth.MismatchError
	if !errors.As(err, &mismatch) || !errors.Is(err, synth.ErrInvalid) {
		t.Fatalf("Render() error = %v, want MismatchError", err)
	}
}

func TestRenderMemoizes(t *testing.T) {
	t.Parallel()

	s, f := newTestSampler(t, map[string][]float64{"src": testutil.Ramp(10)})
	p := &Parameters{URL: "src", Normalize: ptr(true)}

	first, err := s.Render(context.Background(), p, testRate)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	first[0] = 42

	second, err := s.Render(context.Background(), p.Clone(), testRate)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if second[0] == 42 {
		t.Fatal("memoized buffer shared with caller")
	}

	if f.Calls("src") != 1 {
		t.Fatalf("source fetched %d times, want 1", f.Calls("src"))
	}

	if st := s.MemoStats(); st.Hits != 1 {
		t.Fatalf("memo hits = %d, want 1", st.Hits)
	}

	// A different rate is a different render.
	if _, err := s.Render(context.Background(), p, 2*testRate); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if f.Calls("src") != 2 {
		t.Fatalf("source fetched %d times, want 2", f.Calls("src"))
	}
}

func TestRenderWithoutMemo(t *testing.T) {
	t.Parallel()

	s, f := newTestSampler(t, map[string][]float64{"src": testutil.Ramp(10)}, WithMemoBudget(0))
	for range 3 {
		if _, err := s.Render(context.Background(), &Parameters{URL: "src"}, testRate); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
	}

	if f.Calls("src") != 3 {
		t.Fatalf("source fetched %d times, want 3", f.Calls("src"))
	}
}

func TestRenderConcurrent(t *testing.T) {
	t.Parallel()

	s, f := newTestSampler(t, map[string][]float64{"src": testutil.DeterministicNoise(1, 1, 512)})
	p := &Parameters{URL: "src", Filter: &FilterParameters{CenterFrequency: 0.3, Bandwidth: 0.1}}

	var wg sync.WaitGroup
	results := make([][]float64, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Render(context.Background(), p, testRate)
		}()
	}

	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Render() error = %v", errs[i])
		}

		testutil.RequireSliceNearlyEqual(t, results[i], results[0], 0)
	}

	if f.Calls("src") != 1 {
		t.Fatalf("source fetched %d times, want 1", f.Calls("src"))
	}
}

func TestNewRejectsNilFetcher(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) succeeded")
	}
}
