package testutil

import "testing"

// recorder captures Fatalf without stopping the calling test.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(string, ...any) { r.failed = true }

func TestRequireSliceNearlyEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		got      []float64
		want     []float64
		eps      float64
		wantFail bool
	}{
		{name: "equal", got: []float64{1, 2}, want: []float64{1, 2}},
		{name: "within eps", got: []float64{1, 2.05}, want: []float64{1, 2}, eps: 0.1},
		{name: "beyond eps", got: []float64{1, 2.5}, want: []float64{1, 2}, eps: 0.1, wantFail: true},
		{name: "length", got: []float64{1}, want: []float64{1, 2}, eps: 1, wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &recorder{TB: t}
			RequireSliceNearlyEqual(r, tt.got, tt.want, tt.eps)
			if r.failed != tt.wantFail {
				t.Fatalf("failed = %v, want %v", r.failed, tt.wantFail)
			}
		})
	}
}

func TestRequireFinite(t *testing.T) {
	t.Parallel()

	r := &recorder{TB: t}
	RequireFinite(r, Ramp(8))
	if r.failed {
		t.Fatal("finite data rejected")
	}

	RequireFinite(r, []float64{0, 1 / zero()})
	if !r.failed {
		t.Fatal("Inf accepted")
	}
}

func zero() float64 { return 0 }

func TestMaxAbs(t *testing.T) {
	t.Parallel()

	if got := MaxAbs([]float64{0.5, -2, 1}); got != 2 {
		t.Fatalf("MaxAbs() = %v, want 2", got)
	}

	if got := MaxAbs(nil); got != 0 {
		t.Fatalf("MaxAbs(nil) = %v, want 0", got)
	}
}
