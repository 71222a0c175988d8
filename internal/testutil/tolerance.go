package testutil

import (
	"math"
	"testing"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// RequireSliceNearlyEqual fails t unless got and want have equal length and
// every sample differs by at most eps. The first offending sample is reported.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
		return
	}

	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps || math.IsNaN(d) {
			t.Fatalf("sample %d = %v, want %v (|diff| %g > %g)", i, got[i], want[i], d, eps)
			return
		}
	}
}

// RequireFinite fails t on the first NaN or Inf sample.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
			return
		}
	}
}

// MaxAbs returns the peak magnitude of data, 0 for an empty slice.
func MaxAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	return vecmath.MaxAbs(data)
}
