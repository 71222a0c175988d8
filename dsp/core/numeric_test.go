package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSecondsToSamplesTruncates(t *testing.T) {
	if got := SecondsToSamples(0.5, 22050); got != 11025 {
		t.Fatalf("SecondsToSamples(0.5) = %d, want 11025", got)
	}

	if got := SecondsToSamples(1.0/3, 10); got != 3 {
		t.Fatalf("SecondsToSamples(1/3) = %d, want 3", got)
	}
}

func TestSecondsToSamplesSaturates(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    int
	}{
		{name: "huge", seconds: 1e19, want: math.MaxInt},
		{name: "infinite", seconds: math.Inf(1), want: math.MaxInt},
		{name: "huge negative", seconds: -1e19, want: math.MinInt},
		{name: "NaN", seconds: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondsToSamples(tt.seconds, 44100); got != tt.want {
				t.Fatalf("SecondsToSamples(%g) = %d, want %d", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestNextPowerOf2(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {1000, 1024}, {1024, 1024},
	} {
		if got := NextPowerOf2(tc.in); got != tc.want {
			t.Errorf("NextPowerOf2(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIsFinitePositive(t *testing.T) {
	if !IsFinitePositive(1) {
		t.Fatal("1 should be finite positive")
	}

	if IsFinitePositive(0) || IsFinitePositive(-1) {
		t.Fatal("non-positive values accepted")
	}
}
