package m3c2

import (
	"math"
	"testing"
)

func TestSignificantDifference(t *testing.T) {
	testCases := []struct {
		name      string
		a, b      float64
		precision int
		expected  float64
	}{
		{"identical", 1.5, 1.5, 20, 0},
		{"identical_zero", 0, 0, 20, 0},
		{"identical_negative", -3.25, -3.25, 20, 0},
		{"plain_difference", 2.5, 2.0, 20, 0.5},
		{"sign_ignored", 2.0, 2.5, 20, 0.5},
		{"below_precision_two", 1.001, 1.0, 2, 0},
		{"at_precision_two", 1.25, 1.0, 2, 0.25},
		{"zero_precision_collapses_fraction", 1.2, 1.0, 0, 0},
		{"zero_precision_keeps_half_up", 1.5, 1.0, 0, 0.5},
		{"large_values", 1e12, 1e12 - 1, 20, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SignificantDifference(tc.a, tc.b, tc.precision)
			if got != tc.expected {
				t.Errorf("SignificantDifference(%v, %v, %d) = %v, want %v",
					tc.a, tc.b, tc.precision, got, tc.expected)
			}
		})
	}
}

func TestSignificantDifferenceIdempotence(t *testing.T) {
	values := []float64{0, 1, -1, 1e-30, 1e30, math.Pi}
	for _, v := range values {
		for _, p := range []int{0, 2, 10, 20} {
			if got := SignificantDifference(v, v, p); got != 0 {
				t.Errorf("SignificantDifference(%v, %v, %d) = %v, want exactly 0", v, v, p, got)
			}
		}
	}
}

func TestSignificantDifferenceUnroundedResult(t *testing.T) {
	// A difference that survives the threshold is returned at full float64
	// precision, not rounded to it: |a-b| is slightly below 0.0125 here and
	// must come back bit-exact, not as 0.01.
	a, b := 1.0, 1.0+1.25e-2
	got := SignificantDifference(a, b, 2)
	want := math.Abs(a - b)
	if got != want {
		t.Errorf("expected unrounded |a-b| = %v, got %v", want, got)
	}
}

func TestSignificantDifferenceNaN(t *testing.T) {
	if got := SignificantDifference(math.NaN(), 1.0, 20); !math.IsNaN(got) {
		t.Errorf("NaN input must propagate, got %v", got)
	}
	if got := SignificantDifference(math.NaN(), math.NaN(), 20); !math.IsNaN(got) {
		t.Errorf("NaN-vs-NaN must stay NaN, got %v", got)
	}
}
