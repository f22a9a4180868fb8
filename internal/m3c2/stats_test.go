package m3c2

import (
	"math"
	"testing"
)

func TestReduceSkipsNaN(t *testing.T) {
	s := reduce([]float64{1.0, 2.0, math.NaN(), 3.0})
	if s == nil {
		t.Fatal("statistics undefined, want defined over [1,2,3]")
	}
	if s.Mean != 2.0 {
		t.Errorf("mean = %v, want 2.0", s.Mean)
	}
	if s.Median != 2.0 {
		t.Errorf("median = %v, want 2.0", s.Median)
	}
	if math.Abs(s.StdDev-1.0) > 1e-12 {
		t.Errorf("std_dev = %v, want 1.0", s.StdDev)
	}
}

func TestReduceTooFewValues(t *testing.T) {
	testCases := []struct {
		name string
		vals []float64
	}{
		{"empty", nil},
		{"all_nan", []float64{math.NaN(), math.NaN()}},
		{"single_valid", []float64{math.NaN(), math.NaN(), 5.0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if s := reduce(tc.vals); s != nil {
				t.Errorf("reduce(%v) = %+v, want nil (undefined)", tc.vals, s)
			}
		})
	}
}

func TestReduceMedianEvenCount(t *testing.T) {
	s := reduce([]float64{4.0, 1.0, 3.0, 2.0})
	if s == nil {
		t.Fatal("statistics undefined")
	}
	if s.Median != 2.5 {
		t.Errorf("median = %v, want 2.5 (average of middle pair)", s.Median)
	}
}

func TestSummarizeNaNPercentages(t *testing.T) {
	nan := math.NaN()
	ref := testCloud(4)
	ref.Distance = []float64{1, nan, 1, nan}
	other := testCloud(4)
	other.Distance = []float64{1, 1, nan, nan}

	ds, err := NewDiffSet(ref, other)
	if err != nil {
		t.Fatalf("NewDiffSet: %v", err)
	}
	if err := ds.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sum, err := Summarize(ds)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if sum.PctBothNaN != 25 {
		t.Errorf("PctBothNaN = %v, want 25", sum.PctBothNaN)
	}
	if sum.PctReferenceNaN != 25 {
		t.Errorf("PctReferenceNaN = %v, want 25", sum.PctReferenceNaN)
	}
	if sum.PctOtherNaN != 25 {
		t.Errorf("PctOtherNaN = %v, want 25", sum.PctOtherNaN)
	}
}

func TestSummarizeColumnsOrder(t *testing.T) {
	ds, err := NewDiffSet(testCloud(3), testCloud(3))
	if err != nil {
		t.Fatalf("NewDiffSet: %v", err)
	}
	if err := ds.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	sum, err := Summarize(ds)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	want := []string{"X", "Y", "Z", "NX", "NY", "NZ", "Distance", "LODetection", "Aspect", "Slope"}
	if len(sum.Columns) != len(want) {
		t.Fatalf("columns = %v, want %v", sum.Columns, want)
	}
	for i := range want {
		if sum.Columns[i] != want[i] {
			t.Errorf("columns[%d] = %q, want %q", i, sum.Columns[i], want[i])
		}
	}

	// Identical clouds with valid vertical normals: slope stats defined
	// and exactly zero, aspect well-defined.
	if s := sum.Stats[ColSlope]; s == nil || s.Mean != 0 {
		t.Errorf("slope stats = %+v, want defined with zero mean", s)
	}
	if s := sum.Stats[ColAspect]; s == nil {
		t.Error("aspect stats undefined, want defined for valid normals")
	}
}
