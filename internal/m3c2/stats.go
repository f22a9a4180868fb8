package m3c2

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Synthetic summary columns derived from the normal-vector comparison.
// They follow the attribute columns in every summary artifact.
const (
	ColAspect = "Aspect"
	ColSlope  = "Slope"
)

// AttributeStats is the reduction of one difference array over its
// non-NaN entries.
type AttributeStats struct {
	Mean   float64
	Median float64
	StdDev float64 // sample standard deviation, n-1 denominator
}

// Summary holds the per-attribute statistics and the NaN-pattern
// percentages of one computed DiffSet. Columns lists the summarised
// column names in output order (attributes, then Aspect and Slope); a nil
// Stats entry means fewer than two valid values existed, which is
// "no data", not zero.
type Summary struct {
	Columns []string
	Stats   map[string]*AttributeStats

	// Percentages over the NaN-mode array, each count/N*100.
	PctBothNaN      float64
	PctReferenceNaN float64 // reference NaN, comparison valid
	PctOtherNaN     float64 // comparison NaN, reference valid
}

// Summarize reduces every attribute of the difference set, plus the
// synthetic Aspect and Slope arrays, to mean/median/sample-stddev over
// non-NaN values, and derives the NaN percentages from the NaN modes.
func Summarize(ds *DiffSet) (*Summary, error) {
	if !ds.Computed() {
		return nil, ErrNotComputed
	}

	sum := &Summary{Stats: make(map[string]*AttributeStats)}

	for _, attr := range ds.Attributes() {
		vals, err := ds.Diff(attr)
		if err != nil {
			return nil, err
		}
		sum.Columns = append(sum.Columns, string(attr))
		sum.Stats[string(attr)] = reduce(vals)
	}

	aspects, _ := ds.Aspects()
	slopes, _ := ds.Slopes()
	sum.Columns = append(sum.Columns, ColAspect, ColSlope)
	sum.Stats[ColAspect] = reduce(aspects)
	sum.Stats[ColSlope] = reduce(slopes)

	modes, _ := ds.NaNModes()
	var both, ref, other int
	for _, m := range modes {
		switch m {
		case BothNaN:
			both++
		case ReferenceNaN:
			ref++
		case OtherNaN:
			other++
		}
	}
	n := float64(ds.Len())
	if n > 0 {
		sum.PctBothNaN = float64(both) / n * 100
		sum.PctReferenceNaN = float64(ref) / n * 100
		sum.PctOtherNaN = float64(other) / n * 100
	}
	return sum, nil
}

// reduce filters NaN entries and computes the three statistics. Fewer than
// two valid values means the statistics are undefined and nil is returned;
// a single value has no sample deviation, and reporting zero would make
// "no data" indistinguishable from "no variation".
func reduce(vals []float64) *AttributeStats {
	valid := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return nil
	}
	sort.Float64s(valid)
	return &AttributeStats{
		Mean:   stat.Mean(valid, nil),
		Median: median(valid),
		StdDev: stat.StdDev(valid, nil),
	}
}

// median of an already sorted slice, averaging the middle pair for even
// lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
