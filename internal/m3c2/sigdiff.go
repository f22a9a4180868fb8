package m3c2

import "math"

// DefaultPrecision is the decimal precision used for the significance
// threshold when none is configured. At 20 digits the threshold only
// collapses differences that are zero to well below float64 resolution,
// so it effectively filters bit-identical values while leaving every
// genuine difference untouched.
const DefaultPrecision = 20

// SignificantDifference returns |a-b|, collapsed to exactly 0 when the
// difference rounds to zero at the given decimal precision. Differences
// that survive the rounding are returned unrounded, so reported values
// keep full float64 precision. NaN inputs propagate as NaN.
func SignificantDifference(a, b float64, precision int) float64 {
	d := math.Abs(a - b)
	scale := math.Pow(10, float64(precision))
	if math.Round(d*scale) == 0 {
		return 0
	}
	return d
}
