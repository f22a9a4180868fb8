package m3c2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateNorm is the magnitude below which a normal vector carries no
// usable direction. Exported normals are unit vectors; anything this small
// is a placeholder for "no normal".
const degenerateNorm = 1e-12

// NormalDeviation expresses other relative to reference by rotating the
// frame so the reference normal becomes vertical, then reads the rotated
// vector as angles:
//
//	slope:  angle to the vertical axis in degrees, [0, 180]. Zero when the
//	        two normals agree.
//	aspect: compass azimuth of the horizontal projection in degrees,
//	        clockwise from +Y, [0, 360).
//
// Degenerate input (NaN components, near-zero magnitude) yields NaN for
// both angles; the caller's aggregation filters NaN, so this is an
// in-band condition rather than an error.
func NormalDeviation(reference, other r3.Vec) (slope, aspect float64) {
	if !finiteVec(reference) || !finiteVec(other) {
		return math.NaN(), math.NaN()
	}
	if r3.Norm(reference) < degenerateNorm || r3.Norm(other) < degenerateNorm {
		return math.NaN(), math.NaN()
	}

	ref := r3.Unit(reference)
	v := r3.Unit(other)

	up := r3.Vec{Z: 1}
	axis := r3.Cross(ref, up)
	sin := r3.Norm(axis)
	cos := r3.Dot(ref, up)

	switch {
	case sin < degenerateNorm && cos > 0:
		// Reference already vertical; nothing to rotate.
	case sin < degenerateNorm:
		// Anti-parallel: flip around X.
		v = r3.NewRotation(math.Pi, r3.Vec{X: 1}).Rotate(v)
	default:
		v = r3.NewRotation(math.Atan2(sin, cos), axis).Rotate(v)
	}

	cosSlope := math.Max(-1, math.Min(1, v.Z))
	slope = math.Acos(cosSlope) * 180 / math.Pi

	aspect = math.Atan2(v.X, v.Y) * 180 / math.Pi
	if aspect < 0 {
		aspect += 360
	}
	// atan2(0,0) is 0, so an exactly vertical rotated vector gets a
	// well-defined aspect of 0 rather than NaN.
	return slope, aspect
}

func finiteVec(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
