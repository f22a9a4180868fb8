package m3c2

import "math"

// Attribute names one per-point difference column. The vocabulary is fixed;
// the spread and sample-count attributes are only part of a DiffSet when
// both input clouds exported them.
type Attribute string

const (
	AttrX           Attribute = "X"
	AttrY           Attribute = "Y"
	AttrZ           Attribute = "Z"
	AttrNX          Attribute = "NX"
	AttrNY          Attribute = "NY"
	AttrNZ          Attribute = "NZ"
	AttrDistance    Attribute = "Distance"
	AttrLODetection Attribute = "LODetection"
	AttrSpread1     Attribute = "Spread1"
	AttrSpread2     Attribute = "Spread2"
	AttrNumSamples1 Attribute = "NumSamples1"
	AttrNumSamples2 Attribute = "NumSamples2"
)

// AttributeGroup identifies the conditionally present column pairs.
type AttributeGroup int

const (
	GroupSpread AttributeGroup = iota
	GroupNumSamples
)

// baseAttributes are always part of the schema, in declared column order.
var baseAttributes = []Attribute{
	AttrX, AttrY, AttrZ,
	AttrNX, AttrNY, AttrNZ,
	AttrDistance, AttrLODetection,
}

// NaNMode classifies the per-point NaN pattern of the two distance values.
// The numeric values are part of the output contract: they are written
// verbatim to the per-point table and feed the NaN percentage rows.
type NaNMode uint8

const (
	BothValid    NaNMode = 0 // neither distance is NaN
	ReferenceNaN NaNMode = 1 // only the reference distance is NaN
	OtherNaN     NaNMode = 2 // only the comparison distance is NaN
	BothNaN      NaNMode = 3 // both distances are NaN
)

func (m NaNMode) String() string {
	switch m {
	case BothValid:
		return "both-valid"
	case ReferenceNaN:
		return "reference-nan"
	case OtherNaN:
		return "comparison-nan"
	case BothNaN:
		return "both-nan"
	}
	return "unknown"
}

func classifyNaN(otherIsNaN, referenceIsNaN bool) NaNMode {
	mode := NaNMode(0)
	if referenceIsNaN {
		mode |= 1
	}
	if otherIsNaN {
		mode |= 2
	}
	return mode
}

// DiffSet holds the per-point, per-attribute differences between two
// index-aligned M3C2 result clouds, plus the derived slope/aspect angles
// and the NaN-mode classification. It is constructed against a fixed
// schema, populated exactly once by Compute, and read-only afterwards.
type DiffSet struct {
	reference *CloudResult
	other     *CloudResult
	precision int

	schema   []Attribute
	diffs    map[Attribute][]float64
	slopes   []float64
	aspects  []float64
	nanModes []NaNMode
	computed bool
}

// Option configures DiffSet construction.
type Option func(*DiffSet)

// WithPrecision sets the decimal precision of the significance threshold
// applied to every attribute difference.
func WithPrecision(p int) Option {
	return func(ds *DiffSet) { ds.precision = p }
}

// NewDiffSet validates the two clouds and freezes the attribute schema.
// Both clouds must be internally consistent, have the same length, and
// agree on which optional attribute groups they carry; any violation is a
// ShapeMismatchError and no computation proceeds.
func NewDiffSet(reference, other *CloudResult, opts ...Option) (*DiffSet, error) {
	if err := reference.Validate(); err != nil {
		return nil, err
	}
	if err := other.Validate(); err != nil {
		return nil, err
	}
	if reference.Len() != other.Len() {
		return nil, &ShapeMismatchError{
			Field:        "points",
			ReferenceLen: reference.Len(),
			OtherLen:     other.Len(),
		}
	}
	if (reference.Spread == nil) != (other.Spread == nil) {
		return nil, &ShapeMismatchError{
			Field:        "spread",
			ReferenceLen: pairLen(reference.Spread),
			OtherLen:     pairLen(other.Spread),
		}
	}
	if (reference.NumSamples == nil) != (other.NumSamples == nil) {
		return nil, &ShapeMismatchError{
			Field:        "num_samples",
			ReferenceLen: pairLen(reference.NumSamples),
			OtherLen:     pairLen(other.NumSamples),
		}
	}

	ds := &DiffSet{
		reference: reference,
		other:     other,
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		opt(ds)
	}

	ds.schema = append(ds.schema, baseAttributes...)
	if reference.Spread != nil {
		ds.schema = append(ds.schema, AttrSpread1, AttrSpread2)
	}
	if reference.NumSamples != nil {
		ds.schema = append(ds.schema, AttrNumSamples1, AttrNumSamples2)
	}
	return ds, nil
}

func pairLen(p *EpochPair) int {
	if p == nil {
		return 0
	}
	return len(p.Epoch1)
}

// Len returns the number of core points.
func (ds *DiffSet) Len() int { return ds.reference.Len() }

// Attributes returns the schema in declared column order.
func (ds *DiffSet) Attributes() []Attribute {
	out := make([]Attribute, len(ds.schema))
	copy(out, ds.schema)
	return out
}

// Has reports whether the schema carries the given attribute.
func (ds *DiffSet) Has(attr Attribute) bool {
	for _, a := range ds.schema {
		if a == attr {
			return true
		}
	}
	return false
}

// HasGroup reports whether the schema carries a conditional column group.
// Consumers check availability here instead of probing individual columns.
func (ds *DiffSet) HasGroup(g AttributeGroup) bool {
	switch g {
	case GroupSpread:
		return ds.Has(AttrSpread1)
	case GroupNumSamples:
		return ds.Has(AttrNumSamples1)
	}
	return false
}

// Reference returns the reference cloud the set was built from.
func (ds *DiffSet) Reference() *CloudResult { return ds.reference }

// Computed reports whether Compute has populated the set.
func (ds *DiffSet) Computed() bool { return ds.computed }

// Compute fills every difference array, the slope/aspect angles and the
// NaN-mode classification in a single pass over the points. It may be
// called once; the set is read-only afterwards.
func (ds *DiffSet) Compute() error {
	if ds.computed {
		return ErrAlreadyComputed
	}

	n := ds.Len()
	ds.diffs = make(map[Attribute][]float64, len(ds.schema))
	for _, attr := range ds.schema {
		ds.diffs[attr] = make([]float64, n)
	}
	ds.slopes = make([]float64, n)
	ds.aspects = make([]float64, n)
	ds.nanModes = make([]NaNMode, n)

	re, cl := ds.reference, ds.other
	p := ds.precision

	for i := 0; i < n; i++ {
		ds.diffs[AttrX][i] = SignificantDifference(cl.Points[i].X, re.Points[i].X, p)
		ds.diffs[AttrY][i] = SignificantDifference(cl.Points[i].Y, re.Points[i].Y, p)
		ds.diffs[AttrZ][i] = SignificantDifference(cl.Points[i].Z, re.Points[i].Z, p)

		ds.diffs[AttrNX][i] = SignificantDifference(cl.Normals[i].X, re.Normals[i].X, p)
		ds.diffs[AttrNY][i] = SignificantDifference(cl.Normals[i].Y, re.Normals[i].Y, p)
		ds.diffs[AttrNZ][i] = SignificantDifference(cl.Normals[i].Z, re.Normals[i].Z, p)

		ds.diffs[AttrDistance][i] = SignificantDifference(cl.Distance[i], re.Distance[i], p)
		ds.diffs[AttrLODetection][i] = SignificantDifference(cl.Uncertainty[i], re.Uncertainty[i], p)

		if re.Spread != nil {
			ds.diffs[AttrSpread1][i] = SignificantDifference(cl.Spread.Epoch1[i], re.Spread.Epoch1[i], p)
			ds.diffs[AttrSpread2][i] = SignificantDifference(cl.Spread.Epoch2[i], re.Spread.Epoch2[i], p)
		}
		if re.NumSamples != nil {
			ds.diffs[AttrNumSamples1][i] = SignificantDifference(cl.NumSamples.Epoch1[i], re.NumSamples.Epoch1[i], p)
			ds.diffs[AttrNumSamples2][i] = SignificantDifference(cl.NumSamples.Epoch2[i], re.NumSamples.Epoch2[i], p)
		}

		ds.nanModes[i] = classifyNaN(math.IsNaN(cl.Distance[i]), math.IsNaN(re.Distance[i]))
		ds.slopes[i], ds.aspects[i] = NormalDeviation(re.Normals[i], cl.Normals[i])
	}

	ds.computed = true
	return nil
}

// Diff returns the difference array for one attribute.
func (ds *DiffSet) Diff(attr Attribute) ([]float64, error) {
	if !ds.computed {
		return nil, ErrNotComputed
	}
	vals, ok := ds.diffs[attr]
	if !ok {
		return nil, &UnsupportedAttributeError{Attribute: attr}
	}
	return vals, nil
}

// Slopes returns the per-point angular deviation between the two normals.
func (ds *DiffSet) Slopes() ([]float64, error) {
	if !ds.computed {
		return nil, ErrNotComputed
	}
	return ds.slopes, nil
}

// Aspects returns the per-point azimuth of the normal deviation.
func (ds *DiffSet) Aspects() ([]float64, error) {
	if !ds.computed {
		return nil, ErrNotComputed
	}
	return ds.aspects, nil
}

// NaNModes returns the per-point NaN classification of the distances.
func (ds *DiffSet) NaNModes() ([]NaNMode, error) {
	if !ds.computed {
		return nil, ErrNotComputed
	}
	return ds.nanModes, nil
}
