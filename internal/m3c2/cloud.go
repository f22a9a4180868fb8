// Package m3c2 compares the per-point outputs of two independent M3C2
// surface-change runs over the same core points: it computes per-attribute
// difference arrays, normal-vector slope/aspect deviations, a NaN pattern
// classification, NaN-aware summary statistics, and CSV renderings of both.
//
// The package does not compute M3C2 distances itself; both inputs are the
// exported result clouds of external implementations, index-aligned over
// the same core points.
package m3c2

import "gonum.org/v1/gonum/spatial/r3"

// EpochPair holds one per-epoch array pair for attributes that M3C2 reports
// separately for each input epoch (spread, sample counts).
type EpochPair struct {
	Epoch1 []float64
	Epoch2 []float64
}

// CloudResult is the exported result cloud of one M3C2 implementation.
// All slices are index-aligned: entry i of every field describes core
// point i. Normals may be NaN-filled when the tool did not export them;
// Spread and NumSamples are nil when not exported.
type CloudResult struct {
	Points      []r3.Vec
	Normals     []r3.Vec
	Distance    []float64
	Uncertainty []float64
	Spread      *EpochPair
	NumSamples  *EpochPair
}

// Len returns the number of core points.
func (c *CloudResult) Len() int { return len(c.Points) }

// Validate checks that every populated field has the same length as Points.
func (c *CloudResult) Validate() error {
	n := len(c.Points)
	check := func(name string, l int) error {
		if l != n {
			return &ShapeMismatchError{Field: name, ReferenceLen: n, OtherLen: l}
		}
		return nil
	}
	if err := check("normals", len(c.Normals)); err != nil {
		return err
	}
	if err := check("distance", len(c.Distance)); err != nil {
		return err
	}
	if err := check("uncertainty", len(c.Uncertainty)); err != nil {
		return err
	}
	if c.Spread != nil {
		if err := check("spread1", len(c.Spread.Epoch1)); err != nil {
			return err
		}
		if err := check("spread2", len(c.Spread.Epoch2)); err != nil {
			return err
		}
	}
	if c.NumSamples != nil {
		if err := check("num_samples1", len(c.NumSamples.Epoch1)); err != nil {
			return err
		}
		if err := check("num_samples2", len(c.NumSamples.Epoch2)); err != nil {
			return err
		}
	}
	return nil
}
