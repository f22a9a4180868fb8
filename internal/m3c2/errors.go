package m3c2

import (
	"errors"
	"fmt"
)

// ErrNotComputed is returned when a consumer (aggregation, writing,
// accessors) runs before Compute has populated the difference set.
var ErrNotComputed = errors.New("differences not computed yet")

// ErrAlreadyComputed is returned by a second Compute call. A DiffSet is
// populated exactly once and read-only afterwards.
var ErrAlreadyComputed = errors.New("differences already computed")

// ShapeMismatchError reports inputs that cannot be compared positionally:
// unequal lengths or an optional attribute present on only one side.
type ShapeMismatchError struct {
	Field        string
	ReferenceLen int
	OtherLen     int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("input shape mismatch for %s: reference has %d entries, comparison has %d",
		e.Field, e.ReferenceLen, e.OtherLen)
}

// UnsupportedAttributeError reports access to an attribute the schema does
// not carry because the corresponding input columns were absent.
type UnsupportedAttributeError struct {
	Attribute Attribute
}

func (e *UnsupportedAttributeError) Error() string {
	return fmt.Sprintf("attribute %s is not part of this difference set", e.Attribute)
}
