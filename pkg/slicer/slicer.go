package slicer

import (
	"github.com/kumarabd/validation-plane/tuner/pkg/types"
)

// Func selects a named partition ("slice") of input records. It reports the
// slice key the record belongs to and whether the record is part of the
// slice at all. Statistics are computed separately per slice key.
type Func func(rec types.Record) (slice string, ok bool)

// AsFunc coerces v into a slice function. It accepts a Func or a bare
// function with the same signature; anything else fails the callable check.
func AsFunc(v interface{}) (Func, bool) {
	switch fn := v.(type) {
	case Func:
		return fn, true
	case func(types.Record) (string, bool):
		return Func(fn), true
	default:
		return nil, false
	}
}

// ForFeatureValue returns a slice function that groups records by the first
// observed value of the given feature. Records without the feature are left
// unsliced.
func ForFeatureValue(feature string) Func {
	return func(rec types.Record) (string, bool) {
		values, present := rec[feature]
		if !present || len(values) == 0 {
			return "", false
		}
		return feature + "_" + values[0], true
	}
}
