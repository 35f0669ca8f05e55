package types

// Record represents a single example: feature name → observed values.
// Values are kept in their raw string form; typed interpretation is the
// schema's concern.
type Record map[string][]string

// RecordBatch represents a group of records flowing through one pipeline step.
type RecordBatch struct {
	Records []Record `json:"records"`
}

// Bucket represents one histogram bucket and the number of values falling
// into it.
type Bucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int64   `json:"count"`
}

// FeatureStats represents the per-feature statistics produced by a generator.
type FeatureStats struct {
	Feature   string   `json:"feature"`
	Count     int64    `json:"count"`   // number of values observed
	Missing   int64    `json:"missing"` // number of records without the feature
	Histogram []Bucket `json:"histogram,omitempty"`
}

// DatasetStats represents the aggregate statistics for one slice of the
// dataset. Slice is empty for the unsliced ("all examples") result.
type DatasetStats struct {
	Slice    string         `json:"slice,omitempty"`
	Examples int64          `json:"examples"`
	Features []FeatureStats `json:"features"`
}
