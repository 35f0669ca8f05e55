package statsopts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// optionsJSON is the persisted layout. Key names and their leading-underscore
// markers are the compatibility contract between every producer and consumer
// of this version; field order matches the canonical document. Generators,
// slice functions, and the schema have no text encoding, so their keys carry
// null on output and whatever they carry on input is discarded.
type optionsJSON struct {
	Generators                    interface{} `json:"_generators"`
	FeatureAllowlist              *[]string   `json:"_feature_allowlist"`
	Schema                        interface{} `json:"_schema"`
	WeightFeature                 *string     `json:"weight_feature"`
	LabelFeature                  *string     `json:"label_feature"`
	SliceFunctions                interface{} `json:"_slice_functions"`
	SampleCount                   *int64      `json:"_sample_count"`
	SampleRate                    *float64    `json:"_sample_rate"`
	NumTopValues                  int64       `json:"num_top_values"`
	FrequencyThreshold            int64       `json:"frequency_threshold"`
	WeightedFrequencyThreshold    float64     `json:"weighted_frequency_threshold"`
	NumRankHistogramBuckets       int64       `json:"num_rank_histogram_buckets"`
	NumValuesHistogramBuckets     int64       `json:"_num_values_histogram_buckets"`
	NumHistogramBuckets           int64       `json:"_num_histogram_buckets"`
	NumQuantilesHistogramBuckets  int64       `json:"_num_quantiles_histogram_buckets"`
	Epsilon                       float64     `json:"epsilon"`
	InferTypeFromSchema           bool        `json:"infer_type_from_schema"`
	DesiredBatchSize              *int64      `json:"_desired_batch_size"`
	EnableSemanticDomainStats     bool        `json:"enable_semantic_domain_stats"`
	SemanticDomainStatsSampleRate *float64    `json:"_semantic_domain_stats_sample_rate"`
}

// ToJSON serializes the object into the persisted layout. The three
// non-serializable fields are emitted as null even when set; round-trip
// fidelity holds for scalar fields only.
func (o *Options) ToJSON() (string, error) {
	enc := optionsJSON{
		WeightFeature:                 o.weightFeature,
		LabelFeature:                  o.labelFeature,
		SampleCount:                   o.sampleCount,
		SampleRate:                    o.sampleRate,
		NumTopValues:                  o.numTopValues,
		FrequencyThreshold:            o.frequencyThreshold,
		WeightedFrequencyThreshold:    o.weightedFrequencyThreshold,
		NumRankHistogramBuckets:       o.numRankHistogramBuckets,
		NumValuesHistogramBuckets:     o.numValuesHistogramBuckets,
		NumHistogramBuckets:           o.numHistogramBuckets,
		NumQuantilesHistogramBuckets:  o.numQuantilesHistogramBuckets,
		Epsilon:                       o.epsilon,
		InferTypeFromSchema:           o.inferTypeFromSchema,
		DesiredBatchSize:              o.desiredBatchSize,
		EnableSemanticDomainStats:     o.enableSemanticDomainStats,
		SemanticDomainStatsSampleRate: o.semanticDomainStatsSampleRate,
	}
	if o.featureAllowlist != nil {
		list := append([]string(nil), o.featureAllowlist...)
		enc.FeatureAllowlist = &list
	}
	data, err := json.Marshal(&enc)
	if err != nil {
		return "", fmt.Errorf("serialize stats options: %w", err)
	}
	return string(data), nil
}

// FromJSON reconstructs an object from the persisted layout. Recognized keys
// assign directly to fields without re-running construction validation (a
// previously serialized document was already valid — callers adopting
// untrusted documents run Validate themselves). Absent keys keep their
// defaults, unknown keys and malformed text fail with a parse error, and the
// three non-serializable fields always come back absent.
func FromJSON(text string) (*Options, error) {
	o := newDefault()
	enc := optionsJSON{
		NumTopValues:                 o.numTopValues,
		FrequencyThreshold:           o.frequencyThreshold,
		WeightedFrequencyThreshold:   o.weightedFrequencyThreshold,
		NumRankHistogramBuckets:      o.numRankHistogramBuckets,
		NumValuesHistogramBuckets:    o.numValuesHistogramBuckets,
		NumHistogramBuckets:          o.numHistogramBuckets,
		NumQuantilesHistogramBuckets: o.numQuantilesHistogramBuckets,
		Epsilon:                      o.epsilon,
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&enc); err != nil {
		return nil, fmt.Errorf("parse stats options: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse stats options: unexpected trailing data")
	}

	if enc.FeatureAllowlist != nil {
		o.featureAllowlist = append([]string(nil), *enc.FeatureAllowlist...)
	}
	o.weightFeature = enc.WeightFeature
	o.labelFeature = enc.LabelFeature
	o.sampleCount = enc.SampleCount
	o.sampleRate = enc.SampleRate
	o.numTopValues = enc.NumTopValues
	o.frequencyThreshold = enc.FrequencyThreshold
	o.weightedFrequencyThreshold = enc.WeightedFrequencyThreshold
	o.numRankHistogramBuckets = enc.NumRankHistogramBuckets
	o.numValuesHistogramBuckets = enc.NumValuesHistogramBuckets
	o.numHistogramBuckets = enc.NumHistogramBuckets
	o.numQuantilesHistogramBuckets = enc.NumQuantilesHistogramBuckets
	o.epsilon = enc.Epsilon
	o.inferTypeFromSchema = enc.InferTypeFromSchema
	o.desiredBatchSize = enc.DesiredBatchSize
	o.enableSemanticDomainStats = enc.EnableSemanticDomainStats
	o.semanticDomainStatsSampleRate = enc.SemanticDomainStatsSampleRate
	return o, nil
}
