// Package statsopts holds the validated configuration object consumed by the
// statistics workers: which generators run, which features are profiled, how
// records are sampled and sliced, histogram sizing, and the JSON layout used
// to persist and distribute all of it.
package statsopts

import (
	"reflect"

	"github.com/kumarabd/validation-plane/tuner/pkg/schema"
	"github.com/kumarabd/validation-plane/tuner/pkg/slicer"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsgen"
)

// Defaults applied when a parameter is omitted at construction.
const (
	DefaultNumTopValues                 = 20
	DefaultFrequencyThreshold           = 1
	DefaultWeightedFrequencyThreshold   = 1.0
	DefaultNumRankHistogramBuckets      = 1000
	DefaultNumValuesHistogramBuckets    = 10
	DefaultNumHistogramBuckets          = 10
	DefaultNumQuantilesHistogramBuckets = 10
	DefaultEpsilon                      = 0.01
)

// Params carries the named construction parameters. Every field is optional;
// the zero value builds the all-defaults object. The four structural fields
// are dynamically typed so that a caller handing over the wrong shape gets
// the contractual type error instead of a compile failure in some distant
// package — requests arriving over the wire decode straight into this struct.
type Params struct {
	Generators       interface{} `json:"generators,omitempty"`
	FeatureAllowlist interface{} `json:"feature_allowlist,omitempty"`
	Schema           interface{} `json:"schema,omitempty"`
	SliceFunctions   interface{} `json:"slice_functions,omitempty"`

	WeightFeature *string `json:"weight_feature,omitempty"`
	LabelFeature  *string `json:"label_feature,omitempty"`

	SampleCount *int64   `json:"sample_count,omitempty"`
	SampleRate  *float64 `json:"sample_rate,omitempty"`

	NumTopValues                  *int64   `json:"num_top_values,omitempty"`
	FrequencyThreshold            *int64   `json:"frequency_threshold,omitempty"`
	WeightedFrequencyThreshold    *float64 `json:"weighted_frequency_threshold,omitempty"`
	NumRankHistogramBuckets       *int64   `json:"num_rank_histogram_buckets,omitempty"`
	NumValuesHistogramBuckets     *int64   `json:"num_values_histogram_buckets,omitempty"`
	NumHistogramBuckets           *int64   `json:"num_histogram_buckets,omitempty"`
	NumQuantilesHistogramBuckets  *int64   `json:"num_quantiles_histogram_buckets,omitempty"`
	Epsilon                       *float64 `json:"epsilon,omitempty"`
	InferTypeFromSchema           *bool    `json:"infer_type_from_schema,omitempty"`
	DesiredBatchSize              *int64   `json:"desired_batch_size,omitempty"`
	EnableSemanticDomainStats     *bool    `json:"enable_semantic_domain_stats,omitempty"`
	SemanticDomainStatsSampleRate *float64 `json:"semantic_domain_stats_sample_rate,omitempty"`
}

// Options is the validated, immutable configuration object. Construct it
// with New; a value that exists has passed every check, so concurrent
// readers need no synchronization.
type Options struct {
	generators       []statsgen.Generator
	featureAllowlist []string
	schema           *schema.Schema
	sliceFunctions   []slicer.Func

	weightFeature *string
	labelFeature  *string

	sampleCount *int64
	sampleRate  *float64

	numTopValues                  int64
	frequencyThreshold            int64
	weightedFrequencyThreshold    float64
	numRankHistogramBuckets       int64
	numValuesHistogramBuckets     int64
	numHistogramBuckets           int64
	numQuantilesHistogramBuckets  int64
	epsilon                       float64
	inferTypeFromSchema           bool
	desiredBatchSize              *int64
	enableSemanticDomainStats     bool
	semanticDomainStatsSampleRate *float64
}

func newDefault() *Options {
	return &Options{
		numTopValues:                 DefaultNumTopValues,
		frequencyThreshold:           DefaultFrequencyThreshold,
		weightedFrequencyThreshold:   DefaultWeightedFrequencyThreshold,
		numRankHistogramBuckets:      DefaultNumRankHistogramBuckets,
		numValuesHistogramBuckets:    DefaultNumValuesHistogramBuckets,
		numHistogramBuckets:          DefaultNumHistogramBuckets,
		numQuantilesHistogramBuckets: DefaultNumQuantilesHistogramBuckets,
		epsilon:                      DefaultEpsilon,
	}
}

// New validates the given parameters and returns the configuration object.
// The first failing check wins: structural (type) checks run before range
// checks, and construction is all-or-nothing.
func New(p Params) (*Options, error) {
	o := newDefault()

	var err error
	if o.generators, err = coerceGenerators(p.Generators); err != nil {
		return nil, err
	}
	if o.featureAllowlist, err = coerceFeatureAllowlist(p.FeatureAllowlist); err != nil {
		return nil, err
	}
	if o.schema, err = coerceSchema(p.Schema); err != nil {
		return nil, err
	}
	if o.sliceFunctions, err = coerceSliceFunctions(p.SliceFunctions); err != nil {
		return nil, err
	}

	if p.WeightFeature != nil {
		v := *p.WeightFeature
		o.weightFeature = &v
	}
	if p.LabelFeature != nil {
		v := *p.LabelFeature
		o.labelFeature = &v
	}
	if p.SampleCount != nil {
		v := *p.SampleCount
		o.sampleCount = &v
	}
	if p.SampleRate != nil {
		v := *p.SampleRate
		o.sampleRate = &v
	}
	if p.NumTopValues != nil {
		o.numTopValues = *p.NumTopValues
	}
	if p.FrequencyThreshold != nil {
		o.frequencyThreshold = *p.FrequencyThreshold
	}
	if p.WeightedFrequencyThreshold != nil {
		o.weightedFrequencyThreshold = *p.WeightedFrequencyThreshold
	}
	if p.NumRankHistogramBuckets != nil {
		o.numRankHistogramBuckets = *p.NumRankHistogramBuckets
	}
	if p.NumValuesHistogramBuckets != nil {
		o.numValuesHistogramBuckets = *p.NumValuesHistogramBuckets
	}
	if p.NumHistogramBuckets != nil {
		o.numHistogramBuckets = *p.NumHistogramBuckets
	}
	if p.NumQuantilesHistogramBuckets != nil {
		o.numQuantilesHistogramBuckets = *p.NumQuantilesHistogramBuckets
	}
	if p.Epsilon != nil {
		o.epsilon = *p.Epsilon
	}
	if p.InferTypeFromSchema != nil {
		o.inferTypeFromSchema = *p.InferTypeFromSchema
	}
	if p.DesiredBatchSize != nil {
		v := *p.DesiredBatchSize
		o.desiredBatchSize = &v
	}
	if p.EnableSemanticDomainStats != nil {
		o.enableSemanticDomainStats = *p.EnableSemanticDomainStats
	}
	if p.SemanticDomainStatsSampleRate != nil {
		v := *p.SemanticDomainStatsSampleRate
		o.semanticDomainStatsSampleRate = &v
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate re-checks every range invariant. New runs it as the final
// construction step; the service also runs it before adopting a deserialized
// document, since FromJSON deliberately trusts its input.
func (o *Options) Validate() error {
	if o.sampleCount != nil && *o.sampleCount <= 0 {
		return valueErrorf("sample_count", "Invalid sample_count %v", *o.sampleCount)
	}
	if o.sampleRate != nil && (*o.sampleRate <= 0 || *o.sampleRate > 1) {
		return valueErrorf("sample_rate", "Invalid sample_rate %v", *o.sampleRate)
	}
	if o.sampleCount != nil && o.sampleRate != nil {
		return valueErrorf("sampling", "Only one of sample_count or sample_rate can be specified.")
	}
	if o.numValuesHistogramBuckets < 2 {
		return valueErrorf("num_values_histogram_buckets", "Invalid num_values_histogram_buckets %v", o.numValuesHistogramBuckets)
	}
	if o.numHistogramBuckets < 0 {
		return valueErrorf("num_histogram_buckets", "Invalid num_histogram_buckets %v", o.numHistogramBuckets)
	}
	if o.numQuantilesHistogramBuckets < 0 {
		return valueErrorf("num_quantiles_histogram_buckets", "Invalid num_quantiles_histogram_buckets %v", o.numQuantilesHistogramBuckets)
	}
	if o.desiredBatchSize != nil && *o.desiredBatchSize <= 0 {
		return valueErrorf("desired_batch_size", "Invalid desired_batch_size %v", *o.desiredBatchSize)
	}
	if o.semanticDomainStatsSampleRate != nil && (*o.semanticDomainStatsSampleRate <= 0 || *o.semanticDomainStatsSampleRate > 1) {
		return valueErrorf("semantic_domain_stats_sample_rate", "Invalid semantic_domain_stats_sample_rate %v", *o.semanticDomainStatsSampleRate)
	}
	return nil
}

func coerceGenerators(v interface{}) ([]statsgen.Generator, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, typeErrorf("generators", "generators is of type %T, should be a list.", v)
	}
	out := make([]statsgen.Generator, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		g, ok := statsgen.AsGenerator(elem)
		if !ok {
			return nil, typeErrorf("generators",
				"Statistics generator must extend one of CombinerStatsGenerator, "+
					"TransformStatsGenerator, or CombinerFeatureStatsGenerator "+
					"found object of type %T.", elem)
		}
		out = append(out, g)
	}
	return out, nil
}

func coerceFeatureAllowlist(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]string); ok {
		return append([]string(nil), list...), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, typeErrorf("feature_allowlist", "feature_allowlist is of type %T, should be a list.", v)
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, ok := rv.Index(i).Interface().(string)
		if !ok {
			return nil, typeErrorf("feature_allowlist", "feature_allowlist must contain strings only.")
		}
		out = append(out, s)
	}
	return out, nil
}

func coerceSchema(v interface{}) (*schema.Schema, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(*schema.Schema)
	if !ok {
		return nil, typeErrorf("schema", "schema is of type %T, should be a Schema proto.", v)
	}
	return s, nil
}

func coerceSliceFunctions(v interface{}) ([]slicer.Func, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, typeErrorf("slice_functions", "slice_functions is of type %T, should be a list.", v)
	}
	out := make([]slicer.Func, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		fn, ok := slicer.AsFunc(rv.Index(i).Interface())
		if !ok {
			return nil, typeErrorf("slice_functions", "slice_functions must contain functions only.")
		}
		out = append(out, fn)
	}
	return out, nil
}
