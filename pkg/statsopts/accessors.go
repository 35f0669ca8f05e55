package statsopts

import (
	"github.com/kumarabd/validation-plane/tuner/pkg/schema"
	"github.com/kumarabd/validation-plane/tuner/pkg/slicer"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsgen"
)

// Slice-valued accessors return copies so callers cannot mutate the
// validated state. Optional scalars use the comma-ok form; absent means the
// parameter was never supplied.

// GetGenerators returns the configured generators, nil when absent.
func (o *Options) GetGenerators() []statsgen.Generator {
	if o.generators == nil {
		return nil
	}
	return append([]statsgen.Generator(nil), o.generators...)
}

// GetFeatureAllowlist returns the features statistics are restricted to,
// nil when absent.
func (o *Options) GetFeatureAllowlist() []string {
	if o.featureAllowlist == nil {
		return nil
	}
	return append([]string(nil), o.featureAllowlist...)
}

// GetSchema returns the schema collaborator, nil when absent.
func (o *Options) GetSchema() *schema.Schema {
	return o.schema
}

// GetSliceFunctions returns the configured slice functions, nil when absent.
func (o *Options) GetSliceFunctions() []slicer.Func {
	if o.sliceFunctions == nil {
		return nil
	}
	return append([]slicer.Func(nil), o.sliceFunctions...)
}

func (o *Options) GetWeightFeature() (string, bool) {
	if o.weightFeature == nil {
		return "", false
	}
	return *o.weightFeature, true
}

func (o *Options) GetLabelFeature() (string, bool) {
	if o.labelFeature == nil {
		return "", false
	}
	return *o.labelFeature, true
}

func (o *Options) GetSampleCount() (int64, bool) {
	if o.sampleCount == nil {
		return 0, false
	}
	return *o.sampleCount, true
}

func (o *Options) GetSampleRate() (float64, bool) {
	if o.sampleRate == nil {
		return 0, false
	}
	return *o.sampleRate, true
}

func (o *Options) GetDesiredBatchSize() (int64, bool) {
	if o.desiredBatchSize == nil {
		return 0, false
	}
	return *o.desiredBatchSize, true
}

func (o *Options) GetSemanticDomainStatsSampleRate() (float64, bool) {
	if o.semanticDomainStatsSampleRate == nil {
		return 0, false
	}
	return *o.semanticDomainStatsSampleRate, true
}

func (o *Options) GetNumTopValues() int64 { return o.numTopValues }

func (o *Options) GetFrequencyThreshold() int64 { return o.frequencyThreshold }

func (o *Options) GetWeightedFrequencyThreshold() float64 { return o.weightedFrequencyThreshold }

func (o *Options) GetNumRankHistogramBuckets() int64 { return o.numRankHistogramBuckets }

func (o *Options) GetNumValuesHistogramBuckets() int64 { return o.numValuesHistogramBuckets }

func (o *Options) GetNumHistogramBuckets() int64 { return o.numHistogramBuckets }

func (o *Options) GetNumQuantilesHistogramBuckets() int64 { return o.numQuantilesHistogramBuckets }

func (o *Options) GetEpsilon() float64 { return o.epsilon }

func (o *Options) GetInferTypeFromSchema() bool { return o.inferTypeFromSchema }

func (o *Options) GetEnableSemanticDomainStats() bool { return o.enableSemanticDomainStats }

// SamplingKind names the effective sampling policy.
type SamplingKind string

const (
	SamplingNone  SamplingKind = "none"
	SamplingCount SamplingKind = "count"
	SamplingRate  SamplingKind = "rate"
)

// Sampling is the sum-type view over the two mutually exclusive sampling
// fields. Count is set only for SamplingCount, Rate only for SamplingRate.
type Sampling struct {
	Kind  SamplingKind `json:"policy"`
	Count int64        `json:"count,omitempty"`
	Rate  float64      `json:"rate,omitempty"`
}

// Sampling derives the sampling policy of the object. Construction
// guarantees at most one of the two fields is set, so callers never have to
// re-check the exclusion rule.
func (o *Options) Sampling() Sampling {
	switch {
	case o.sampleCount != nil:
		return Sampling{Kind: SamplingCount, Count: *o.sampleCount}
	case o.sampleRate != nil:
		return Sampling{Kind: SamplingRate, Rate: *o.sampleRate}
	default:
		return Sampling{Kind: SamplingNone}
	}
}
