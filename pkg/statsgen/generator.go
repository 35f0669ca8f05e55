package statsgen

import (
	"context"

	"github.com/kumarabd/validation-plane/tuner/pkg/types"
)

// Accumulator holds a combiner's opaque intermediate state. Each combiner
// defines its own concrete accumulator type.
type Accumulator interface{}

// Generator is the capability shared by every statistics generator. The
// pipeline only accepts values that additionally satisfy one of the three
// concrete variants below.
type Generator interface {
	Name() string
}

// CombinerStatsGenerator folds whole record batches into an accumulator and
// extracts dataset-level statistics once the input is exhausted. Accumulators
// from parallel workers are merged before extraction.
type CombinerStatsGenerator interface {
	Generator
	CreateAccumulator() Accumulator
	AddInput(acc Accumulator, batch types.RecordBatch) Accumulator
	MergeAccumulators(accs []Accumulator) Accumulator
	ExtractOutput(acc Accumulator) types.DatasetStats
}

// TransformStatsGenerator consumes the full record stream and emits
// statistics on its own schedule. The returned channel must be closed when
// the input channel is drained or the context is cancelled.
type TransformStatsGenerator interface {
	Generator
	Transform(ctx context.Context, in <-chan types.RecordBatch) <-chan types.DatasetStats
}

// CombinerFeatureStatsGenerator folds the values of a single feature into an
// accumulator, producing per-feature statistics. The values argument carries
// one entry per record in the batch.
type CombinerFeatureStatsGenerator interface {
	Generator
	CreateAccumulator() Accumulator
	AddInput(acc Accumulator, feature string, values [][]string) Accumulator
	MergeAccumulators(accs []Accumulator) Accumulator
	ExtractOutput(acc Accumulator) types.FeatureStats
}

// AsGenerator reports whether v satisfies one of the accepted generator
// variants. Satisfying Generator alone is not enough.
func AsGenerator(v interface{}) (Generator, bool) {
	switch g := v.(type) {
	case CombinerStatsGenerator:
		return g, true
	case TransformStatsGenerator:
		return g, true
	case CombinerFeatureStatsGenerator:
		return g, true
	default:
		return nil, false
	}
}
