package statsopts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kumarabd/validation-plane/tuner/pkg/schema"
	"github.com/kumarabd/validation-plane/tuner/pkg/slicer"
)

// The all-defaults document, key for key. This layout is the compatibility
// contract between producers and consumers of the same version.
const defaultDocument = `{` +
	`"_generators":null,` +
	`"_feature_allowlist":null,` +
	`"_schema":null,` +
	`"weight_feature":null,` +
	`"label_feature":null,` +
	`"_slice_functions":null,` +
	`"_sample_count":null,` +
	`"_sample_rate":null,` +
	`"num_top_values":20,` +
	`"frequency_threshold":1,` +
	`"weighted_frequency_threshold":1,` +
	`"num_rank_histogram_buckets":1000,` +
	`"_num_values_histogram_buckets":10,` +
	`"_num_histogram_buckets":10,` +
	`"_num_quantiles_histogram_buckets":10,` +
	`"epsilon":0.01,` +
	`"infer_type_from_schema":false,` +
	`"_desired_batch_size":null,` +
	`"enable_semantic_domain_stats":false,` +
	`"_semantic_domain_stats_sample_rate":null` +
	`}`

func TestToJSONDefaultDocument(t *testing.T) {
	opts, err := New(Params{})
	if err != nil {
		t.Fatalf("Failed to construct default options: %v", err)
	}

	doc, err := opts.ToJSON()
	if err != nil {
		t.Fatalf("Failed to serialize options: %v", err)
	}
	if doc != defaultDocument {
		t.Errorf("Canonical default document drifted:\n want %s\n got  %s", defaultDocument, doc)
	}
}

func TestToJSONAlwaysNullsNonSerializableFields(t *testing.T) {
	sch, err := schema.New(schema.Feature{Name: "label", Type: schema.FeatureTypeString})
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}

	opts, err := New(Params{
		Generators:     []interface{}{&mockCombinerGenerator{name: "example_count"}},
		Schema:         sch,
		SliceFunctions: []slicer.Func{slicer.ForFeatureValue("b")},
	})
	if err != nil {
		t.Fatalf("Failed to construct options: %v", err)
	}

	doc, err := opts.ToJSON()
	if err != nil {
		t.Fatalf("Failed to serialize options: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &decoded); err != nil {
		t.Fatalf("Serialized document is not valid JSON: %v", err)
	}
	for _, key := range []string{"_generators", "_slice_functions", "_schema"} {
		v, present := decoded[key]
		if !present {
			t.Errorf("Expected key %s in the document", key)
			continue
		}
		if v != nil {
			t.Errorf("Expected %s to serialize as null even when set, got %v", key, v)
		}
	}
}

func TestFromJSONDefaultDocument(t *testing.T) {
	opts, err := FromJSON(defaultDocument)
	if err != nil {
		t.Fatalf("Failed to deserialize the default document: %v", err)
	}

	fresh, err := New(Params{})
	if err != nil {
		t.Fatalf("Failed to construct default options: %v", err)
	}

	got, err := opts.ToJSON()
	if err != nil {
		t.Fatalf("Failed to re-serialize options: %v", err)
	}
	want, err := fresh.ToJSON()
	if err != nil {
		t.Fatalf("Failed to serialize default options: %v", err)
	}
	if got != want {
		t.Errorf("Deserialized default document differs from Construct():\n want %s\n got  %s", want, got)
	}
}

func TestRoundTripScalarFields(t *testing.T) {
	opts, err := New(Params{
		FeatureAllowlist:              []string{"a", "b"},
		WeightFeature:                 strp("w"),
		LabelFeature:                  strp("label"),
		SampleRate:                    f64(0.25),
		NumTopValues:                  i64(30),
		FrequencyThreshold:            i64(2),
		WeightedFrequencyThreshold:    f64(2.5),
		NumRankHistogramBuckets:       i64(500),
		NumValuesHistogramBuckets:     i64(4),
		NumHistogramBuckets:           i64(7),
		NumQuantilesHistogramBuckets:  i64(0),
		Epsilon:                       f64(0.1),
		InferTypeFromSchema:           boolp(true),
		DesiredBatchSize:              i64(128),
		EnableSemanticDomainStats:     boolp(true),
		SemanticDomainStatsSampleRate: f64(0.5),
	})
	if err != nil {
		t.Fatalf("Failed to construct options: %v", err)
	}

	doc, err := opts.ToJSON()
	if err != nil {
		t.Fatalf("Failed to serialize options: %v", err)
	}
	back, err := FromJSON(doc)
	if err != nil {
		t.Fatalf("Failed to deserialize options: %v", err)
	}

	redoc, err := back.ToJSON()
	if err != nil {
		t.Fatalf("Failed to re-serialize options: %v", err)
	}
	if redoc != doc {
		t.Errorf("Round trip drifted:\n first  %s\n second %s", doc, redoc)
	}

	if v, ok := back.GetSampleRate(); !ok || v != 0.25 {
		t.Errorf("Expected sample_rate 0.25 back, got %v (present=%v)", v, ok)
	}
	if allow := back.GetFeatureAllowlist(); len(allow) != 2 || allow[0] != "a" {
		t.Errorf("Expected allowlist [a b] back, got %v", allow)
	}
}

func TestFromJSONDropsNonSerializableContent(t *testing.T) {
	// Whatever the payload carries for the three opaque fields is discarded,
	// never reconstructed, never an error.
	doc := strings.Replace(defaultDocument, `"_generators":null`, `"_generators":["example_count"]`, 1)
	doc = strings.Replace(doc, `"_slice_functions":null`, `"_slice_functions":[{"name":"by_label"}]`, 1)
	doc = strings.Replace(doc, `"_schema":null`, `"_schema":{"features":[]}`, 1)

	opts, err := FromJSON(doc)
	if err != nil {
		t.Fatalf("Failed to deserialize document with opaque payloads: %v", err)
	}
	if opts.GetGenerators() != nil {
		t.Error("Expected generators to deserialize to absent")
	}
	if opts.GetSliceFunctions() != nil {
		t.Error("Expected slice_functions to deserialize to absent")
	}
	if opts.GetSchema() != nil {
		t.Error("Expected schema to deserialize to absent")
	}
}

func TestFromJSONPartialDocumentKeepsDefaults(t *testing.T) {
	opts, err := FromJSON(`{"_sample_count": 50, "num_top_values": 5}`)
	if err != nil {
		t.Fatalf("Failed to deserialize partial document: %v", err)
	}
	if v, ok := opts.GetSampleCount(); !ok || v != 50 {
		t.Errorf("Expected sample_count 50, got %v (present=%v)", v, ok)
	}
	if got := opts.GetNumTopValues(); got != 5 {
		t.Errorf("Expected num_top_values 5, got %d", got)
	}
	if got := opts.GetNumRankHistogramBuckets(); got != 1000 {
		t.Errorf("Expected absent keys to keep defaults, got num_rank_histogram_buckets %d", got)
	}
}

func TestFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"malformed text", `{"epsilon": `},
		{"unknown key", `{"epsilon": 0.01, "surprise": true}`},
		{"trailing data", defaultDocument + `{"epsilon": 0.5}`},
		{"wrong value type", `{"num_top_values": "twenty"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromJSON(tt.text); err == nil {
				t.Error("Expected a parse error")
			}
		})
	}
}

func TestFromJSONBypassesValidation(t *testing.T) {
	// The codec trusts previously serialized state; Validate is the caller's
	// admission step for untrusted documents.
	opts, err := FromJSON(`{"_sample_count": -5}`)
	if err != nil {
		t.Fatalf("Expected deserialization to trust its input, got %v", err)
	}
	if err := opts.Validate(); err == nil {
		t.Error("Expected Validate to flag the out-of-range value")
	} else if err.Error() != "Invalid sample_count -5" {
		t.Errorf("Expected 'Invalid sample_count -5', got %q", err.Error())
	}
}
