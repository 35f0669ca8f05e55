package schema

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// FeatureType classifies the values a feature is expected to carry.
type FeatureType string

const (
	FeatureTypeUnknown FeatureType = "UNKNOWN"
	FeatureTypeInt     FeatureType = "INT"
	FeatureTypeFloat   FeatureType = "FLOAT"
	FeatureTypeBytes   FeatureType = "BYTES"
	FeatureTypeString  FeatureType = "STRING"
)

// Feature describes one expected feature: its name, value type, and an
// optional closed domain of accepted string values.
type Feature struct {
	Name   string      `json:"name"`
	Type   FeatureType `json:"type"`
	Domain []string    `json:"domain,omitempty"`
}

// Schema describes the expected feature types and domains of a dataset,
// as produced by the schema-inference stage. The options object treats it
// as an opaque value; workers read it when infer_type_from_schema is set.
type Schema struct {
	Features []Feature `json:"features"`
}

// New builds a schema from the given features. Feature names are normalized
// to NFC so that names arriving from different producers compare equal.
func New(features ...Feature) (*Schema, error) {
	seen := make(map[string]struct{}, len(features))
	normalized := make([]Feature, len(features))
	for i, f := range features {
		name := norm.NFC.String(f.Name)
		if name == "" {
			return nil, fmt.Errorf("feature %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = struct{}{}
		f.Name = name
		normalized[i] = f
	}
	return &Schema{Features: normalized}, nil
}

// Feature returns the feature with the given name, if the schema defines it.
func (s *Schema) Feature(name string) (Feature, bool) {
	name = norm.NFC.String(name)
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}
