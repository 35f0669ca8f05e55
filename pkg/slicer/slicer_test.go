package slicer

import (
	"testing"

	"github.com/kumarabd/validation-plane/tuner/pkg/types"
)

func TestAsFunc(t *testing.T) {
	if _, ok := AsFunc(ForFeatureValue("a")); !ok {
		t.Error("Expected a Func to pass the callable check")
	}
	if _, ok := AsFunc(func(rec types.Record) (string, bool) { return "all", true }); !ok {
		t.Error("Expected a bare function with the right signature to pass")
	}
	if _, ok := AsFunc(func() {}); ok {
		t.Error("Expected a function with the wrong signature to fail")
	}
	if _, ok := AsFunc("not callable"); ok {
		t.Error("Expected a non-function to fail")
	}
}

func TestForFeatureValue(t *testing.T) {
	fn := ForFeatureValue("env")

	slice, ok := fn(types.Record{"env": {"prod", "staging"}})
	if !ok || slice != "env_prod" {
		t.Errorf("Expected slice env_prod, got %q (ok=%v)", slice, ok)
	}

	if _, ok := fn(types.Record{"other": {"x"}}); ok {
		t.Error("Expected a record without the feature to stay unsliced")
	}
	if _, ok := fn(types.Record{"env": {}}); ok {
		t.Error("Expected a record with no values to stay unsliced")
	}
}
