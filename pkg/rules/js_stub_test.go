//go:build !js_eval

package rules

import "testing"

func TestJSEvaluatorUnavailableWithoutTag(t *testing.T) {
	if jsEvaluatorAvailable() {
		t.Fatalf("js evaluator must be disabled without the js_eval tag")
	}
	if NewJSEvaluator(JSWithProgramCache(nil)) != nil {
		t.Fatalf("expected nil evaluator")
	}
}
