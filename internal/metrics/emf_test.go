package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func captureFlush(t *testing.T, rec *Recorder) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	rec.Flush()

	if buf.Len() == 0 {
		return nil
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("EMF output must be exactly one line, got %q", buf.String())
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output: %v\n%s", err, buf.String())
	}
	return doc
}

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "menu-lambda"
	defer func() { functionName = "" }()

	r := New(Namespace)
	if r.dimensions["FunctionName"] != "menu-lambda" {
		t.Errorf("FunctionName dimension = %q, want menu-lambda", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	doc := captureFlush(t, New(Namespace).
		Dimension("Operation", "generateDishImage").
		Dimension("Category", "network").
		Metric("GeminiApiLatencyMs", 1234, UnitMilliseconds).
		Count("DishImageFailed").
		Property("dishId", "abc"))

	if doc == nil {
		t.Fatal("expected output")
	}
	if doc["Operation"] != "generateDishImage" || doc["Category"] != "network" {
		t.Errorf("dimension values missing: %v", doc)
	}
	if doc["GeminiApiLatencyMs"] != float64(1234) {
		t.Errorf("GeminiApiLatencyMs = %v", doc["GeminiApiLatencyMs"])
	}
	if doc["dishId"] != "abc" {
		t.Errorf("property dishId = %v", doc["dishId"])
	}

	aws, ok := doc["_aws"].(map[string]interface{})
	if !ok {
		t.Fatal("missing _aws directive")
	}
	cw := aws["CloudWatchMetrics"].([]interface{})[0].(map[string]interface{})
	if cw["Namespace"] != Namespace {
		t.Errorf("Namespace = %v", cw["Namespace"])
	}
	dims := cw["Dimensions"].([]interface{})[0].([]interface{})
	if len(dims) != 2 || dims[0] != "Category" || dims[1] != "Operation" {
		t.Errorf("dimension keys = %v, want sorted [Category Operation]", dims)
	}
	if defs := cw["Metrics"].([]interface{}); len(defs) != 2 {
		t.Errorf("expected 2 metric definitions, got %d", len(defs))
	}
}

func TestRecorder_FlushNoMetrics(t *testing.T) {
	if doc := captureFlush(t, New(Namespace).Dimension("Operation", "noop")); doc != nil {
		t.Errorf("expected no output without metrics, got %v", doc)
	}
}

