package extract

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestJSONValue_EquivalentForms(t *testing.T) {
	want := map[string]interface{}{
		"consistency": "consistent",
		"confidence":  0.9,
	}

	// The same object must parse identically from every packaging.
	forms := map[string]string{
		"raw":            `{"consistency": "consistent", "confidence": 0.9}`,
		"json fence":     "```json\n{\"consistency\": \"consistent\", \"confidence\": 0.9}\n```",
		"untagged fence": "```\n{\"consistency\": \"consistent\", \"confidence\": 0.9}\n```",
		"prose around":   "Here is my verdict:\n{\"consistency\": \"consistent\", \"confidence\": 0.9}\nLet me know if you need more detail.",
		"fence in prose": "Sure! The result:\n```json\n{\"consistency\": \"consistent\", \"confidence\": 0.9}\n```\nHope that helps.",
	}

	for name, text := range forms {
		t.Run(name, func(t *testing.T) {
			got, err := JSONValue(text)
			if err != nil {
				t.Fatalf("JSONValue: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %#v, want %#v", got, want)
			}
		})
	}
}

func TestJSONValue_Arrays(t *testing.T) {
	text := "The claims are:\n```json\n[\"claim one\", \"claim two\"]\n```"
	got, err := JSONValue(text)
	if err != nil {
		t.Fatalf("JSONValue: %v", err)
	}
	arr, ok := got.([]interface{})
	if !ok {
		t.Fatalf("expected array, got %T", got)
	}
	if len(arr) != 2 || arr[0] != "claim one" {
		t.Errorf("unexpected array contents: %#v", arr)
	}
}

func TestJSONValue_FencePreferredOverIncidentalBraces(t *testing.T) {
	// The prose contains a brace span that is not the payload; the fenced
	// block must win.
	text := "Considering {the character} and events:\n```json\n{\"verdict\": \"ok\"}\n```"
	got, err := JSONValue(text)
	if err != nil {
		t.Fatalf("JSONValue: %v", err)
	}
	obj := got.(map[string]interface{})
	if obj["verdict"] != "ok" {
		t.Errorf("expected fenced payload, got %#v", got)
	}
}

func TestJSONValue_ManualScanFallback(t *testing.T) {
	// Greedy matching would span from the first { to the trailing } in the
	// prose and fail; the depth scan isolates the first balanced object.
	text := `verdict {"a": {"b": 1}} trailing } noise`
	got, err := JSONValue(text)
	if err != nil {
		t.Fatalf("JSONValue: %v", err)
	}
	obj := got.(map[string]interface{})
	inner, ok := obj["a"].(map[string]interface{})
	if !ok || inner["b"] != float64(1) {
		t.Errorf("unexpected value: %#v", got)
	}
}

func TestJSONValue_GarbageCarriesPreview(t *testing.T) {
	garbage := "I am terribly sorry but I cannot produce the structure you asked for " + strings.Repeat("x", 300)
	_, err := JSONValue(garbage)
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(parseErr.Preview) != 200 {
		t.Errorf("expected bounded 200-char preview, got %d chars", len(parseErr.Preview))
	}
	if !strings.HasPrefix(garbage, parseErr.Preview) {
		t.Error("preview should be a prefix of the input")
	}
}

func TestJSONValue_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := JSONValue(text); err == nil {
			t.Errorf("expected error for input %q", text)
		}
	}
}

func TestJSONObject_TypeValidation(t *testing.T) {
	if _, err := JSONObject(`["not", "an", "object"]`); err == nil {
		t.Error("expected error for array input")
	}
	obj, err := JSONObject(`{"k": "v"}`)
	if err != nil {
		t.Fatalf("JSONObject: %v", err)
	}
	if obj["k"] != "v" {
		t.Errorf("unexpected object: %#v", obj)
	}
}

func TestJSONArray_TypeValidation(t *testing.T) {
	if _, err := JSONArray(`{"not": "an array"}`); err == nil {
		t.Error("expected error for object input")
	}
	arr, err := JSONArray(`[1, 2]`)
	if err != nil {
		t.Fatalf("JSONArray: %v", err)
	}
	if len(arr) != 2 {
		t.Errorf("unexpected array: %#v", arr)
	}
}

func TestScanBalanced(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`prefix {"a": 1} suffix`, `{"a": 1}`},
		{`text [1, [2, 3]] more`, `[1, [2, 3]]`},
		{`никакого json`, ""},
		{`{never closes`, ""},
	}
	for _, tt := range tests {
		if got := scanBalanced(tt.in); got != tt.want {
			t.Errorf("scanBalanced(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
