package extraction

import (
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n[1,2]\n```", `[1,2]`},
		{`{"a":1}`, `{"a":1}`},
		{"  plain text  ", "plain text"},
	}
	for _, tc := range cases {
		if got := StripCodeFence(tc.in); got != tc.want {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseModelResponseDirect(t *testing.T) {
	parsed, ok := ParseModelResponse("```json\n{\"candidates\": []}\n```")
	if !ok {
		t.Fatalf("expected fenced JSON to parse")
	}
	object, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("parsed = %T", parsed)
	}
	if _, ok := object["candidates"]; !ok {
		t.Fatalf("candidates key missing: %v", object)
	}
}

func TestParseModelResponseExtractsSubstring(t *testing.T) {
	raw := `Here's the JSON you asked for: {"candidates":[{"name":"Daisy's Cafe"}]} hope that helps!`
	parsed, ok := ParseModelResponse(raw)
	if !ok {
		t.Fatalf("expected substring extraction to succeed")
	}
	object := parsed.(map[string]any)
	list, ok := object["candidates"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("candidates = %v", object["candidates"])
	}
}

func TestParseModelResponseRejectsGarbage(t *testing.T) {
	if _, ok := ParseModelResponse("no json anywhere here"); ok {
		t.Fatalf("expected failure for non-JSON text")
	}
	if _, ok := ParseModelResponse("{broken: [}"); ok {
		t.Fatalf("expected failure for malformed JSON")
	}
}

func TestExtractFirstJSONPrefersEarliestValue(t *testing.T) {
	extracted, ok := ExtractFirstJSON(`noise [1,2,3] then {"a":1}`)
	if !ok {
		t.Fatalf("expected extraction")
	}
	if extracted != "[1,2,3]" {
		t.Fatalf("extracted = %q", extracted)
	}
}

func TestNormalizeCandidatePayload(t *testing.T) {
	object := map[string]any{"candidates": []any{
		map[string]any{"name": "A"},
		"not a map",
		map[string]any{"name": "B"},
	}}
	rows := NormalizeCandidatePayload(object)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	array := []any{map[string]any{"name": "C"}}
	if rows := NormalizeCandidatePayload(array); len(rows) != 1 {
		t.Fatalf("bare array rows = %d, want 1", len(rows))
	}

	if rows := NormalizeCandidatePayload("garbage"); len(rows) != 0 {
		t.Fatalf("garbage rows = %d, want 0", len(rows))
	}
	if rows := NormalizeCandidatePayload(map[string]any{"error": "x"}); len(rows) != 0 {
		t.Fatalf("missing candidates rows = %d, want 0", len(rows))
	}
}
