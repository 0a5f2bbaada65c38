package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wayfinder/internal/logging"
	"wayfinder/internal/media"
)

type fakeModel struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

var evidenceRequest = Request{
	Segments: []media.Segment{
		{StartMS: 0, EndMS: 2000, Text: "we're at Daisy's Cafe"},
	},
	LocationHint: "Portland",
}

func TestExtractDisabledUsesHeuristic(t *testing.T) {
	extractor := New(Settings{}, nil, logging.NewNop())
	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Method != media.MethodHeuristic {
		t.Fatalf("method = %s", result.Method)
	}
	if result.ModelUsed {
		t.Fatalf("model should not be used when disabled")
	}
	if result.FallbackReason != FallbackDisabled {
		t.Fatalf("fallback = %q, want %q", result.FallbackReason, FallbackDisabled)
	}
	if len(result.Candidates) == 0 {
		t.Fatalf("heuristic path should still produce candidates")
	}
}

func TestExtractModelSuccess(t *testing.T) {
	client := &fakeModel{responses: []string{
		`{"candidates":[{"name":"Daisy's Cafe","category":"cafe","confidence":0.88,"evidence":[{"start_ms":0,"end_ms":2000,"quote":"we're at Daisy's Cafe"}]}]}`,
	}}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Method != media.MethodModel || !result.ModelUsed {
		t.Fatalf("result = %+v", result)
	}
	if result.FallbackReason != "" {
		t.Fatalf("unexpected fallback: %q", result.FallbackReason)
	}
	if client.calls != 1 {
		t.Fatalf("calls = %d, want 1", client.calls)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("candidates = %d", len(result.Candidates))
	}
	candidate := result.Candidates[0]
	if candidate.Name != "Daisy's Cafe" || candidate.Category != media.CategoryCafe {
		t.Fatalf("candidate = %+v", candidate)
	}
	if candidate.Confidence != 0.88 {
		t.Fatalf("confidence = %v", candidate.Confidence)
	}
	if candidate.StartMS != 0 || candidate.EndMS != 2000 {
		t.Fatalf("timestamps = %d..%d", candidate.StartMS, candidate.EndMS)
	}
	if candidate.ExtractionMethod != media.MethodModel {
		t.Fatalf("extraction method = %s", candidate.ExtractionMethod)
	}
}

func TestExtractModelParseFailureFallsBack(t *testing.T) {
	client := &fakeModel{responses: []string{"total garbage", "still not json"}}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want original plus repair", client.calls)
	}
	if result.FallbackReason != FallbackParseFailed {
		t.Fatalf("fallback = %q", result.FallbackReason)
	}
	if result.Method != media.MethodHeuristic {
		t.Fatalf("method = %s, want heuristic fallback", result.Method)
	}
	if !result.ModelUsed {
		t.Fatalf("model attempt should be recorded")
	}
	if len(result.Candidates) == 0 {
		t.Fatalf("heuristic fallback should produce candidates")
	}
}

func TestExtractModelRepairRecoversResponse(t *testing.T) {
	client := &fakeModel{responses: []string{
		"sorry, here you go maybe",
		"```json\n{\"candidates\":[{\"name\":\"Daisy's Cafe\",\"confidence\":0.7}]}\n```",
	}}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want original plus repair", client.calls)
	}
	if result.Method != media.MethodModel || !result.ModelUsed {
		t.Fatalf("repaired response should stay on the model path: %+v", result)
	}
	if result.FallbackReason != "" {
		t.Fatalf("unexpected fallback: %q", result.FallbackReason)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Name != "Daisy's Cafe" {
		t.Fatalf("candidates = %+v", result.Candidates)
	}
	if len(client.prompts) != 2 || !strings.Contains(client.prompts[1], "Fix the following to valid JSON only") {
		t.Fatalf("second call should be a repair request: %q", client.prompts)
	}
}

func TestExtractModelCallFailureFallsBack(t *testing.T) {
	client := &fakeModel{err: errors.New("connection refused")}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("calls = %d, want 1 (no repair on transport failure)", client.calls)
	}
	if result.FallbackReason != FallbackCallFailed {
		t.Fatalf("fallback = %q", result.FallbackReason)
	}
	if result.Method != media.MethodHeuristic {
		t.Fatalf("method = %s", result.Method)
	}
}

func TestExtractModelReportedError(t *testing.T) {
	payload := `{"error":"input too long","candidates":[{"name":"Daisy's Cafe"}]}`

	strict := New(Settings{ModelEnabled: true}, &fakeModel{responses: []string{payload}}, logging.NewNop())
	result, err := strict.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.FallbackReason != FallbackReportedError {
		t.Fatalf("fallback = %q", result.FallbackReason)
	}
	if result.Method != media.MethodHeuristic {
		t.Fatalf("method = %s", result.Method)
	}

	lenient := New(Settings{ModelEnabled: true, KeepPartialResults: true}, &fakeModel{responses: []string{payload}}, logging.NewNop())
	kept, err := lenient.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if kept.FallbackReason != "" {
		t.Fatalf("partial results should be kept: %q", kept.FallbackReason)
	}
	if len(kept.Candidates) != 1 || kept.Candidates[0].Name != "Daisy's Cafe" {
		t.Fatalf("candidates = %+v", kept.Candidates)
	}
}

func TestExtractModelEmptyCandidatesFallsBack(t *testing.T) {
	client := &fakeModel{responses: []string{`{"candidates":[]}`}}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.FallbackReason != FallbackEmpty {
		t.Fatalf("fallback = %q", result.FallbackReason)
	}
	if result.Method != media.MethodHeuristic {
		t.Fatalf("method = %s", result.Method)
	}
}

func TestExtractDeduplicatesModelRows(t *testing.T) {
	client := &fakeModel{responses: []string{
		`{"candidates":[{"name":"Daisy's Cafe","confidence":0.8},{"name":"daisy's cafe","confidence":0.6}]}`,
	}}
	extractor := New(Settings{ModelEnabled: true}, client, logging.NewNop())

	result, err := extractor.Extract(context.Background(), evidenceRequest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("candidates = %d, want deduplicated 1", len(result.Candidates))
	}
	if result.Candidates[0].Name != "Daisy's Cafe" {
		t.Fatalf("first occurrence wins: %q", result.Candidates[0].Name)
	}
}
