package extraction

import (
	"math"
	"testing"

	"wayfinder/internal/media"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreOCRWithKeyword(t *testing.T) {
	evidence := media.Evidence{OCR: []media.OCREvidence{{Text: "Daisy's Cafe", TimestampMS: 4000}}}
	confidence, breakdown := Score("Daisy's Cafe", evidence)
	if !almostEqual(confidence, 0.7) {
		t.Fatalf("confidence = %v, want 0.7", confidence)
	}
	if !almostEqual(breakdown["base"], 0.2) || !almostEqual(breakdown["ocr"], 0.4) || !almostEqual(breakdown["keyword"], 0.1) {
		t.Fatalf("breakdown = %v", breakdown)
	}
	if !almostEqual(breakdown["final"], confidence) {
		t.Fatalf("final %v != confidence %v", breakdown["final"], confidence)
	}
	if _, ok := breakdown["transcript"]; ok {
		t.Fatalf("transcript term should be absent: %v", breakdown)
	}
}

func TestScoreGenericPenalty(t *testing.T) {
	evidence := media.Evidence{Transcript: []media.TranscriptEvidence{{Quote: "subscribe"}}}
	confidence, breakdown := Score("subscribe", evidence)
	if !almostEqual(confidence, 0.1) {
		t.Fatalf("confidence = %v, want 0.1", confidence)
	}
	if !almostEqual(breakdown["generic_penalty"], -0.4) {
		t.Fatalf("breakdown = %v", breakdown)
	}
}

func TestScoreClampsAtUpperBound(t *testing.T) {
	evidence := media.Evidence{
		OCR:        []media.OCREvidence{{Text: "Blue Bottle Coffee"}},
		Transcript: []media.TranscriptEvidence{{Quote: "we're at Blue Bottle Coffee"}},
	}
	confidence, breakdown := Score("Blue Bottle Coffee", evidence)
	if confidence != MaxConfidence {
		t.Fatalf("confidence = %v, want %v", confidence, MaxConfidence)
	}
	if !almostEqual(breakdown["final"], MaxConfidence) {
		t.Fatalf("final = %v", breakdown["final"])
	}
}

func TestClampConfidenceBounds(t *testing.T) {
	if got := ClampConfidence(-1); got != MinConfidence {
		t.Fatalf("low clamp = %v", got)
	}
	if got := ClampConfidence(2); got != MaxConfidence {
		t.Fatalf("high clamp = %v", got)
	}
	if got := ClampConfidence(0.5); got != 0.5 {
		t.Fatalf("mid clamp = %v", got)
	}
}

func TestAggregateOrdersByConfidenceAndCaps(t *testing.T) {
	segments := []media.Segment{
		{StartMS: 0, EndMS: 2000, Text: "we're at Random Spot"},
	}
	ocrLines := []media.OCRLine{
		{TimestampMS: 5000, Text: "Blue Bottle Coffee"},
	}
	set := Mine(segments, ocrLines)
	if set.Len() != 2 {
		t.Fatalf("mined = %d, want 2", set.Len())
	}

	candidates := Aggregate(set, "Tokyo", 0)
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].Name != "Blue Bottle Coffee" {
		t.Fatalf("highest confidence first, got %q", candidates[0].Name)
	}
	if candidates[0].Confidence <= candidates[1].Confidence {
		t.Fatalf("order violated: %v vs %v", candidates[0].Confidence, candidates[1].Confidence)
	}
	if candidates[0].AddressHint != "Tokyo" {
		t.Fatalf("address hint = %q", candidates[0].AddressHint)
	}
	if !candidates[0].ResolutionFailed {
		t.Fatalf("unresolved candidates start with resolution_failed set")
	}

	capped := Aggregate(set, "", 1)
	if len(capped) != 1 || capped[0].Name != "Blue Bottle Coffee" {
		t.Fatalf("capped = %+v", capped)
	}
}
