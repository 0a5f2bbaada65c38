package extraction

import (
	"testing"

	"wayfinder/internal/media"
)

func TestMineExtractsTranscriptMentions(t *testing.T) {
	segments := []media.Segment{
		{StartMS: 1000, EndMS: 3000, Text: "we're at Daisy's Cafe"},
	}
	set := Mine(segments, nil)
	if set.Len() != 1 {
		t.Fatalf("mined = %d, want 1", set.Len())
	}
	entry := set.All()[0]
	if entry.Name != "Daisy's Cafe" {
		t.Fatalf("name = %q", entry.Name)
	}
	if entry.StartMS != 1000 || entry.EndMS != 3000 {
		t.Fatalf("timestamps = %d..%d", entry.StartMS, entry.EndMS)
	}
	if len(entry.Evidence.Transcript) != 1 || entry.Evidence.Transcript[0].Quote != "we're at Daisy's Cafe" {
		t.Fatalf("evidence = %+v", entry.Evidence)
	}
}

func TestMineMergesEvidenceCaseInsensitively(t *testing.T) {
	segments := []media.Segment{
		{StartMS: 0, EndMS: 2000, Text: "we're at daisy's cafe"},
	}
	ocrLines := []media.OCRLine{
		{TimestampMS: 4000, Text: "Daisy's Cafe"},
	}
	set := Mine(segments, ocrLines)
	if set.Len() != 1 {
		t.Fatalf("mined = %d, want merged 1", set.Len())
	}
	entry := set.All()[0]
	if len(entry.Evidence.Transcript) != 1 || len(entry.Evidence.OCR) != 1 {
		t.Fatalf("evidence not merged: %+v", entry.Evidence)
	}
}

func TestMineSkipsNonPlaceOCR(t *testing.T) {
	ocrLines := []media.OCRLine{
		{TimestampMS: 0, Text: "subscribe"},
		{TimestampMS: 1000, Text: "ok"},
		{TimestampMS: 2000, Text: "NYC Bites"},
	}
	set := Mine(nil, ocrLines)
	if set.Len() != 1 {
		t.Fatalf("mined = %d, want 1", set.Len())
	}
	if set.All()[0].Name != "NYC Bites" {
		t.Fatalf("name = %q", set.All()[0].Name)
	}
}

func TestLooksLikePlaceName(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Daisy's Cafe", true},       // venue keyword
		{"NYC Bites", true},          // >= 2 uppercase characters
		{"The Grand Palace", true},   // title cased
		{"ok", false},                // too short
		{"subscribe", false},         // generic phrase
		{"quiet corner here", false}, // lower case, no keyword
	}
	for _, tc := range cases {
		if got := LooksLikePlaceName(tc.text); got != tc.want {
			t.Fatalf("LooksLikePlaceName(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestMineHandlesMultiplePatterns(t *testing.T) {
	segments := []media.Segment{
		{StartMS: 0, EndMS: 1000, Text: "next stop is Gion District"},
		{StartMS: 2000, EndMS: 3000, Text: "this is Nishiki Market"},
	}
	set := Mine(segments, nil)
	if set.Len() != 2 {
		t.Fatalf("mined = %d, want 2", set.Len())
	}
	names := []string{set.All()[0].Name, set.All()[1].Name}
	if names[0] != "Gion District" || names[1] != "Nishiki Market" {
		t.Fatalf("names = %v", names)
	}
}
