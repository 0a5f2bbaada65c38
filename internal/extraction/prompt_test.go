package extraction

import (
	"strings"
	"testing"

	"wayfinder/internal/media"
)

func TestBuildPromptIncludesHintAndTranscript(t *testing.T) {
	segments := []media.Segment{{StartMS: 0, EndMS: 1500, Text: "we're at Daisy's Cafe"}}
	prompt := BuildPrompt(segments, "Portland, OR", 0, 0)

	if !strings.Contains(prompt, "Location hint: Portland, OR") {
		t.Fatalf("hint line missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Daisy's Cafe") {
		t.Fatalf("transcript payload missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"candidates"`) {
		t.Fatalf("schema missing:\n%s", prompt)
	}
}

func TestBuildPromptNoHint(t *testing.T) {
	prompt := BuildPrompt(nil, "   ", 0, 0)
	if !strings.Contains(prompt, "Location hint: none") {
		t.Fatalf("expected none hint line:\n%s", prompt)
	}
}

func TestBuildPromptTruncates(t *testing.T) {
	long := strings.Repeat("we went to the museum and ", 4000)
	segments := []media.Segment{{Text: long}}

	prompt := BuildPrompt(segments, "", 500, 800)
	if len(prompt) > 800 {
		t.Fatalf("prompt length = %d, want <= 800", len(prompt))
	}
}

func TestBuildRepairPromptWrapsRawOutput(t *testing.T) {
	repair := BuildRepairPrompt(`{"broken":`)
	if !strings.HasPrefix(repair, RepairPromptPrefix) {
		t.Fatalf("prefix missing: %q", repair)
	}
	if !strings.Contains(repair, `{"broken":`) {
		t.Fatalf("raw output missing: %q", repair)
	}
}
