package extraction

import (
	"fmt"
	"testing"

	"wayfinder/internal/media"
)

func TestFilterSegmentsUnderBudgetUnchanged(t *testing.T) {
	segments := []media.Segment{
		{Text: "uh huh"},
		{Text: "we visited the museum"},
	}
	filtered := FilterSegments(segments, 10)
	if len(filtered) != 2 {
		t.Fatalf("filtered = %d, want unchanged 2", len(filtered))
	}
}

func TestFilterSegmentsKeepsMatchesWithNeighbors(t *testing.T) {
	segments := make([]media.Segment, 10)
	for i := range segments {
		segments[i] = media.Segment{StartMS: int64(i * 1000), Text: "uh huh"}
	}
	segments[5].Text = "we visited the museum"

	filtered := FilterSegments(segments, 9)
	if len(filtered) != 5 {
		t.Fatalf("filtered = %d, want match plus two neighbors each side", len(filtered))
	}
	for i, seg := range filtered {
		wantStart := int64((3 + i) * 1000)
		if seg.StartMS != wantStart {
			t.Fatalf("segment %d start = %d, want %d (original order)", i, seg.StartMS, wantStart)
		}
	}
}

func TestFilterSegmentsCutsToPrefixWhenOverflowing(t *testing.T) {
	segments := make([]media.Segment, 10)
	for i := range segments {
		segments[i] = media.Segment{Text: fmt.Sprintf("we visited the museum again %d", i), StartMS: int64(i)}
	}
	filtered := FilterSegments(segments, 4)
	if len(filtered) != 4 {
		t.Fatalf("filtered = %d, want 4", len(filtered))
	}
	for i, seg := range filtered {
		if seg.StartMS != int64(i) {
			t.Fatalf("expected strict prefix, got %+v", filtered)
		}
	}
}

func TestFilterSegmentsKeepsEdgeNeighborsInBounds(t *testing.T) {
	segments := []media.Segment{
		{Text: "we visited the museum"},
		{Text: "uh huh"},
		{Text: "uh huh"},
		{Text: "uh huh"},
	}
	filtered := FilterSegments(segments, 3)
	if len(filtered) != 3 {
		t.Fatalf("filtered = %d, want 3 (match plus in-bounds neighbors)", len(filtered))
	}
	if filtered[0].Text != "we visited the museum" {
		t.Fatalf("match missing from keep-set: %+v", filtered)
	}
}
