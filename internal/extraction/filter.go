package extraction

import (
	"strings"

	"wayfinder/internal/media"
	"wayfinder/internal/textutil"
)

// DefaultMaxSegments bounds how many transcript segments are sent to
// the language model.
const DefaultMaxSegments = 120

// neighborWindow is how many segments on each side of a match are kept
// to preserve local context.
const neighborWindow = 2

// FilterSegments reduces an oversized transcript to a bounded,
// relevance-weighted subset. When the input already fits the budget it
// is returned unchanged. Otherwise segments that look signal-bearing
// are kept along with their neighbors, in original order, cut to a
// strict prefix when the keep-set still overflows.
func FilterSegments(segments []media.Segment, maxSegments int) []media.Segment {
	if maxSegments < 0 {
		maxSegments = 0
	}
	if len(segments) <= maxSegments {
		return segments
	}

	keep := make(map[int]struct{})
	for idx, segment := range segments {
		if !segmentMatches(segment.Text) {
			continue
		}
		for offset := -neighborWindow; offset <= neighborWindow; offset++ {
			neighbor := idx + offset
			if neighbor >= 0 && neighbor < len(segments) {
				keep[neighbor] = struct{}{}
			}
		}
	}

	filtered := make([]media.Segment, 0, len(keep))
	for idx, segment := range segments {
		if _, ok := keep[idx]; ok {
			filtered = append(filtered, segment)
		}
	}
	if len(filtered) > maxSegments {
		filtered = filtered[:maxSegments]
	}
	return filtered
}

func segmentMatches(text string) bool {
	lowered := strings.ToLower(text)
	if containsAny(lowered, actionWords) {
		return true
	}
	if containsAny(lowered, categoryWords) {
		return true
	}
	for _, cue := range locationCues {
		if strings.Contains(lowered, " "+cue+" ") {
			return true
		}
	}
	return looksProperNounish(text)
}

// looksProperNounish reports whether text has at least two
// whitespace-delimited tokens, at least two of them capitalized.
func looksProperNounish(text string) bool {
	if len(strings.Fields(text)) < 2 {
		return false
	}
	return textutil.CapitalizedTokens(text) >= 2
}
