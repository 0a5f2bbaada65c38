package extraction

import (
	"regexp"
	"strings"

	"wayfinder/internal/media"
	"wayfinder/internal/textutil"
)

const (
	minPlaceNameLength = 3
	maxPlaceNameLength = 80
)

// mentionPatterns are the phrase shapes that introduce a place name in
// speech. Order is fixed; each match contributes one mention.
var mentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)we(?:'re| are) at ([A-Za-z0-9&@\-'\.\s]+)`),
	regexp.MustCompile(`(?i)we(?:'re| are) in ([A-Za-z0-9&@\-'\.\s]+)`),
	regexp.MustCompile(`(?i)go to ([A-Za-z0-9&@\-'\.\s]+)`),
	regexp.MustCompile(`(?i)going to ([A-Za-z0-9&@\-'\.\s]+)`),
	regexp.MustCompile(`(?i)next stop is ([A-Za-z0-9&@\-'\.\s]+)`),
	regexp.MustCompile(`(?i)this is ([A-Za-z0-9&@\-'\.\s]+)`),
}

// MinedCandidate accumulates evidence for one normalized name.
type MinedCandidate struct {
	Name     string
	Evidence media.Evidence
	StartMS  int64
	EndMS    int64
}

// CandidateSet is an insertion-ordered map keyed by the lower-cased
// normalized name. Insertion order is the aggregator's tie-break rule,
// so it must stay deterministic.
type CandidateSet struct {
	order   []string
	entries map[string]*MinedCandidate
}

func newCandidateSet() *CandidateSet {
	return &CandidateSet{entries: make(map[string]*MinedCandidate)}
}

func (s *CandidateSet) get(name string, startMS, endMS int64) *MinedCandidate {
	key := media.Key(name)
	if entry, ok := s.entries[key]; ok {
		return entry
	}
	entry := &MinedCandidate{Name: name, StartMS: startMS, EndMS: endMS}
	s.entries[key] = entry
	s.order = append(s.order, key)
	return entry
}

// Len returns how many distinct candidates the set holds.
func (s *CandidateSet) Len() int {
	return len(s.order)
}

// All returns candidates in insertion order of first evidence.
func (s *CandidateSet) All() []*MinedCandidate {
	out := make([]*MinedCandidate, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entries[key])
	}
	return out
}

// Mine proposes place-name candidates directly from transcript and OCR
// text using phrase patterns and lexicons. It is deterministic and
// makes no external calls, so it always works as a complete fallback.
func Mine(segments []media.Segment, ocrLines []media.OCRLine) *CandidateSet {
	set := newCandidateSet()

	for _, segment := range segments {
		normalized := textutil.Normalize(segment.Text)
		for _, mention := range extractMentions(normalized) {
			entry := set.get(mention, segment.StartMS, segment.EndMS)
			entry.Evidence.Transcript = append(entry.Evidence.Transcript, media.TranscriptEvidence{
				Quote:   segment.Text,
				StartMS: segment.StartMS,
				EndMS:   segment.EndMS,
			})
		}
	}

	for _, line := range ocrLines {
		normalized := textutil.Normalize(line.Text)
		if !LooksLikePlaceName(normalized) {
			continue
		}
		entry := set.get(normalized, line.TimestampMS, line.TimestampMS)
		entry.Evidence.OCR = append(entry.Evidence.OCR, media.OCREvidence{
			Text:        line.Text,
			TimestampMS: line.TimestampMS,
		})
	}

	return set
}

func extractMentions(text string) []string {
	var mentions []string
	for _, pattern := range mentionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if candidate := textutil.Normalize(match[1]); candidate != "" {
				mentions = append(mentions, candidate)
			}
		}
	}
	return mentions
}

// LooksLikePlaceName applies the OCR acceptance rule: bounded length,
// not a generic phrase, and either a venue keyword, at least two
// uppercase characters, or title casing.
func LooksLikePlaceName(text string) bool {
	if len(text) < minPlaceNameLength || len(text) > maxPlaceNameLength {
		return false
	}
	lowered := strings.ToLower(text)
	if IsGenericPhrase(lowered) {
		return false
	}
	if HasPlaceKeyword(lowered) {
		return true
	}
	if textutil.UppercaseCount(text) >= 2 {
		return true
	}
	return textutil.IsTitleCased(text)
}
