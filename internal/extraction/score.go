package extraction

import (
	"sort"
	"strings"

	"wayfinder/internal/media"
)

// Confidence bounds. A candidate is never certain in either direction.
const (
	MinConfidence = 0.05
	MaxConfidence = 0.95
)

// DefaultMaxCandidates is the output cap applied to both extraction
// paths.
const DefaultMaxCandidates = 15

// Score computes a candidate's confidence from its evidence summary.
// The model is additive from a 0.2 base; every applied term is kept in
// the breakdown so the sum of terms (before clamping) always equals the
// pre-clamp confidence. The clamped value is recorded under "final".
func Score(name string, evidence media.Evidence) (float64, map[string]float64) {
	score := 0.2
	breakdown := map[string]float64{"base": 0.2}
	lowered := strings.ToLower(name)
	if len(evidence.OCR) > 0 {
		score += 0.4
		breakdown["ocr"] = 0.4
	}
	if len(evidence.Transcript) > 0 {
		score += 0.3
		breakdown["transcript"] = 0.3
	}
	if HasPlaceKeyword(lowered) {
		score += 0.1
		breakdown["keyword"] = 0.1
	}
	if IsGenericPhrase(lowered) {
		score -= 0.4
		breakdown["generic_penalty"] = -0.4
	}
	final := ClampConfidence(score)
	breakdown["final"] = final
	return final, breakdown
}

// ClampConfidence forces a confidence into [MinConfidence, MaxConfidence].
func ClampConfidence(value float64) float64 {
	if value < MinConfidence {
		return MinConfidence
	}
	if value > MaxConfidence {
		return MaxConfidence
	}
	return value
}

// Aggregate scores mined candidates, ranks them by descending
// confidence with ties broken by insertion order, and truncates to
// maxCandidates.
func Aggregate(set *CandidateSet, addressHint string, maxCandidates int) []media.Candidate {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	mined := set.All()
	candidates := make([]media.Candidate, 0, len(mined))
	for _, entry := range mined {
		confidence, breakdown := Score(entry.Name, entry.Evidence)
		candidates = append(candidates, media.Candidate{
			Name:             entry.Name,
			Category:         media.CategoryOther,
			Evidence:         entry.Evidence,
			Confidence:       confidence,
			ScoreBreakdown:   breakdown,
			AddressHint:      strings.TrimSpace(addressHint),
			StartMS:          entry.StartMS,
			EndMS:            entry.EndMS,
			ExtractionMethod: media.MethodHeuristic,
			ResolutionFailed: true,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}
