package media

import (
	"strings"
	"time"
)

// Segment is a timestamped transcript fragment produced by transcription.
type Segment struct {
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// Duration returns the segment length.
func (s Segment) Duration() time.Duration {
	if s.EndMS <= s.StartMS {
		return 0
	}
	return time.Duration(s.EndMS-s.StartMS) * time.Millisecond
}

// OCRLine is a timestamped line of on-screen text produced by OCR.
type OCRLine struct {
	TimestampMS int64  `json:"timestamp_ms"`
	Text        string `json:"text"`
}

// Category classifies a candidate place.
type Category string

const (
	CategoryRestaurant   Category = "restaurant"
	CategoryCafe         Category = "cafe"
	CategoryBar          Category = "bar"
	CategoryBakery       Category = "bakery"
	CategoryHotel        Category = "hotel"
	CategoryAttraction   Category = "attraction"
	CategoryStore        Category = "store"
	CategoryNeighborhood Category = "neighborhood"
	CategoryPark         Category = "park"
	CategoryTransit      Category = "transit"
	CategoryOther        Category = "other"
)

var categorySet = map[Category]struct{}{
	CategoryRestaurant:   {},
	CategoryCafe:         {},
	CategoryBar:          {},
	CategoryBakery:       {},
	CategoryHotel:        {},
	CategoryAttraction:   {},
	CategoryStore:        {},
	CategoryNeighborhood: {},
	CategoryPark:         {},
	CategoryTransit:      {},
	CategoryOther:        {},
}

// ParseCategory converts a raw string into a known Category, defaulting
// to CategoryOther for unrecognized values.
func ParseCategory(value string) Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := categorySet[normalized]; ok {
		return normalized
	}
	return CategoryOther
}

// TranscriptEvidence is a transcript fragment supporting a candidate.
type TranscriptEvidence struct {
	Quote   string `json:"quote"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// OCREvidence is an on-screen text fragment supporting a candidate.
type OCREvidence struct {
	Text        string `json:"text"`
	TimestampMS int64  `json:"timestamp_ms"`
}

// Evidence groups the supporting fragments for one candidate by source.
type Evidence struct {
	Transcript []TranscriptEvidence `json:"transcript_snippets"`
	OCR        []OCREvidence        `json:"ocr_snippets"`
}

// ExtractionMethod records which path produced a candidate.
type ExtractionMethod string

const (
	MethodHeuristic ExtractionMethod = "heuristic"
	MethodModel     ExtractionMethod = "model"
)

// Candidate is a proposed real-world place awaiting or having undergone
// geographic resolution. Name and ExtractionMethod never change after
// creation; evidence only grows.
type Candidate struct {
	Name             string             `json:"name"`
	Category         Category           `json:"category"`
	Evidence         Evidence           `json:"evidence"`
	Confidence       float64            `json:"confidence"`
	ScoreBreakdown   map[string]float64 `json:"score_breakdown,omitempty"`
	AddressHint      string             `json:"address_hint,omitempty"`
	StartMS          int64              `json:"start_ms"`
	EndMS            int64              `json:"end_ms"`
	ExtractionMethod ExtractionMethod   `json:"extraction_method"`

	// Enrichment fields, absent until resolution runs.
	ResolvedName     string   `json:"resolved_name,omitempty"`
	PlaceID          string   `json:"place_id,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	ResolutionFailed bool     `json:"resolution_failed"`

	// Model-path audit metadata, opaque to further logic.
	ModelPrompt string `json:"model_prompt,omitempty"`
	ModelOutput string `json:"model_output,omitempty"`
}

// Key returns the case-insensitive deduplication key for a candidate name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HasCoordinates reports whether both latitude and longitude are set.
func (c *Candidate) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// MarkResolutionOutcome sets ResolutionFailed based on coordinate
// presence. Candidates without coordinates always count as failed,
// including when resolution was never attempted.
func (c *Candidate) MarkResolutionOutcome() {
	c.ResolutionFailed = !c.HasCoordinates()
}
