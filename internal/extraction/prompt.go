package extraction

import (
	"encoding/json"
	"strings"

	"wayfinder/internal/media"
)

// DefaultMaxInputChars bounds the serialized transcript payload
// appended to the prompt.
const DefaultMaxInputChars = 40000

// DefaultMaxPromptChars bounds the complete prompt sent to the model.
const DefaultMaxPromptChars = 48000

const promptSchema = `Output schema (JSON only):
{
  "candidates": [
    {
      "name": string,
      "category": "restaurant"|"cafe"|"bar"|"bakery"|"hotel"|"attraction"|"store"|"neighborhood"|"park"|"transit"|"other",
      "evidence": [{"start_ms": number, "end_ms": number, "quote": string}],
      "confidence": number,
      "query_variants": string[]
    }
  ]
}
Rules:
- Only include items that can be searched in a places API.
- Every candidate must include evidence quote copied EXACTLY from transcript text.
- Exclude generic phrases (e.g. 'this place', 'a cafe') unless a real name appears.
- Use the location hint to disambiguate.
- Return max 12 candidates.
`

// RepairPromptPrefix is the instruction sent when the model's first
// answer could not be parsed as JSON.
const RepairPromptPrefix = "Fix the following to valid JSON only. Do not add commentary.\nReturn ONLY the JSON.\nRaw output:\n"

type promptInput struct {
	LocationHint string          `json:"location_hint,omitempty"`
	Transcript   []media.Segment `json:"transcript"`
}

// BuildPrompt assembles the extraction prompt for the supplied
// segments and optional location hint. The serialized transcript
// payload is capped at maxInputChars and the final prompt at
// maxPromptChars; both cuts are plain suffix truncation.
func BuildPrompt(segments []media.Segment, locationHint string, maxInputChars, maxPromptChars int) string {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	if maxPromptChars <= 0 {
		maxPromptChars = DefaultMaxPromptChars
	}

	hintLine := "Location hint: none"
	if hint := strings.TrimSpace(locationHint); hint != "" {
		hintLine = "Location hint: " + hint
	}

	payload := string(media.SafeMarshal(promptInput{
		LocationHint: strings.TrimSpace(locationHint),
		Transcript:   segments,
	}))
	if len(payload) > maxInputChars {
		payload = payload[:maxInputChars]
	}

	var b strings.Builder
	b.WriteString("You are extracting named places (venues/landmarks/areas) from transcript segments. ")
	b.WriteString("Return JSON only. Do not include commentary.\n")
	b.WriteString(promptSchema)
	b.WriteString(hintLine)
	b.WriteString("\nInput JSON:\n")
	b.WriteString(payload)

	prompt := b.String()
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars]
	}
	return prompt
}

// BuildRepairPrompt assembles the second-chance prompt asking the model
// to return a valid JSON equivalent of its failed output.
func BuildRepairPrompt(rawOutput string) string {
	return RepairPromptPrefix + rawOutput + "\n"
}

// marshalParsed renders a parsed payload back to JSON for audit
// storage. Values that cannot serialize are stringified.
func marshalParsed(parsed any) string {
	if parsed == nil {
		return ""
	}
	data, err := json.Marshal(parsed)
	if err != nil {
		data = media.SafeMarshal(media.Sanitize(parsed))
	}
	return string(data)
}
