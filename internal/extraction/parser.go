package extraction

import (
	"encoding/json"
	"strings"
)

// StripCodeFence removes a single leading/trailing fenced code block
// (triple backticks with an optional json language tag) from a model
// response.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// ExtractFirstJSON pulls the first JSON object or array substring out
// of a blob of free-form text. It tolerates the usual model garbage
// ("Here's the JSON: {...}") by scanning from the earliest bracket,
// decoding a prefix value there, and re-validating the extracted
// substring standalone.
func ExtractFirstJSON(text string) (string, bool) {
	t := StripCodeFence(text)

	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		if json.Valid([]byte(t)) {
			return t, true
		}
	}

	starts := make([]int, 0, 2)
	if idx := strings.Index(t, "{"); idx >= 0 {
		starts = append(starts, idx)
	}
	if idx := strings.Index(t, "["); idx >= 0 {
		starts = append(starts, idx)
	}
	if len(starts) == 2 && starts[0] > starts[1] {
		starts[0], starts[1] = starts[1], starts[0]
	}

	for _, start := range starts {
		snippet := t[start:]
		decoder := json.NewDecoder(strings.NewReader(snippet))
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			continue
		}
		candidate := strings.TrimSpace(snippet[:decoder.InputOffset()])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// ParseModelResponse attempts the local stages of JSON recovery: direct
// parse of the fence-stripped text, then substring extraction. The
// remote repair stage needs a model client and lives in the Extractor.
func ParseModelResponse(raw string) (any, bool) {
	stripped := StripCodeFence(raw)
	var parsed any
	if err := json.Unmarshal([]byte(stripped), &parsed); err == nil {
		return parsed, true
	}
	extracted, ok := ExtractFirstJSON(raw)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(extracted), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// NormalizeCandidatePayload shapes a parsed model value into candidate
// maps: an object with a candidates array yields that array's
// map-valued elements, a bare array yields its map-valued elements,
// anything else yields an empty list. It never fails; unusable input
// degrades to no candidates.
func NormalizeCandidatePayload(parsed any) []map[string]any {
	switch value := parsed.(type) {
	case map[string]any:
		list, ok := value["candidates"].([]any)
		if !ok {
			return nil
		}
		return mapElements(list)
	case []any:
		return mapElements(value)
	default:
		return nil
	}
}

func mapElements(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, element := range list {
		if entry, ok := element.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}
