package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const unserializablePreviewLimit = 500

var errUnsupportedFloat = errors.New("unsupported float value")

// SafeMarshal serializes value to JSON, degrading rather than failing:
// any element that cannot be serialized is replaced by a string
// representation so a candidate batch write never aborts on one bad
// value.
func SafeMarshal(value any) []byte {
	if data, err := json.Marshal(value); err == nil {
		return data
	}
	data, err := json.Marshal(Sanitize(value))
	if err != nil {
		quoted, _ := json.Marshal(stringifyUnserializable(value, err))
		return quoted
	}
	return data
}

// Sanitize walks a decoded JSON-ish value and replaces anything that
// cannot round-trip through encoding/json with its string form. Maps
// and slices are rebuilt; primitives pass through unchanged.
func Sanitize(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64, json.Number:
		return v
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return stringifyUnserializable(v, errUnsupportedFloat)
		}
		return v
	case float32:
		return Sanitize(float64(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = Sanitize(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = Sanitize(child)
		}
		return out
	default:
		if _, err := json.Marshal(v); err != nil {
			return stringifyUnserializable(v, err)
		}
		return v
	}
}

func stringifyUnserializable(value any, err error) string {
	preview := fmt.Sprintf("%v", value)
	if len(preview) > unserializablePreviewLimit {
		preview = preview[:unserializablePreviewLimit] + "..."
	}
	return fmt.Sprintf("<<unserializable: %T: %v>> %s", value, err, preview)
}
