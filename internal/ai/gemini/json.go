package gemini

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// firstJSONObject extracts the first well-formed JSON object from raw model
// output, tolerating surrounding prose and markdown fences. Returns an empty
// string when no balanced object exists.
func firstJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	for start != -1 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(raw); i++ {
			c := raw[i]
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						candidate := raw[start : i+1]
						if json.Valid([]byte(candidate)) {
							return candidate
						}
						i = len(raw)
					}
				}
			}
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next == -1 {
			return ""
		}
		start = start + 1 + next
	}
	return ""
}

func coerceBool(v any, fallback bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		switch lower {
		case "true", "yes", "да":
			return true
		case "false", "no", "нет":
			return false
		}
		return fallback
	case float64:
		return val != 0
	default:
		return fallback
	}
}

func coerceInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return int(math.Round(val)), true
	case int:
		return val, true
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.Trim(string(bytes), `"`)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if s := coerceString(v); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// clamp bounds v to [min, max]. Out-of-range model output is clamped, not
// rejected.
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
