package recovery

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// kvPairRe matches "key": value where value is a quoted string, a keyword, a
// number, or a shallow bracketed fragment. Keys may have lost their quotes.
var kvPairRe = regexp.MustCompile(`"?([A-Za-z_][A-Za-z0-9_ ]*)"?\s*:\s*("(?:[^"\\]|\\.)*"|null|true|false|-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?|\{[^{}]*\}|\[[^\[\]]*\])`)

// reconstructPartial is the strategy of last resort: when structural parsing
// is hopeless, harvest individual key/value pairs out of the text and
// accumulate them into one flat object. The last occurrence of a duplicate
// key wins. Returns false when not a single pair was found.
func reconstructPartial(text string) (map[string]any, bool) {
	matches := kvPairRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, false
	}

	out := make(map[string]any, len(matches))
	for _, m := range matches {
		key := strings.TrimSpace(m[1])
		if key == "" {
			continue
		}
		out[key] = coerceValue(m[2])
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// coerceValue maps a harvested fragment to its natural Go value.
func coerceValue(raw string) any {
	switch {
	case raw == "null":
		return nil
	case raw == "true":
		return true
	case raw == "false":
		return false
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
		return strings.Trim(raw, `"`)
	case strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "["):
		var nested any
		if err := json.Unmarshal([]byte(raw), &nested); err == nil {
			return nested
		}
		// The fragment itself is broken; keep its raw text rather than
		// dropping the key.
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
