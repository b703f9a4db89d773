package recovery

import (
	"regexp"
	"strings"
)

// The repair rules are pure, idempotent text rewrites. Each one is a no-op on
// already-correct text so the full set can be re-applied after the aggressive
// whitespace collapse without corrupting regions an earlier pass fixed.
var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	rangeValueRe    = regexp.MustCompile(`("(?i:sets|reps)"\s*:\s*)(\d+\s*-\s*\d+(?:[ \t][^,}\]"]*)?)`)
	bareRepsWordRe  = regexp.MustCompile(`("(?i:reps)"\s*:\s*)([A-Za-z][A-Za-z0-9 /\-]*)(\s*[,}\]])`)
	doubledCommaRe  = regexp.MustCompile(`,(\s*,)+`)
	missingColonRe  = regexp.MustCompile(`("(?:[^"\\]|\\.)*")[ \t]+(["{\[])`)
	emptyValueRe    = regexp.MustCompile(`:\s*([,}])`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// removeTrailingCommas drops a comma that sits directly before a closing
// brace or bracket.
func removeTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// quoteBareKeys quotes unquoted property names: {key: -> {"key":.
func quoteBareKeys(s string) string {
	return bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
}

// quoteNumericRanges turns range values on sets/reps fields into strings,
// including ranges with trailing qualifier text ("10-12 per leg"). Models
// emit these where a number belongs, which breaks the grammar.
func quoteNumericRanges(s string) string {
	return rangeValueRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := rangeValueRe.FindStringSubmatch(m)
		return parts[1] + `"` + strings.TrimSpace(parts[2]) + `"`
	})
}

// quoteBareRepsWords quotes AMRAP-style bare word values following a reps
// key. JSON keywords are left alone.
func quoteBareRepsWords(s string) string {
	return bareRepsWordRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := bareRepsWordRe.FindStringSubmatch(m)
		value := strings.TrimSpace(parts[2])
		switch value {
		case "true", "false", "null":
			return m
		}
		return parts[1] + `"` + value + `"` + parts[3]
	})
}

// cleanupPunctuation is the grab-bag rule: doubled commas collapse to one, a
// property name with no following colon gets one, an empty value becomes an
// explicit null, and stray commas before closers are dropped again.
func cleanupPunctuation(s string) string {
	s = doubledCommaRe.ReplaceAllString(s, ",")
	s = missingColonRe.ReplaceAllString(s, "$1: $2")
	s = emptyValueRe.ReplaceAllString(s, ": null$1")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// applyLightRepairs runs the structural-preserving rewrite rules in order.
func applyLightRepairs(s string) string {
	s = removeTrailingCommas(s)
	s = quoteBareKeys(s)
	s = quoteNumericRanges(s)
	s = quoteBareRepsWords(s)
	s = cleanupPunctuation(s)
	return s
}

// applyFullRepairs additionally fixes escape sequences and closes any open
// brackets, the last-resort rewrites reserved for the later phases.
func applyFullRepairs(s string) string {
	s = applyLightRepairs(s)
	s = fixEscapes(s)
	s = balanceBrackets(s)
	return s
}

// collapseWhitespace squeezes every whitespace run to a single space.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}

// fixEscapes doubles any backslash not followed by a JSON-legal escape
// character, treating it as a literal backslash instead of leaving it
// dangling.
func fixEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && strings.IndexByte(`"\/bfnrtu`, s[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// balanceBrackets appends the closers an unbalanced payload is missing. The
// scan tracks string state so braces inside string values do not count, and
// an unterminated string is closed before the brackets are.
func balanceBrackets(s string) string {
	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			stack = append(stack, c)
		case c == '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case c == ']':
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		}
	}
	if len(stack) == 0 && !inString {
		return s
	}
	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// balancedBraceSpan re-scans text for the first balanced {...} span using
// depth counting, ignoring whatever the first-pass extraction found. When the
// span never closes, everything from the first brace onward is returned.
func balancedBraceSpan(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// stripForeignChars removes every character that is not a JSON structural
// symbol, alphanumeric, quote, colon, comma, hyphen, period, or whitespace.
func stripForeignChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '{' || r == '}' || r == '[' || r == ']',
			r == '"' || r == ':' || r == ',' || r == '-' || r == '.',
			r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		}
	}
	return b.String()
}
