package recovery

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// TextProvider is any response object that can yield its text payload through
// an accessor method.
type TextProvider interface {
	Text() string
}

// Envelope mirrors the provider-style response shape
// {candidates:[{content:{parts:[{text}]}}]} for callers that decoded the
// transport layer themselves.
type Envelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// textPayload resolves the closed set of raw input variants to a plain text
// payload. Resolution happens once here; downstream code never re-checks the
// input shape.
func textPayload(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case TextProvider:
		return v.Text(), nil
	case *genai.GenerateContentResponse:
		if text := genaiText(v); text != "" {
			return text, nil
		}
		return "", &InputShapeError{Reason: "gemini response has no text parts"}
	case Envelope:
		return envelopeText(v)
	case *Envelope:
		if v == nil {
			return "", &InputShapeError{Reason: "nil envelope"}
		}
		return envelopeText(*v)
	case map[string]any:
		if text, ok := mapText(v); ok {
			return text, nil
		}
		return "", &InputShapeError{Reason: "map has no text field or candidate parts"}
	case nil:
		return "", &InputShapeError{Reason: "nil input"}
	}
	if text, ok := reflectedTextField(input); ok {
		return text, nil
	}
	return "", &InputShapeError{Reason: "unsupported input type"}
}

// genaiText joins every text part of the first candidate with content.
func genaiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

func envelopeText(env Envelope) (string, error) {
	for _, cand := range env.Candidates {
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", &InputShapeError{Reason: "envelope has no text parts"}
}

// mapText digs a text payload out of a generically decoded response map:
// either a top-level "text" field or the candidates/content/parts nesting.
func mapText(m map[string]any) (string, bool) {
	if text, ok := m["text"].(string); ok && text != "" {
		return text, true
	}
	candidates, ok := m["candidates"].([]any)
	if !ok {
		return "", false
	}
	for _, c := range candidates {
		cand, ok := c.(map[string]any)
		if !ok {
			continue
		}
		content, ok := cand["content"].(map[string]any)
		if !ok {
			continue
		}
		parts, ok := content["parts"].([]any)
		if !ok {
			continue
		}
		var b strings.Builder
		for _, p := range parts {
			if part, ok := p.(map[string]any); ok {
				if text, ok := part["text"].(string); ok {
					b.WriteString(text)
				}
			}
		}
		if b.Len() > 0 {
			return b.String(), true
		}
	}
	return "", false
}

// reflectedTextField reads a string Text field off an arbitrary struct, the
// last resort for response wrappers this package does not know about.
func reflectedTextField(input any) (string, bool) {
	v := reflect.ValueOf(input)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", false
	}
	field := v.FieldByName("Text")
	if !field.IsValid() || field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), field.String() != ""
}

// stripControlChars replaces every control character with a single space.
// This runs unconditionally on every payload, well-formed or not; it is the
// single highest-value normalization against model output.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			return ' '
		}
		return r
	}, s)
}

// extractCandidate isolates the substring most likely to contain the JSON
// payload: a fenced code block first, then the first greedy {...} span. When
// neither matches, the whole text is the candidate for a last-resort parse.
func extractCandidate(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); strings.Contains(inner, "{") {
			return inner
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
