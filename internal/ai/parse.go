// parse.go - Extracting and repairing the JSON object inside model output

package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// extractJSONObject returns the first balanced {...} region in s.
// The model is asked for pure JSON but often wraps it in prose or markdown
// fences, so we scan for the object rather than trusting the whole response.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response (depth %d at end)", depth)
}

var jsonStringRe = regexp.MustCompile(`"([^"]*(?:\\.[^"]*)*)"`)

// fixJSONEscaping fixes common JSON escaping issues in Gemini responses.
// The model sometimes emits literal newlines or tabs inside string values,
// which Go's JSON parser rejects.
func fixJSONEscaping(jsonStr string) string {
	return jsonStringRe.ReplaceAllStringFunc(jsonStr, func(match string) string {
		if len(match) < 2 {
			return match
		}

		content := match[1 : len(match)-1]

		// Backslash-space is an invalid escape the model produces on
		// wrapped text; fix it before the character replacements below.
		content = strings.ReplaceAll(content, "\\ ", "\\\\ ")
		content = strings.ReplaceAll(content, "\n", "\\n")
		content = strings.ReplaceAll(content, "\r", "\\r")
		content = strings.ReplaceAll(content, "\t", "\\t")

		var builder strings.Builder
		for _, ch := range content {
			if ch < 0x20 {
				builder.WriteString(fmt.Sprintf("\\u%04x", ch))
			} else {
				builder.WriteRune(ch)
			}
		}

		return `"` + builder.String() + `"`
	})
}

// ParseAnalysisText turns raw model output into a VisionAnalysisResult.
// Returns an error only for the caller to log; callers substitute
// FallbackResult on failure so the error never crosses the analyzer boundary.
func ParseAnalysisText(text string) (*VisionAnalysisResult, error) {
	obj, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	obj = fixJSONEscaping(obj)

	var result VisionAnalysisResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return nil, fmt.Errorf("parsing analysis JSON: %w", err)
	}

	result.normalize()
	return &result, nil
}
