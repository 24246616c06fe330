package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// codeFencePrefixes are stripped from the front of a response before brace
// scanning, the way a markdown renderer would recognize them. Order
// matters: the more specific "```json" must be checked before the bare
// "```".
var codeFencePrefixes = []string{"```json", "```JSON", "```"}

// ExtractJSON locates the outermost balanced `{...}` substring in text,
// strips common wrappers (code fences, leading chain-of-thought commentary),
// and decodes it into a generic object. This is the dynamic JSON extraction
// step of the Agent Envelope (§4.4.3): treated as a small binary-format
// parser, not a regex hack, because LLM responses nest braces (JSON values,
// stray commentary braces) that a single non-greedy regex would mis-match.
func ExtractJSON(text string) (map[string]any, error) {
	body := stripFences(text)

	start := strings.IndexByte(body, '{')
	if start == -1 {
		return nil, fmt.Errorf("%w: no '{' found in response", ErrResponseNotJSON)
	}

	end, err := findMatchingBrace(body, start)
	if err != nil {
		return nil, err
	}

	candidate := body[start : end+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseNotJSON, err)
	}
	return obj, nil
}

// stripFences drops a leading code-fence marker and any trailing fence, so
// that "```json\n{...}\n```" and "Here is the result:\n{...}" both reduce
// to text starting at or before the first '{'.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, fence := range codeFencePrefixes {
		if strings.HasPrefix(trimmed, fence) {
			trimmed = strings.TrimPrefix(trimmed, fence)
			break
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return trimmed
}

// findMatchingBrace returns the index of the brace matching the '{' at
// start, honoring string literals and escape sequences so braces inside
// JSON string values never confuse the scan.
func findMatchingBrace(body string, start int) (int, error) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(body); i++ {
		c := body[i]

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
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unbalanced braces", ErrResponseNotJSON)
}
