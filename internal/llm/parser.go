package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
)

// unparseableReason is the reason attached to the fallback verdict.
const unparseableReason = "unparseable response"

// Verdict is the category and reason an external model returned.
type Verdict struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// fallbackVerdict is returned whenever no usable JSON object can be found.
func fallbackVerdict() Verdict {
	return Verdict{Category: string(model.CategoryUncategorized), Reason: unparseableReason}
}

// ParseVerdict extracts a verdict from free-form model output. The model is
// asked for bare JSON but frequently wraps it in prose or code fences, so the
// text between the first '{' and the last '}' is parsed. If that fails the
// first balanced object is tried. When nothing parses the Uncategorized
// fallback is returned together with ErrClassificationParse.
func ParseVerdict(raw string) (Verdict, error) {
	content := cleanMarkdownWrapper(raw)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		if v, ok := decodeVerdict(content[start : end+1]); ok {
			return v, nil
		}
	}

	if obj, ok := firstBalancedObject(content); ok {
		if v, ok := decodeVerdict(obj); ok {
			return v, nil
		}
	}

	return fallbackVerdict(), fmt.Errorf("%w: %q", common.ErrClassificationParse, truncate(raw, 80))
}

func decodeVerdict(s string) (Verdict, bool) {
	var v Verdict
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return Verdict{}, false
	}
	v.Category = strings.TrimSpace(v.Category)
	v.Reason = strings.TrimSpace(v.Reason)
	if v.Category == "" {
		return Verdict{}, false
	}
	return v, true
}

// firstBalancedObject returns the first {...} span whose braces balance,
// ignoring braces inside JSON strings.
func firstBalancedObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// cleanMarkdownWrapper strips a surrounding ```json fence if present.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.Index(content, "\n"); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
