package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a model response that was prompted to return only a JSON
// object. Models still wrap output in markdown fences or prose on occasion,
// so the raw text is stripped down to its outermost object first.
func DecodeJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("llm: response is not valid JSON: %w", err)
	}
	return nil
}
