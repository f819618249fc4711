package chat

import "github.com/orbitchat/platform/internal/knowledge"

// genericSuggestions are always offered first.
var genericSuggestions = []string{
	"What services do you offer?",
	"How can I get in touch?",
}

const (
	maxSuggestions   = 4
	maxKBSuggestions = 2
)

// BuildSuggestions returns the generic prompts plus up to two knowledge-base
// questions, capped at four total.
func BuildSuggestions(kb []knowledge.QA) []string {
	out := append([]string(nil), genericSuggestions...)
	for _, qa := range kb {
		if len(out) >= maxSuggestions || len(out)-len(genericSuggestions) >= maxKBSuggestions {
			break
		}
		out = append(out, qa.Question)
	}
	return out
}
