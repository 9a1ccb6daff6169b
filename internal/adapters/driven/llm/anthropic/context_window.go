package anthropic

import "strings"

// Known context windows by model family prefix, in tokens. Longest
// prefix wins. Unknown models get a conservative default so context
// packing never overruns a smaller window.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"claude-sonnet-4", 200000},
	{"claude-opus-4", 200000},
	{"claude-haiku-4", 200000},
	{"claude-3-7", 200000},
	{"claude-3-5", 200000},
	{"claude-3", 200000},
}

const defaultContextWindow = 100000

// charsPerToken is the rough character-to-token ratio used to budget
// context packing without a tokenizer.
const charsPerToken = 4

// answerReserveTokens is held back from the window for the prompt
// scaffolding, the query, and the generated answer.
const answerReserveTokens = 4096

// contextWindowTokens returns the context window for a model name.
func contextWindowTokens(model string) int {
	for _, entry := range contextWindows {
		if strings.HasPrefix(model, entry.prefix) {
			return entry.tokens
		}
	}
	return defaultContextWindow
}

// contextCharBudget returns the character budget available for
// retrieved fragments when prompting the given model.
func contextCharBudget(model string) int {
	usable := contextWindowTokens(model) - answerReserveTokens
	return usable * charsPerToken
}
