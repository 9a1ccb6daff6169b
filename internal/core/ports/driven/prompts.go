package driven

// Prompt names used by the completion adapter.
const (
	// PromptAnswer is the answer-synthesis template. It receives the
	// joined context fragments and the user query, in that order.
	PromptAnswer = "answer"
)

// PromptStore loads prompt templates by name.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
