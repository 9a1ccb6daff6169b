package driven

import "context"

// CompletionService generates answer text from a query and ordered
// context fragments. The answer-generation step itself is opaque to the
// core: it receives the retrieved texts and returns prose.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT family)
type CompletionService interface {
	// Complete generates an answer for the query grounded in the
	// given context texts, ordered most relevant first.
	Complete(ctx context.Context, query string, contexts []string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
