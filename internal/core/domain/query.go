package domain

// SnippetLength is the citation snippet cap in characters.
const SnippetLength = 200

// SnippetMarker is appended to a snippet when the fragment text was cut.
const SnippetMarker = "..."

// Citation points a generated answer back at a retrieved fragment.
type Citation struct {
	// DocID identifies the source document (file name).
	DocID string

	// Snippet is the fragment text truncated to SnippetLength, with
	// SnippetMarker appended when truncation occurred.
	Snippet string

	// Relevance is the store-native similarity for this hit.
	Relevance float64
}

// QueryResult is the outcome of an answered document query.
type QueryResult struct {
	// Answer is the generated answer text.
	Answer string

	// Sources cites the fragments used as context, best match first.
	Sources []Citation

	// ChunksRetrieved is the number of fragments retrieved.
	ChunksRetrieved int

	// ProcessingTimeMS is the end-to-end latency in milliseconds.
	ProcessingTimeMS int64
}

// IngestStats reports the outcome of one ingestion batch.
type IngestStats struct {
	// Ingested counts fragments inserted into the vector store.
	Ingested int

	// Skipped counts fragments skipped because their source file was
	// already recorded in the manifest.
	Skipped int
}

// Snippet truncates text to SnippetLength characters and appends the
// truncation marker when anything was cut.
func Snippet(text string) string {
	return Truncate(text, SnippetLength, SnippetMarker)
}

// Truncate shortens text to at most limit characters, appending marker
// when truncation occurred. Limits are counted in runes so multi-byte
// text is never cut mid-character.
func Truncate(text string, limit int, marker string) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + marker
}
