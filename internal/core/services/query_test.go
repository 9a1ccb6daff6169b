package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

func TestQueryEmptyQueryRejected(t *testing.T) {
	te := newTestEngine(t)

	_, err := te.engine.Query(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	_, err = te.engine.Query(context.Background(), "   \t\n", "")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	// Validation happens before any provider call.
	assert.Equal(t, 0, te.embedder.embedCalls)
}

func TestQueryEmptyStoreSkipsCompletion(t *testing.T) {
	te := newTestEngine(t)

	result, err := te.engine.Query(context.Background(), "what happened?", "")
	require.NoError(t, err)

	assert.Equal(t, NoResultsAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, result.ChunksRetrieved)
	assert.Equal(t, 0, te.completer.calls)
}

func TestQueryAnswersWithCitations(t *testing.T) {
	te := newTestEngine(t)
	te.embedder.vectors = map[string][]float32{"what happened?": {0}}
	te.completer.answer = "The evaluation concluded in March."

	te.insertFragment(t, "case_001", "report.txt", "The report states the facts.", []float32{0.5})
	te.insertFragment(t, "case_001", "notes.txt", "Closest matching notes.", []float32{0.1})

	result, err := te.engine.Query(context.Background(), "what happened?", "")
	require.NoError(t, err)

	assert.Equal(t, "The evaluation concluded in March.", result.Answer)
	assert.Equal(t, 2, result.ChunksRetrieved)
	require.Len(t, result.Sources, 2)

	// Best match first, with similarity 1/(1+distance).
	assert.Equal(t, "notes.txt", result.Sources[0].DocID)
	assert.InDelta(t, 1.0/1.1, result.Sources[0].Relevance, 1e-9)
	assert.Equal(t, "report.txt", result.Sources[1].DocID)
	assert.InDelta(t, 1.0/1.5, result.Sources[1].Relevance, 1e-9)

	// Contexts reach the completer in retrieval order.
	assert.Equal(t, []string{"Closest matching notes.", "The report states the facts."}, te.completer.lastContexts)
	assert.Equal(t, "what happened?", te.completer.lastQuery)
}

func TestQueryCaseFilterRestrictsSources(t *testing.T) {
	te := newTestEngine(t)
	te.insertFragment(t, "case_001", "a.txt", "first case text", []float32{0.1})
	te.insertFragment(t, "case_002", "b.txt", "second case text", []float32{0.2})

	result, err := te.engine.Query(context.Background(), "query", "case_002")
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, "b.txt", result.Sources[0].DocID)
}

func TestQueryCaseFilterNoMatches(t *testing.T) {
	te := newTestEngine(t)
	te.insertFragment(t, "case_001", "a.txt", "text", []float32{0.1})

	result, err := te.engine.Query(context.Background(), "query", "case_999")
	require.NoError(t, err)

	assert.Equal(t, NoResultsAnswer, result.Answer)
	assert.Equal(t, 0, te.completer.calls)
}

func TestQueryTopKBoundsRetrieval(t *testing.T) {
	te := newTestEngine(t, WithTopK(2))
	for i := 0; i < 4; i++ {
		te.insertFragment(t, "case_001", "a.txt", "text", []float32{float32(i)})
	}

	result, err := te.engine.Query(context.Background(), "query", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunksRetrieved)
}

func TestQueryLongFragmentSnippetTruncated(t *testing.T) {
	te := newTestEngine(t)
	long := strings.Repeat("x", domain.SnippetLength+50)
	te.insertFragment(t, "case_001", "a.txt", long, []float32{0.1})

	result, err := te.engine.Query(context.Background(), "query", "")
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	snippet := result.Sources[0].Snippet
	assert.True(t, strings.HasSuffix(snippet, domain.SnippetMarker))
	assert.Len(t, []rune(snippet), domain.SnippetLength+len(domain.SnippetMarker))

	// The full fragment still reaches the completer.
	assert.Equal(t, []string{long}, te.completer.lastContexts)
}

func TestQueryEmbedderFailurePropagates(t *testing.T) {
	te := newTestEngine(t)
	te.embedder.embedErr = domain.ErrProvider
	te.insertFragment(t, "case_001", "a.txt", "text", []float32{0.1})

	_, err := te.engine.Query(context.Background(), "query", "")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestQueryCompleterFailurePropagates(t *testing.T) {
	te := newTestEngine(t)
	te.completer.completeErr = domain.ErrProvider
	te.insertFragment(t, "case_001", "a.txt", "text", []float32{0.1})

	_, err := te.engine.Query(context.Background(), "query", "")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestQueryReportsProcessingTime(t *testing.T) {
	te := newTestEngine(t)
	te.insertFragment(t, "case_001", "a.txt", "text", []float32{0.1})

	result, err := te.engine.Query(context.Background(), "query", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ProcessingTimeMS, int64(0))
}
