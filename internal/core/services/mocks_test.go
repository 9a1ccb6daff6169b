package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	manifestfile "github.com/meridian-labs/casefind/internal/adapters/driven/manifest/file"
	"github.com/meridian-labs/casefind/internal/adapters/driven/vectorstore/memory"
	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Texts map to configured vectors; unknown texts get the default.
type mockEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	embedErr   error
	pingErr    error
	embedCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.vector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.vectors[text]; ok {
			result[i] = vec
		} else {
			result[i] = m.vector()
		}
	}
	return result, nil
}

func (m *mockEmbedder) vector() []float32 {
	if m.defaultVec != nil {
		return m.defaultVec
	}
	return []float32{0}
}

func (m *mockEmbedder) Dimensions() int { return len(m.vector()) }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return m.pingErr }

func (m *mockEmbedder) Close() error { return nil }

// mockCompleter implements driven.CompletionService for testing.
type mockCompleter struct {
	answer       string
	completeErr  error
	pingErr      error
	calls        int
	lastQuery    string
	lastContexts []string
}

func (m *mockCompleter) Complete(_ context.Context, query string, contexts []string) (string, error) {
	m.calls++
	m.lastQuery = query
	m.lastContexts = contexts
	if m.completeErr != nil {
		return "", m.completeErr
	}
	if m.answer != "" {
		return m.answer, nil
	}
	return "mock answer", nil
}

func (m *mockCompleter) ModelName() string { return "mock-complete" }

func (m *mockCompleter) Ping(_ context.Context) error { return m.pingErr }

func (m *mockCompleter) Close() error { return nil }

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	docs    []domain.SourceDocument
	loadErr error
}

func (m *mockLoader) LoadCaseDirectory(_ context.Context, _ string) ([]domain.SourceDocument, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.docs, nil
}

// mockCaseMeta implements driven.CaseMetadataStore for testing.
type mockCaseMeta struct {
	lookups map[string]driven.CaseLookup
	cases   []domain.Case
	listErr error
}

func (m *mockCaseMeta) Lookup(_ context.Context, caseID string) driven.CaseLookup {
	if lookup, ok := m.lookups[caseID]; ok {
		return lookup
	}
	return driven.CaseLookup{
		FallbackReason: "no descriptor configured",
		Case:           domain.Case{ID: caseID, Title: caseID},
	}
}

func (m *mockCaseMeta) ListCases(_ context.Context) ([]domain.Case, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.cases, nil
}

// --- Test fixture ---

// testEngine bundles an initialized engine with its collaborators.
type testEngine struct {
	engine    *Engine
	store     *memory.Store
	embedder  *mockEmbedder
	completer *mockCompleter
	loader    *mockLoader
	caseMeta  *mockCaseMeta
	manifest  *manifestfile.Manifest
}

func newTestEngine(t *testing.T, opts ...Option) *testEngine {
	t.Helper()

	te := &testEngine{
		store:     memory.NewStore(),
		embedder:  &mockEmbedder{},
		completer: &mockCompleter{},
		loader:    &mockLoader{},
		caseMeta:  &mockCaseMeta{},
		manifest:  manifestfile.New(t.TempDir(), nil),
	}
	te.engine = NewEngine(te.store, te.embedder, te.completer, te.manifest, te.loader, te.caseMeta, opts...)
	require.NoError(t, te.engine.Initialize(context.Background()))
	return te
}

// insertFragment stores a fragment with case metadata directly.
func (te *testEngine) insertFragment(t *testing.T, caseID, fileName, content string, embedding []float32) {
	t.Helper()
	err := te.store.Insert(context.Background(), &domain.Fragment{
		CaseID:   caseID,
		FileName: fileName,
		Content:  content,
		Metadata: map[string]string{
			domain.MetaCaseID:   caseID,
			domain.MetaFileName: fileName,
		},
		Embedding: embedding,
	})
	require.NoError(t, err)
}
