package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

// mockEngine implements driving.Engine for handler tests.
type mockEngine struct {
	queryResult *domain.QueryResult
	queryErr    error
	matches     []domain.CaseMatch
	rankErr     error
	stats       *domain.IngestStats
	ingestErr   error
	count       int
	countErr    error
	cases       []domain.Case
	listErr     error
	clearErr    error

	lastIngest  driving.IngestRequest
	clearCalled bool
}

func (m *mockEngine) Initialize(_ context.Context) error { return nil }

func (m *mockEngine) Query(_ context.Context, query, caseID string) (*domain.QueryResult, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.queryResult, nil
}

func (m *mockEngine) RankCases(_ context.Context, _ string, _ int) ([]domain.CaseMatch, error) {
	if m.rankErr != nil {
		return nil, m.rankErr
	}
	return m.matches, nil
}

func (m *mockEngine) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestStats, error) {
	m.lastIngest = req
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	return m.stats, nil
}

func (m *mockEngine) DocumentCount(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockEngine) ListCases(_ context.Context) ([]domain.Case, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.cases, nil
}

func (m *mockEngine) ClearAll(_ context.Context) error {
	m.clearCalled = true
	return m.clearErr
}

func (m *mockEngine) ClearCase(_ context.Context, _ string) (int, error) { return 0, nil }

func (m *mockEngine) Shutdown() error { return nil }

func newTestServer(engine *mockEngine) http.Handler {
	return NewServer(engine, nil, ":0", "/data/cases", nil).Router()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	engine := &mockEngine{count: 42}
	rec := doJSON(t, newTestServer(engine), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "connected", resp["vector_db"])
	assert.Equal(t, float64(42), resp["documents_loaded"])
}

func TestHealthUninitializedEngine(t *testing.T) {
	engine := &mockEngine{countErr: domain.ErrNotInitialized}
	rec := doJSON(t, newTestServer(engine), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryEndpoint(t *testing.T) {
	engine := &mockEngine{queryResult: &domain.QueryResult{
		Answer: "The answer.",
		Sources: []domain.Citation{
			{DocID: "report.txt", Snippet: "snippet text", Relevance: 0.91},
		},
		ChunksRetrieved:  1,
		ProcessingTimeMS: 37,
	}}

	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/query",
		map[string]string{"query": "what happened?", "case_id": "case_001"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The answer.", resp["answer"])

	sources := resp["sources"].([]any)
	require.Len(t, sources, 1)
	source := sources[0].(map[string]any)
	assert.Equal(t, "report.txt", source["doc_id"])
	assert.Equal(t, "snippet text", source["snippet"])
	assert.Equal(t, 0.91, source["relevance_score"])

	metadata := resp["metadata"].(map[string]any)
	assert.Equal(t, float64(1), metadata["total_chunks_retrieved"])
	assert.Equal(t, float64(37), metadata["processing_time_ms"])
}

func TestQueryEmptyQueryReturns400(t *testing.T) {
	engine := &mockEngine{queryErr: domain.ErrEmptyQuery}
	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/query",
		map[string]string{"query": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Detail)
}

func TestQueryMalformedBodyReturns400(t *testing.T) {
	engine := &mockEngine{}
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	newTestServer(engine).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryProviderFailureReturns500(t *testing.T) {
	engine := &mockEngine{queryErr: domain.ErrProvider}
	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/query",
		map[string]string{"query": "q"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListCasesEndpoint(t *testing.T) {
	engine := &mockEngine{cases: []domain.Case{
		{ID: "case_001", Title: "First", Date: "2024-01-01", DocumentCount: 2},
	}}

	rec := doJSON(t, newTestServer(engine), http.MethodGet, "/cases", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp casesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cases, 1)
	assert.Equal(t, "case_001", resp.Cases[0].CaseID)
	assert.Equal(t, "First", resp.Cases[0].Title)
}

func TestSearchCasesEndpoint(t *testing.T) {
	engine := &mockEngine{matches: []domain.CaseMatch{
		{CaseID: "case_001", Title: "Best", Score: 100.0, Summary: "s",
			KeyFindings: []string{"a"}, DocumentCount: 3},
		{CaseID: "case_002", Title: "Next", Score: 90.9, Summary: "t",
			DocumentCount: 1},
	}}

	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/search-cases",
		map[string]string{"description": "arson"})

	require.Equal(t, http.StatusOK, rec.Code)

	// Response is a bare array, scores on the 0-100 scale.
	var resp []caseSearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 100.0, resp[0].RelevanceScore)
	assert.Equal(t, 90.9, resp[1].RelevanceScore)
	assert.NotNil(t, resp[1].KeyFindings, "key_findings is [] not null")
}

func TestSearchCasesEmptyDescriptionReturns400(t *testing.T) {
	engine := &mockEngine{rankErr: domain.ErrEmptyQuery}
	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/search-cases",
		map[string]string{"description": " "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestEndpoint(t *testing.T) {
	engine := &mockEngine{stats: &domain.IngestStats{Ingested: 12, Skipped: 3}}

	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/ingest", map[string]any{
		"case_id":        "case_001",
		"metadata":       map[string]string{"court": "District"},
		"force_reingest": true,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 12, resp.DocumentsAdded)
	assert.Equal(t, 3, resp.DocumentsSkipped)

	assert.Equal(t, "case_001", engine.lastIngest.CaseID)
	assert.Equal(t, "/data/cases/case_001", engine.lastIngest.CaseDir)
	assert.True(t, engine.lastIngest.Force)
	assert.Equal(t, "District", engine.lastIngest.Metadata["court"])
	assert.False(t, engine.clearCalled)
}

func TestIngestClearFirst(t *testing.T) {
	engine := &mockEngine{stats: &domain.IngestStats{}}

	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/ingest", map[string]any{
		"case_id":     "case_001",
		"clear_first": true,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, engine.clearCalled)
}

func TestIngestMissingCaseIDReturns400(t *testing.T) {
	engine := &mockEngine{}
	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/ingest", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestMissingDirectoryReturns404(t *testing.T) {
	engine := &mockEngine{ingestErr: domain.ErrNotFound}
	rec := doJSON(t, newTestServer(engine), http.MethodPost, "/ingest", map[string]any{
		"case_id": "case_404",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	engine := &mockEngine{}
	handler := NewServer(engine, nil, ":0", "/data/cases", []string{"http://localhost:3000"}).Router()

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	engine := &mockEngine{}
	handler := NewServer(engine, nil, ":0", "/data/cases", []string{"http://localhost:3000"}).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
