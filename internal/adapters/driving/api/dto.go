package api

import "github.com/meridian-labs/casefind/internal/core/domain"

// queryRequest is the POST /query request body.
type queryRequest struct {
	Query  string `json:"query"`
	CaseID string `json:"case_id,omitempty"`
}

// sourceDTO is one citation in a query response.
type sourceDTO struct {
	DocID          string  `json:"doc_id"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// queryResponse is the POST /query response body.
type queryResponse struct {
	Answer   string         `json:"answer"`
	Sources  []sourceDTO    `json:"sources"`
	Metadata map[string]any `json:"metadata"`
}

// caseDTO is one case in the GET /cases response.
type caseDTO struct {
	CaseID        string `json:"case_id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	DocumentCount int    `json:"document_count"`
}

// casesResponse is the GET /cases response body.
type casesResponse struct {
	Cases []caseDTO `json:"cases"`
}

// healthResponse is the GET /health response body.
type healthResponse struct {
	Status          string `json:"status"`
	VectorDB        string `json:"vector_db"`
	DocumentsLoaded int    `json:"documents_loaded"`
}

// ingestRequest is the POST /ingest request body.
type ingestRequest struct {
	CaseID        string            `json:"case_id"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	ForceReingest bool              `json:"force_reingest"`
	ClearFirst    bool              `json:"clear_first"`
}

// ingestResponse is the POST /ingest response body.
type ingestResponse struct {
	Status           string `json:"status"`
	DocumentsAdded   int    `json:"documents_added"`
	DocumentsSkipped int    `json:"documents_skipped"`
}

// caseSearchRequest is the POST /search-cases request body.
type caseSearchRequest struct {
	Description string `json:"description"`
}

// caseSearchResult is one entry of the POST /search-cases response.
type caseSearchResult struct {
	CaseID         string   `json:"case_id"`
	Title          string   `json:"title"`
	RelevanceScore float64  `json:"relevance_score"`
	Summary        string   `json:"summary"`
	KeyFindings    []string `json:"key_findings"`
	DocumentCount  int      `json:"document_count"`
}

// errorResponse is the error body for all endpoints.
type errorResponse struct {
	Detail string `json:"detail"`
}

func toQueryResponse(result *domain.QueryResult) queryResponse {
	sources := make([]sourceDTO, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = sourceDTO{
			DocID:          src.DocID,
			Snippet:        src.Snippet,
			RelevanceScore: src.Relevance,
		}
	}
	return queryResponse{
		Answer:  result.Answer,
		Sources: sources,
		Metadata: map[string]any{
			"total_chunks_retrieved": result.ChunksRetrieved,
			"processing_time_ms":     result.ProcessingTimeMS,
		},
	}
}

func toCaseSearchResults(matches []domain.CaseMatch) []caseSearchResult {
	results := make([]caseSearchResult, len(matches))
	for i, match := range matches {
		findings := match.KeyFindings
		if findings == nil {
			findings = []string{}
		}
		results[i] = caseSearchResult{
			CaseID:         match.CaseID,
			Title:          match.Title,
			RelevanceScore: match.Score,
			Summary:        match.Summary,
			KeyFindings:    findings,
			DocumentCount:  match.DocumentCount,
		}
	}
	return results
}

func toCasesResponse(cases []domain.Case) casesResponse {
	dtos := make([]caseDTO, len(cases))
	for i, c := range cases {
		dtos[i] = caseDTO{
			CaseID:        c.ID,
			Title:         c.Title,
			Date:          c.Date,
			DocumentCount: c.DocumentCount,
		}
	}
	return casesResponse{Cases: dtos}
}
