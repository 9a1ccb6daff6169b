package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

// handleHealth reports service status and the loaded fragment count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.engine.DocumentCount(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		VectorDB:        "connected",
		DocumentsLoaded: count,
	})
}

// handleQuery answers a natural-language query over stored documents.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.Query(r.Context(), req.Query, req.CaseID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toQueryResponse(result))
}

// handleListCases enumerates all known cases.
func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.engine.ListCases(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toCasesResponse(cases))
}

// handleSearchCases ranks cases against a free-text description.
func (s *Server) handleSearchCases(w http.ResponseWriter, r *http.Request) {
	var req caseSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches, err := s.engine.RankCases(r.Context(), req.Description, 0)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, toCaseSearchResults(matches))
}

// handleIngest loads a case directory into the vector store.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CaseID == "" {
		s.respondDetail(w, http.StatusBadRequest, "case_id is required")
		return
	}

	if req.ClearFirst {
		if err := s.engine.ClearAll(r.Context()); err != nil {
			s.respondError(w, err)
			return
		}
	}

	stats, err := s.engine.Ingest(r.Context(), driving.IngestRequest{
		CaseDir:  filepath.Join(s.dataDir, req.CaseID),
		CaseID:   req.CaseID,
		Metadata: req.Metadata,
		Force:    req.ForceReingest,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, ingestResponse{
		Status:           "success",
		DocumentsAdded:   stats.Ingested,
		DocumentsSkipped: stats.Skipped,
	})
}

// respondJSON writes a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// respondDetail writes an error body with an explicit status.
func (s *Server) respondDetail(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, errorResponse{Detail: detail})
}

// respondError maps a domain error to an HTTP status. Caller mistakes
// map to 4xx, an uninitialized engine to 503, everything else to 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.respondDetail(w, status, fmt.Sprintf("%v", err))
}
