package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// NoResultsAnswer is returned when retrieval finds nothing to ground
// an answer in. No completion call is made in that case.
const NoResultsAnswer = "No relevant documents were found for this query."

// Query answers a natural-language query over stored fragments,
// optionally restricted to one case.
func (e *Engine) Query(ctx context.Context, query, caseID string) (*domain.QueryResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	start := time.Now()

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var filter *driven.MetadataFilter
	if caseID != "" {
		filter = &driven.MetadataFilter{Key: domain.MetaCaseID, Value: caseID}
	}

	hits, err := e.store.Query(ctx, embedding, e.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: query fragments: %w", domain.ErrStore, err)
	}

	if len(hits) == 0 {
		e.log.Info("query retrieved no fragments",
			zap.String("case_id", caseID))
		return &domain.QueryResult{
			Answer:           NoResultsAnswer,
			Sources:          []domain.Citation{},
			ChunksRetrieved:  0,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}, nil
	}

	contexts := make([]string, len(hits))
	sources := make([]domain.Citation, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Fragment.Content
		sources[i] = domain.Citation{
			DocID:     hit.Fragment.FileName,
			Snippet:   domain.Snippet(hit.Fragment.Content),
			Relevance: domain.Similarity(hit.Distance),
		}
	}

	answer, err := e.completer.Complete(ctx, query, contexts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	elapsed := time.Since(start)
	e.log.Info("query answered",
		zap.String("case_id", caseID),
		zap.Int("chunks", len(hits)),
		zap.Duration("elapsed", elapsed))

	return &domain.QueryResult{
		Answer:           answer,
		Sources:          sources,
		ChunksRetrieved:  len(hits),
		ProcessingTimeMS: elapsed.Milliseconds(),
	}, nil
}
