package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// DefaultTopN is the ranked-case list length used when the caller
// requests zero or fewer.
const DefaultTopN = 5

// rankPoolLimit caps the candidate fragment pool for one ranking pass.
const rankPoolLimit = 50

// caseCandidate tracks the best-matching fragment seen for one case
// while deduplicating the candidate pool.
type caseCandidate struct {
	caseID     string
	similarity float64
	content    string
}

// RankCases ranks distinct cases by semantic similarity to a free-text
// description. Each case scores by its single best-matching fragment.
// An empty store yields an empty list.
func (e *Engine) RankCases(ctx context.Context, description string, topN int) ([]domain.CaseMatch, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	count, err := e.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count fragments: %w", domain.ErrStore, err)
	}
	if count == 0 {
		return []domain.CaseMatch{}, nil
	}

	pool := rankPoolLimit
	if count < pool {
		pool = count
	}

	embedding, err := e.embedder.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed description: %w", err)
	}

	hits, err := e.store.Query(ctx, embedding, pool, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query fragments: %w", domain.ErrStore, err)
	}

	// Deduplicate by case, keeping each case's best fragment. Hits
	// arrive best first, so the first fragment seen for a case wins
	// similarity ties.
	best := make(map[string]caseCandidate)
	order := make([]string, 0, len(hits))
	for _, hit := range hits {
		sim := domain.Similarity(hit.Distance)
		cand, seen := best[hit.Fragment.CaseID]
		if !seen {
			order = append(order, hit.Fragment.CaseID)
		}
		if !seen || sim > cand.similarity {
			best[hit.Fragment.CaseID] = caseCandidate{
				caseID:     hit.Fragment.CaseID,
				similarity: sim,
				content:    hit.Fragment.Content,
			}
		}
	}

	candidates := make([]caseCandidate, 0, len(order))
	for _, caseID := range order {
		candidates = append(candidates, best[caseID])
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := domain.PercentScore(candidates[i].similarity), domain.PercentScore(candidates[j].similarity)
		if si != sj {
			return si > sj
		}
		return candidates[i].caseID < candidates[j].caseID
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	matches := make([]domain.CaseMatch, 0, len(candidates))
	for _, cand := range candidates {
		matches = append(matches, e.buildMatch(ctx, cand))
	}

	e.log.Info("ranked cases",
		zap.Int("candidates", len(hits)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// buildMatch joins case metadata into a ranked match, falling back to
// fragment-derived values when the descriptor is unavailable.
func (e *Engine) buildMatch(ctx context.Context, cand caseCandidate) domain.CaseMatch {
	lookup := e.caseMeta.Lookup(ctx, cand.caseID)
	if !lookup.Found {
		e.log.Warn("case metadata unavailable, using fallbacks",
			zap.String("case_id", cand.caseID),
			zap.String("reason", lookup.FallbackReason))
	}

	summary := lookup.Case.Summary
	if summary == "" {
		summary = domain.Truncate(cand.content, domain.FallbackSummaryLength, "")
	}

	findings := lookup.Case.KeyFindings
	if len(findings) > domain.MaxKeyFindings {
		findings = findings[:domain.MaxKeyFindings]
	}

	return domain.CaseMatch{
		CaseID:        cand.caseID,
		Title:         lookup.Case.Title,
		Score:         domain.PercentScore(cand.similarity),
		Summary:       summary,
		KeyFindings:   findings,
		DocumentCount: lookup.Case.DocumentCount,
	}
}
