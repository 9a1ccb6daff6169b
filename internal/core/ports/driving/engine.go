package driving

import (
	"context"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// IngestRequest describes one ingestion batch for a single case.
type IngestRequest struct {
	// CaseDir is the case directory to load documents from.
	CaseDir string

	// CaseID is the owning case identifier.
	CaseID string

	// Metadata is attached to every ingested fragment in addition to
	// case_id and file_name.
	Metadata map[string]string

	// Force re-ingests files even when the manifest already records them.
	Force bool
}

// Engine is the long-lived retrieval engine. One instance is created at
// process start and shared by every request handler; all operations
// fail fast with domain.ErrNotInitialized until Initialize completes.
type Engine interface {
	// Initialize prepares the engine for use. Idempotent: a second
	// call is a no-op.
	Initialize(ctx context.Context) error

	// Query answers a natural-language query over stored fragments,
	// optionally restricted to one case.
	Query(ctx context.Context, query, caseID string) (*domain.QueryResult, error)

	// RankCases ranks distinct cases by semantic similarity to a
	// free-text description. An empty store yields an empty list.
	RankCases(ctx context.Context, description string, topN int) ([]domain.CaseMatch, error)

	// Ingest loads a case directory into the vector store, skipping
	// files the manifest already records.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestStats, error)

	// DocumentCount returns the total fragment count in the store.
	DocumentCount(ctx context.Context) (int, error)

	// ListCases enumerates all known cases.
	ListCases(ctx context.Context) ([]domain.Case, error)

	// ClearAll removes every fragment and the ingestion manifest.
	ClearAll(ctx context.Context) error

	// ClearCase removes a case's manifest entries so its files can be
	// re-ingested, returning the number of entries removed.
	ClearCase(ctx context.Context, caseID string) (int, error)

	// Shutdown releases engine resources.
	Shutdown() error
}
