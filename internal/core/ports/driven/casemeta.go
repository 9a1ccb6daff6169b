package driven

import (
	"context"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// CaseLookup is the tagged result of a case metadata lookup. A lookup
// never aborts ranking: when the descriptor file is missing or
// unparsable the store returns fallback values and records why, so
// callers (and tests) can tell which path was taken.
type CaseLookup struct {
	// Found is true when the metadata descriptor was read successfully.
	Found bool

	// FallbackReason explains the fallback when Found is false.
	FallbackReason string

	// Case holds the metadata, or fallback values (title = case ID,
	// document count approximated from a directory listing).
	Case domain.Case
}

// CaseMetadataStore reads case reference data from the case storage
// layout (one directory per case, named by case identifier).
type CaseMetadataStore interface {
	// Lookup returns metadata for a case, falling back to defaults
	// when the descriptor is missing or malformed.
	Lookup(ctx context.Context, caseID string) CaseLookup

	// ListCases enumerates all case directories under the data root.
	ListCases(ctx context.Context) ([]domain.Case, error)
}
