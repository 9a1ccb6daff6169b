package driven

import (
	"context"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// MetadataFilter is an exact-match predicate on a single metadata key.
// The core only ever filters on one key (case_id); range and compound
// filters are deliberately unsupported.
type MetadataFilter struct {
	// Key is the metadata key to match.
	Key string

	// Value is the required value.
	Value string
}

// FragmentHit is one nearest-neighbour result.
type FragmentHit struct {
	// Fragment is the matched fragment, including its metadata.
	Fragment domain.Fragment

	// Distance is the store-native distance to the query vector.
	// Lower is closer.
	Distance float64
}

// VectorStore persists (fragment text, embedding, metadata) triples and
// answers nearest-neighbour queries.
//
// Duplicate suppression is the ingestion pipeline's job: Insert never
// rejects duplicate content.
type VectorStore interface {
	// Insert adds a fragment with its embedding and metadata,
	// assigning a store-unique identifier to fragment.ID.
	Insert(ctx context.Context, fragment *domain.Fragment) error

	// Query returns up to k fragments ordered by ascending distance to
	// the embedding, ties broken by insertion order. When filter is
	// non-nil only fragments matching it are eligible. If fewer than k
	// eligible fragments exist, all of them are returned.
	Query(ctx context.Context, embedding []float32, k int, filter *MetadataFilter) ([]FragmentHit, error)

	// Count returns the total fragment count. A fresh or empty store
	// reports 0, never an error.
	Count(ctx context.Context) (int, error)

	// DeleteAll destructively resets the store to an empty, queryable state.
	DeleteAll(ctx context.Context) error

	// Close releases resources.
	Close() error
}
