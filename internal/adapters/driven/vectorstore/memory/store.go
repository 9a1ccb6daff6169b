// Package memory provides an in-memory vector store, primarily for tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory implementation of driven.VectorStore with the
// same ordering semantics as the SQLite adapter.
type Store struct {
	mu        sync.RWMutex
	fragments []domain.Fragment
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{}
}

// Insert adds a fragment, assigning a store-unique identifier.
func (s *Store) Insert(_ context.Context, fragment *domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fragment.ID == "" {
		fragment.ID = uuid.New().String()
	}
	s.fragments = append(s.fragments, *fragment)
	return nil
}

// Query returns up to k fragments by ascending L2 distance, ties broken
// by insertion order.
func (s *Store) Query(
	_ context.Context, embedding []float32, k int, filter *driven.MetadataFilter,
) ([]driven.FragmentHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		return []driven.FragmentHit{}, nil
	}

	var hits []driven.FragmentHit //nolint:prealloc // filtered size unknown
	for i := range s.fragments {
		fragment := s.fragments[i]
		if filter != nil && fragment.Metadata[filter.Key] != filter.Value {
			continue
		}

		distance, err := l2Distance(embedding, fragment.Embedding)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", fragment.ID, err)
		}
		hits = append(hits, driven.FragmentHit{Fragment: fragment, Distance: distance})
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Count returns the total fragment count.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments), nil
}

// DeleteAll resets the store to empty.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = nil
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func l2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
