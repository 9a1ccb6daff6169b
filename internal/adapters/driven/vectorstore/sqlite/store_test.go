package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertFragment(t *testing.T, store *Store, caseID, content string, embedding []float32) *domain.Fragment {
	t.Helper()
	f := &domain.Fragment{
		CaseID:   caseID,
		FileName: "report.txt",
		Content:  content,
		Metadata: map[string]string{
			domain.MetaCaseID:   caseID,
			domain.MetaFileName: "report.txt",
		},
		Embedding: embedding,
	}
	require.NoError(t, store.Insert(context.Background(), f))
	return f
}

func TestNewStoreCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	assert.Equal(t, filepath.Join(dir, "fragments.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestCountOnFreshStore(t *testing.T) {
	store := newTestStore(t)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestInsertAssignsID(t *testing.T) {
	store := newTestStore(t)

	f := insertFragment(t, store, "case_001", "finding A", []float32{1, 0})
	assert.NotEmpty(t, f.ID)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertAcceptsDuplicateContent(t *testing.T) {
	store := newTestStore(t)

	insertFragment(t, store, "case_001", "same text", []float32{1, 0})
	insertFragment(t, store, "case_001", "same text", []float32{1, 0})

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueryOrdersByAscendingDistance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertFragment(t, store, "case_001", "far", []float32{10, 0})
	insertFragment(t, store, "case_001", "near", []float32{1, 0})
	insertFragment(t, store, "case_001", "exact", []float32{0, 0})

	hits, err := store.Query(ctx, []float32{0, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "exact", hits[0].Fragment.Content)
	assert.Equal(t, "near", hits[1].Fragment.Content)
	assert.Equal(t, "far", hits[2].Fragment.Content)
	assert.Equal(t, 0.0, hits[0].Distance)
}

func TestQueryBreaksTiesByInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertFragment(t, store, "case_001", "first", []float32{0, 1})
	insertFragment(t, store, "case_001", "second", []float32{0, -1})

	// Both fragments are at distance 1 from the origin.
	hits, err := store.Query(ctx, []float32{0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "first", hits[0].Fragment.Content)
	assert.Equal(t, "second", hits[1].Fragment.Content)
}

func TestQueryReturnsAllWhenFewerThanK(t *testing.T) {
	store := newTestStore(t)

	insertFragment(t, store, "case_001", "only", []float32{1, 1})

	hits, err := store.Query(context.Background(), []float32{0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestQueryWithCaseFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertFragment(t, store, "case_001", "a", []float32{0, 0})
	insertFragment(t, store, "case_003", "b", []float32{0.1, 0})
	insertFragment(t, store, "case_003", "c", []float32{5, 0})

	filter := &driven.MetadataFilter{Key: domain.MetaCaseID, Value: "case_003"}
	hits, err := store.Query(ctx, []float32{0, 0}, 10, filter)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for _, hit := range hits {
		assert.Equal(t, "case_003", hit.Fragment.Metadata[domain.MetaCaseID])
	}
}

func TestQueryWithGenericMetadataFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := &domain.Fragment{
		CaseID:    "case_001",
		FileName:  "notes.txt",
		Content:   "tagged",
		Metadata:  map[string]string{domain.MetaCaseID: "case_001", "reviewer": "smith"},
		Embedding: []float32{0, 0},
	}
	require.NoError(t, store.Insert(ctx, f))
	insertFragment(t, store, "case_001", "untagged", []float32{0, 0})

	hits, err := store.Query(ctx, []float32{0, 0}, 10, &driven.MetadataFilter{Key: "reviewer", Value: "smith"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "tagged", hits[0].Fragment.Content)
}

func TestQueryDimensionMismatch(t *testing.T) {
	store := newTestStore(t)

	insertFragment(t, store, "case_001", "a", []float32{1, 2, 3})

	_, err := store.Query(context.Background(), []float32{1, 2}, 5, nil)
	assert.Error(t, err)
}

func TestDeleteAllLeavesQueryableStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertFragment(t, store, "case_001", "a", []float32{1, 0})
	require.NoError(t, store.DeleteAll(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	hits, err := store.Query(ctx, []float32{0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEmbeddingRoundTrip(t *testing.T) {
	original := []float32{0.25, -1.5, 3.75}
	assert.Equal(t, original, bytesToFloat32Slice(float32SliceToBytes(original)))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
