package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/casefind/internal/chunker"
	"github.com/meridian-labs/casefind/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestLoadCaseDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "evaluation.txt", "The defendant was evaluated for competency.")
	writeFile(t, dir, "notes.md", "Follow-up notes.")
	writeFile(t, dir, "metadata.json", `{"case_id":"case_001"}`)
	writeFile(t, dir, "scan.pdf", "binary")

	loader := NewLoader(nil)
	docs, err := loader.LoadCaseDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Lexical ordering.
	assert.Equal(t, "evaluation.txt", docs[0].FileName)
	assert.Equal(t, "notes.md", docs[1].FileName)

	require.Len(t, docs[0].Fragments, 1)
	assert.Equal(t, "The defendant was evaluated for competency.", docs[0].Fragments[0].Content)
	assert.Equal(t, "evaluation.txt", docs[0].Fragments[0].FileName)
}

func TestLoadSplitsLongDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "long.txt", strings.Repeat("a", 25))

	loader := NewLoader(chunker.New(chunker.WithChunkSize(10), chunker.WithOverlap(2)))
	docs, err := loader.LoadCaseDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Greater(t, len(docs[0].Fragments), 1)
}

func TestLoadEmptyDirectory(t *testing.T) {
	loader := NewLoader(nil)
	docs, err := loader.LoadCaseDirectory(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n\t")

	loader := NewLoader(nil)
	docs, err := loader.LoadCaseDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadMissingDirectory(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.LoadCaseDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
