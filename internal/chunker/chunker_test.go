package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyContent(t *testing.T) {
	s := New()
	assert.Nil(t, s.Split(""))
}

func TestSplitShortContent(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(10))
	chunks := s.Split("short text")

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitWithOverlap(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(2))
	chunks := s.Split("abcdefghijklmnopqrst")

	require.Len(t, chunks, 3)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ijklmnopqr", chunks[1])
	assert.Equal(t, "qrst", chunks[2])
}

func TestSplitExactMultipleProducesNoTail(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(2))
	chunks := s.Split(strings.Repeat("x", 10))

	require.Len(t, chunks, 1)
}

func TestSplitClampsExcessiveOverlap(t *testing.T) {
	s := New(WithChunkSize(8), WithOverlap(8))
	chunks := s.Split(strings.Repeat("y", 20))

	// Overlap is clamped below chunk size so splitting terminates.
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 8)
	}
}

func TestSplitRuneSafe(t *testing.T) {
	s := New(WithChunkSize(4), WithOverlap(1))
	chunks := s.Split(strings.Repeat("é", 7))

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("é", 4), chunks[0])
	assert.Equal(t, strings.Repeat("é", 4), chunks[1])
}
